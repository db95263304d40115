package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/pipeline"
	"github.com/olamide-oso/docfields/internal/schema"
)

func exportType(t *testing.T) *schema.RecordType {
	t.Helper()
	rt, err := schema.Compile([]schema.FieldDeclaration{
		{Name: "merchant", Kind: constants.KindString, Required: true},
		{Name: "tx_date", Kind: constants.KindDate, Required: true},
		{Name: "total", Kind: constants.KindMoney, Required: true},
		{Name: "tip_rate", Kind: constants.KindPercent},
	}, constants.ScaleUnit)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return rt
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue("Extractions", ref)
	if err != nil {
		t.Fatalf("cell %s: %v", ref, err)
	}
	return v
}

func TestWriteXLSXColumnsFollowDeclarationOrder(t *testing.T) {
	rt := exportType(t)
	outcomes := []pipeline.Outcome{
		{
			Document: "/docs/receipt-1.pdf",
			Status:   constants.StatusOK,
			Fields: schema.Record{
				"merchant": "Acme Corp",
				"tx_date":  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
				"total":    schema.Money{Amount: decimal.RequireFromString("19.99"), Currency: "USD"},
				"tip_rate": 0.15,
			},
		},
		{
			Document: "/docs/receipt-2.pdf",
			Status:   constants.StatusError,
			Err:      "extraction call failed",
		},
		{
			Document: "/docs/notes.docx",
			Status:   constants.StatusSkipped,
			Err:      "unsupported file type: .docx",
		},
	}

	b, err := NewService(nil).WriteXLSX(rt, outcomes)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	wantHeaders := map[string]string{
		"A1": "document", "B1": "status", "C1": "error",
		"D1": "merchant", "E1": "tx_date", "F1": "total", "G1": "tip_rate",
	}
	for ref, want := range wantHeaders {
		if got := cell(t, f, ref); got != want {
			t.Errorf("header %s: want %q, got %q", ref, want, got)
		}
	}

	// success row carries normalized values
	if got := cell(t, f, "A2"); got != "/docs/receipt-1.pdf" {
		t.Errorf("A2: %q", got)
	}
	if got := cell(t, f, "B2"); got != "ok" {
		t.Errorf("B2: %q", got)
	}
	if got := cell(t, f, "D2"); got != "Acme Corp" {
		t.Errorf("D2: %q", got)
	}
	if got := cell(t, f, "E2"); got != "2024-03-09" {
		t.Errorf("E2: %q", got)
	}
	if got := cell(t, f, "F2"); got != "19.99 USD" {
		t.Errorf("F2: %q", got)
	}

	// failure rows keep the reason and leave field columns empty
	if got := cell(t, f, "B3"); got != "error" {
		t.Errorf("B3: %q", got)
	}
	if got := cell(t, f, "C3"); got != "extraction call failed" {
		t.Errorf("C3: %q", got)
	}
	for _, ref := range []string{"D3", "E3", "F3", "G3"} {
		if got := cell(t, f, ref); got != "" {
			t.Errorf("failure row field cell %s not empty: %q", ref, got)
		}
	}

	if got := cell(t, f, "B4"); got != "skipped" {
		t.Errorf("B4: %q", got)
	}
}

func TestWriteXLSXWithoutRecordType(t *testing.T) {
	outcomes := []pipeline.Outcome{
		{Document: "a.pdf", Status: constants.StatusError, Err: "schema inference: boom"},
		{Document: "b.pdf", Status: constants.StatusError, Err: "schema inference: boom"},
	}
	b, err := NewService(nil).WriteXLSX(nil, outcomes)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got := cell(t, f, "C1"); got != "error" {
		t.Errorf("C1: %q", got)
	}
	if got := cell(t, f, "D1"); got != "" {
		t.Errorf("unexpected field column without a record type: %q", got)
	}
	if got := cell(t, f, "C2"); got != "schema inference: boom" {
		t.Errorf("C2: %q", got)
	}
}
