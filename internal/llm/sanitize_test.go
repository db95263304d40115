package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/schema"
)

func sanitized(t *testing.T, rt *schema.RecordType, raw string) map[string]any {
	t.Helper()
	out, _, err := SanitizeRawJSON([]byte(raw), rt, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(string(out)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}

func TestSanitizeDropsNullOptionals(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)

	m := sanitized(t, rt, `{"merchant": "Acme", "paid": null, "items": null}`)
	if _, ok := m["paid"]; ok {
		t.Error("null optional survived")
	}
	if _, ok := m["items"]; ok {
		t.Error("null optional survived")
	}
	if m["merchant"] != "Acme" {
		t.Errorf("merchant mangled: %v", m["merchant"])
	}
}

func TestSanitizeKeepsNullRequired(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)

	m := sanitized(t, rt, `{"merchant": null}`)
	v, ok := m["merchant"]
	if !ok || v != nil {
		t.Errorf("null required field must survive for validation, got %v (present=%v)", v, ok)
	}
}

func TestSanitizeTrimsStrings(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)

	m := sanitized(t, rt, `{"merchant": "  Acme  ", "category": " Meals ", "tx_date": " 2024-03-09 "}`)
	if m["merchant"] != "Acme" {
		t.Errorf("merchant: %q", m["merchant"])
	}
	if m["category"] != "Meals" {
		t.Errorf("category: %q", m["category"])
	}
	if m["tx_date"] != "2024-03-09" {
		t.Errorf("tx_date: %q", m["tx_date"])
	}
}

func TestSanitizeNormalizesMoney(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)

	m := sanitized(t, rt, `{"total": {"amount": " 19.99 ", "currency": " usd "}}`)
	total := m["total"].(map[string]any)
	if total["currency"] != "USD" {
		t.Errorf("currency: %q", total["currency"])
	}
	if total["amount"] != "19.99" {
		t.Errorf("amount: %q", total["amount"])
	}
}

func TestSanitizeKeepsUnknownKeys(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)

	m := sanitized(t, rt, `{"merchant": "Acme", "hallucinated": "value"}`)
	if _, ok := m["hallucinated"]; !ok {
		t.Error("unknown key removed; closed-record rejection depends on it surviving")
	}
}

func TestSanitizeRejectsNonJSON(t *testing.T) {
	rt := testRecordType(t, constants.ScaleUnit)
	if _, _, err := SanitizeRawJSON([]byte("not json"), rt, nil); err == nil {
		t.Error("non-JSON accepted")
	}
}
