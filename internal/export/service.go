package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/pipeline"
	"github.com/olamide-oso/docfields/internal/schema"
)

// Service flattens run outcomes into an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteXLSX returns a workbook (as bytes) with one row per outcome. Columns:
// document, status, error, then one column per declared field in declaration
// order. Failure rows leave field columns empty. rt may be nil when schema
// resolution failed; only the fixed columns are written then.
func (s *Service) WriteXLSX(rt *schema.RecordType, outcomes []pipeline.Outcome) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"document", "status", "error"}
	var rules []schema.FieldRule
	if rt != nil {
		rules = rt.Fields()
	}
	for _, rule := range rules {
		headers = append(headers, rule.Name)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, o := range outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, o.Document)
		write(2, string(o.Status))
		write(3, o.Err)

		if o.Status == constants.StatusOK {
			for i, rule := range rules {
				v, ok := o.Fields[rule.Name]
				if !ok {
					continue
				}
				write(4+i, renderCell(rule, v))
			}
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40) // document path
	_ = f.SetColWidth(sheet, "B", "B", 10) // status
	_ = f.SetColWidth(sheet, "C", "C", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(outcomes),
		"columns", len(headers),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// renderCell turns a normalized value into its spreadsheet form. Dates lose
// the time component, money carries its currency, decimals keep full
// precision as text.
func renderCell(rule schema.FieldRule, v any) any {
	switch t := v.(type) {
	case time.Time:
		if rule.Kind == constants.KindDate {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case schema.Money:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}
