package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/schema"
)

// SanitizeRawJSON cleans up sloppy-but-recoverable model output before strict
// schema validation:
//   - drops null / empty-string values for OPTIONAL fields (required fields
//     are left alone so validation reports them)
//   - trims string-ish values (string, enum, date, datetime, decimal text)
//   - upper-cases money currency codes and trims money amounts given as text
//
// Unknown keys are NOT removed: the record is closed-world and an undeclared
// key must fail the document, not vanish silently.
func SanitizeRawJSON(raw []byte, rt *schema.RecordType, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)

	for _, rule := range rt.Fields() {
		v, ok := m[rule.Name]
		if !ok {
			continue
		}

		if v == nil {
			if !rule.Required {
				delete(m, rule.Name)
				dropped = append(dropped, rule.Name+"(null)")
			}
			continue
		}

		switch rule.Kind {
		case constants.KindString, constants.KindEnum, constants.KindDate,
			constants.KindDateTime, constants.KindDecimal:
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				if s == "" && !rule.Required {
					delete(m, rule.Name)
					dropped = append(dropped, rule.Name+"(empty)")
				} else {
					m[rule.Name] = s
				}
			}
		case constants.KindMoney:
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := obj["currency"].(string); ok {
				obj["currency"] = strings.ToUpper(strings.TrimSpace(c))
			}
			if a, ok := obj["amount"].(string); ok {
				obj["amount"] = strings.TrimSpace(a)
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
