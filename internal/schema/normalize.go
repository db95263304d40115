package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olamide-oso/docfields/constants"
)

// Money is a normalized monetary amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"` // ISO 4217, 3 uppercase letters
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

// Record maps field names to normalized values. Optional fields that were
// absent (or null) in the raw value set do not appear at all.
type Record map[string]any

var currencyRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Normalize validates a raw value set against the record type and returns the
// normalized record. All failing fields are aggregated into one
// ValidationError: declared fields first in declaration order, then unknown
// keys in sorted order. Normalization is deterministic; identical inputs
// always produce identical results.
func (rt *RecordType) Normalize(raw map[string]any) (Record, error) {
	out := make(Record, len(rt.fields))
	var errs []FieldError

	for _, rule := range rt.fields {
		v, present := raw[rule.Name]
		if !present || v == nil {
			if rule.Required {
				errs = append(errs, FieldError{Field: rule.Name, Value: nil, Message: "missing required value"})
			}
			continue
		}
		normalized, err := rt.normalizeValue(rule, v)
		if err != nil {
			errs = append(errs, FieldError{Field: rule.Name, Value: v, Message: err.Error()})
			continue
		}
		out[rule.Name] = normalized
	}

	// closed-world record: reject keys that were never declared
	var unknown []string
	for k := range raw {
		if _, ok := rt.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, FieldError{Field: k, Value: raw[k], Message: "unexpected field"})
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return out, nil
}

func (rt *RecordType) normalizeValue(rule FieldRule, v any) (any, error) {
	switch rule.Kind {
	case constants.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", v)
		}
		return s, nil

	case constants.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}
		return b, nil

	case constants.KindInteger:
		return asInteger(v)

	case constants.KindFloat:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", v)
		}
		return f, nil

	case constants.KindDecimal:
		return asDecimal(v)

	case constants.KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected YYYY-MM-DD text, got %T", v)
		}
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return t, nil

	case constants.KindDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected ISO-8601 text, got %T", v)
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime %q", s)
		}
		return t, nil

	case constants.KindPercent:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", v)
		}
		if rt.scale == constants.ScaleHundred {
			f = f / 100.0
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("percent %v out of range [0,1] after scaling", f)
		}
		return f, nil

	case constants.KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", v)
		}
		for _, allowed := range rule.EnumValues {
			if s == allowed {
				return s, nil
			}
		}
		return nil, fmt.Errorf("value %q not in enum [%s]", s, strings.Join(rule.EnumValues, ", "))

	case constants.KindMoney:
		return normalizeMoney(rule, v)

	default:
		// unreachable: Compile rejects unknown kinds
		return nil, fmt.Errorf("unsupported kind %q", rule.Kind)
	}
}

func normalizeMoney(rule FieldRule, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected {amount, currency} object, got %T", v)
	}

	rawAmount, ok := m["amount"]
	if !ok || rawAmount == nil {
		return nil, fmt.Errorf("missing amount")
	}
	amount, err := asDecimal(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	currency := rule.Currency
	if c, ok := m["currency"].(string); ok && strings.TrimSpace(c) != "" {
		currency = strings.ToUpper(strings.TrimSpace(c))
	}
	if !currencyRE.MatchString(currency) {
		return nil, fmt.Errorf("currency %q must be 3 letters (ISO 4217)", currency)
	}

	for k := range m {
		if k != "amount" && k != "currency" {
			return nil, fmt.Errorf("unexpected key %q in money object", k)
		}
	}

	return Money{Amount: amount, Currency: currency}, nil
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func asInteger(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected integral number, got %q", t.String())
		}
		return integralFloat(f)
	case float64:
		return integralFloat(t)
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	default:
		return 0, fmt.Errorf("expected integral number, got %T", v)
	}
}

func integralFloat(f float64) (int64, error) {
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected integral number, got %v", f)
	}
	// float64(MaxInt64) rounds up to 2^63, so >= catches the whole overflow
	// range; conversion of an out-of-range float would saturate silently
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int64(f), nil
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("malformed decimal %q", t.String())
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("malformed decimal %q", t)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("expected number or decimal text, got %T", v)
	}
}
