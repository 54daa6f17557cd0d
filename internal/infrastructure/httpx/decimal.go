package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal decodes a JSON number or a JSON string holding a number. Upstream
// APIs are inconsistent about which one they send.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("decimal: empty value")
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decimal: %w", err)
		}
		v, err := parse(s)
		if err != nil {
			return err
		}
		d.Decimal = v
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		v, err := parse(string(b))
		if err != nil {
			return err
		}
		d.Decimal = v
		return nil
	default:
		return fmt.Errorf("decimal: unsupported JSON value %s", b)
	}
}

// DecimalFrom normalizes a value decoded into an interface: a string,
// json.Number or float64.
func DecimalFrom(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		return parse(x)
	case json.Number:
		return parse(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("decimal: unsupported value %T", v)
	}
}

func parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("decimal: empty string")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decimal: %w", err)
	}
	return v, nil
}
