package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON open key/value column (campaign meta)
type JSON map[string]interface{}

// Value implements driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return marshalText(j)
}

// Scan implements sql.Scanner
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, j)
}

// Location scan coordinates reported by the customer's device
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region"`
}

// Value implements driver.Valuer
func (l Location) Value() (driver.Value, error) {
	return marshalText(l)
}

// Scan implements sql.Scanner
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		*l = Location{}
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, l)
}

// AnswerValue one custom answer: string, number, bool or list of strings
type AnswerValue struct {
	raw interface{}
}

// NewAnswerValue wraps an already validated primitive
func NewAnswerValue(v interface{}) AnswerValue {
	return AnswerValue{raw: v}
}

// Raw returns the underlying primitive
func (a AnswerValue) Raw() interface{} {
	return a.raw
}

// MarshalJSON implements json.Marshaler
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}

// UnmarshalJSON implements json.Unmarshaler; only primitives and string arrays are accepted
func (a *AnswerValue) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string, float64, bool, nil:
		a.raw = val
		return nil
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return ErrAnswerValueUnsupported
			}
			items = append(items, s)
		}
		a.raw = items
		return nil
	default:
		return ErrAnswerValueUnsupported
	}
}

// ErrAnswerValueUnsupported custom answer holds an object or a mixed array
var ErrAnswerValueUnsupported = errors.New("unsupported custom answer value")

// CustomAnswers answers to a campaign's extra questions, keyed by question id
type CustomAnswers map[string]AnswerValue

// Value implements driver.Valuer
func (c CustomAnswers) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return marshalText(c)
}

// Scan implements sql.Scanner
func (c *CustomAnswers) Scan(value interface{}) error {
	if value == nil {
		*c = CustomAnswers{}
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, c)
}

// marshalText stores json as text so sqlite json functions can read it
func marshalText(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported json column type")
	}
}
