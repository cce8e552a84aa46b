package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingFlavor  = errors.New("missing field: sabor")
	ErrMissingStock   = errors.New("missing field: stock")
	ErrNotObject      = errors.New("helado must be a JSON object")
	ErrDuplicateField = errors.New("duplicate field")
)

// Helado is the single resource managed by the service. ID is assigned by the
// store and is nil on creation input.
type Helado struct {
	ID          *int64 `json:"id,omitempty"`
	Flavor      string `json:"sabor"`
	StockStatus string `json:"stock"`
}

// UnmarshalJSON matches field names exactly and rejects duplicates. sabor and
// stock are required and may not be null. id is optional and must fit in 32 bits.
func (h *Helado) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}

	raw, ok := fields["sabor"]
	if !ok {
		return ErrMissingFlavor
	}
	flavor, err := decodeString("sabor", raw)
	if err != nil {
		return err
	}

	raw, ok = fields["stock"]
	if !ok {
		return ErrMissingStock
	}
	stock, err := decodeString("stock", raw)
	if err != nil {
		return err
	}

	var id *int64
	if raw, ok := fields["id"]; ok && !isNull(raw) {
		var v int32
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field id: %w", err)
		}
		id64 := int64(v)
		id = &id64
	}

	h.ID = id
	h.Flavor = flavor
	h.StockStatus = stock
	return nil
}

// WithID returns a copy of h carrying id.
func (h Helado) WithID(id int64) Helado {
	h.ID = &id
	return h
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrNotObject
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, key)
		}
		fields[key] = raw
	}
	return fields, nil
}

func decodeString(name string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", fmt.Errorf("field %s: null", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %s: %w", name, err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
