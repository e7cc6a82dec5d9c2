package cartstore

import (
	"encoding/json"
	"math"
)

// Line is one purchasable entry in a cart: a product (plus optional
// variation) and the quantity being bought. Everything except ID, Price and
// Quantity is carried for display only and never interpreted by the store.
type Line struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Category      string  `json:"category,omitempty"`
	Description   string  `json:"description,omitempty"`
	Variation     string  `json:"variation,omitempty"`
	InStock       *bool   `json:"in_stock,omitempty"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Discount      int     `json:"discount,omitempty"`
}

// UnmarshalJSON tolerates fractional or malformed quantities in stored
// payloads: non-numeric values become 1, fractions are truncated and the
// result is floored at 1.
func (l *Line) UnmarshalJSON(data []byte) error {
	type alias Line
	aux := struct {
		Quantity json.RawMessage `json:"quantity"`
		*alias
	}{alias: (*alias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Quantity = CoerceQuantity(aux.Quantity)
	return nil
}

// CoerceQuantity maps a raw JSON quantity value onto the valid domain:
// absent or non-numeric values become 1, fractions truncate and the result
// is floored at 1. Shared by stored-payload decoding and the HTTP boundary,
// so a malformed quantity is never an error anywhere.
func CoerceQuantity(raw json.RawMessage) int {
	var q float64 = 1
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &q); err != nil {
			q = 1
		}
	}
	return sanitizeQuantity(q)
}

// sanitizeQuantity maps any requested quantity onto the valid domain:
// integers >= 1.
func sanitizeQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 1
	}
	n := int(math.Trunc(q))
	if n < 1 {
		return 1
	}
	return n
}

// sanitizeLines enforces the snapshot invariants on an externally produced
// line sequence: quantities >= 1 and unique IDs (duplicates merge their
// quantities into the first occurrence). Lines without an ID are dropped.
func sanitizeLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			continue
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if i, ok := index[line.ID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(out)
		out = append(out, line)
	}
	return out
}

// decodeLines parses a stored payload into a sanitized line sequence.
// Anything that is not a JSON array of lines is an error.
func decodeLines(data []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return sanitizeLines(lines), nil
}

// encodeLines is the inverse of decodeLines. An empty snapshot encodes as
// [] rather than null so old sessions hydrate cleanly.
func encodeLines(lines []Line) []byte {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		// Line contains only marshalable field types.
		return []byte("[]")
	}
	return data
}
