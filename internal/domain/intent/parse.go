package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"aiinfra/internal/domain/entity"
)

// ParseObject strictly parses s as a single JSON object. Trailing data is
// an error.
func ParseObject(s string) (entity.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var rec entity.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if rec == nil {
		return nil, errors.New("decode object: not an object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode object: extra data after object")
	}
	return rec, nil
}
