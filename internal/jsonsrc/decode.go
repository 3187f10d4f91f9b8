package jsonsrc

import (
	"bytes"
	"errors"
	"io"

	gojson "github.com/goccy/go-json"
)

// ErrTruncated reports that the input exceeded the configured byte budget.
var ErrTruncated = errors.New("jsonsrc: input exceeds byte budget")

// Decode reads one JSON value from r into its generic Go representation.
// When maxBytes > 0 the input is capped; exceeding the cap returns
// ErrTruncated before any value is produced. When useNumber is set, numbers
// decode as json.Number so integers keep full precision through the engine's
// trial-parse path.
func Decode(r io.Reader, maxBytes int64, useNumber bool) (any, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTruncated
	}
	return DecodeBytes(data, useNumber)
}

// DecodeBytes decodes a single JSON value from data.
func DecodeBytes(data []byte, useNumber bool) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	if useNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
