package typefence

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/reoring/typefence/i18n"
	"github.com/reoring/typefence/internal/jsonsrc"
)

// ParseOpt bundles ingestion options for ParseFrom.
type ParseOpt struct {
	Options
	// MaxBytes caps the number of input bytes consumed; 0 disables the cap.
	// Exceeding the cap fails with a truncated diagnostic before validation.
	MaxBytes int64
	// UseNumber decodes JSON numbers as json.Number text so integers keep
	// full precision through the engine's trial-parse path. Without it,
	// numbers arrive as float64 and reach integer descriptors through the
	// float narrowing rule.
	UseNumber bool
}

// Source abstracts over polymorphic input sources.
type Source interface {
	Reader() io.Reader
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return bytesSource{b: b} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return readerSource{r: r} }

type bytesSource struct{ b []byte }

func (s bytesSource) Reader() io.Reader { return bytes.NewReader(s.b) }

type readerSource struct{ r io.Reader }

func (s readerSource) Reader() io.Reader { return s.r }

// ParseFrom is the ingestion entry point: it decodes one JSON value from the
// Source and validates it against d. Decoder failures surface as Diagnostics
// like every other failure, so callers handle a single error model.
func ParseFrom(ctx context.Context, d Descriptor, src Source, opts ...ParseOpt) (any, error) {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, Diagnostics{{Code: CodeParseError, Message: "nil source", Received: "nil"}}
	}
	v, err := jsonsrc.Decode(src.Reader(), opt.MaxBytes, opt.UseNumber)
	if err != nil {
		code := CodeParseError
		if errors.Is(err, jsonsrc.ErrTruncated) {
			code = CodeTruncated
		}
		return nil, Diagnostics{{
			Code:     code,
			Expected: d,
			Received: "-",
			Message:  i18n.T(code, nil),
			Cause:    err,
		}}
	}
	return Validate(v, d, opt.Options)
}
