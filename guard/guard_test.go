package guard_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	typefence "github.com/reoring/typefence"
	"github.com/reoring/typefence/guard"
)

func divideSig(t *testing.T, opts ...guard.SigOption) *guard.Signature {
	t.Helper()
	s, err := guard.NewSignature("divide", []guard.Param{
		{Name: "a", Type: typefence.Int()},
		{Name: "b", Type: typefence.Int()},
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSignatureRejectsBadDeclarations(t *testing.T) {
	t.Parallel()

	_, err := guard.NewSignature("f", []guard.Param{{Name: "", Type: typefence.Int()}})
	assert.Error(t, err)

	_, err = guard.NewSignature("f", []guard.Param{
		{Name: "a", Type: typefence.Int()},
		{Name: "a", Type: typefence.Int()},
	})
	assert.Error(t, err)
}

func TestSignatureBind(t *testing.T) {
	t.Parallel()
	s := divideSig(t)

	t.Run("positional then named", func(t *testing.T) {
		t.Parallel()
		bound, err := s.Bind([]any{10}, map[string]any{"b": "2"})
		require.NoError(t, err)
		assert.Equal(t, []any{10, int64(2)}, bound)
	})

	t.Run("too many positional", func(t *testing.T) {
		t.Parallel()
		_, err := s.Bind([]any{1, 2, 3}, nil)
		ds, ok := typefence.AsDiagnostics(err)
		require.True(t, ok)
		require.Len(t, ds, 1)
		assert.Equal(t, typefence.CodeArgCount, ds[0].Code)
	})

	t.Run("duplicate binding", func(t *testing.T) {
		t.Parallel()
		_, err := s.Bind([]any{1, 2}, map[string]any{"a": 3})
		ds, ok := typefence.AsDiagnostics(err)
		require.True(t, ok)
		require.Len(t, ds, 1)
		assert.Equal(t, typefence.CodeArgCount, ds[0].Code)
		assert.Equal(t, "/a", ds[0].Pointer())
	})

	t.Run("aggregates independent failures", func(t *testing.T) {
		t.Parallel()
		_, err := s.Bind([]any{true}, map[string]any{"c": 1})
		ds, ok := typefence.AsDiagnostics(err)
		require.True(t, ok)
		require.Len(t, ds, 3)
		assert.Equal(t, typefence.CodeUnknownField, ds[0].Code)
		assert.Equal(t, "/c", ds[0].Pointer())
		assert.Equal(t, typefence.CodeInvalidType, ds[1].Code)
		assert.Equal(t, "/a", ds[1].Pointer())
		assert.Equal(t, typefence.CodeRequired, ds[2].Code)
		assert.Equal(t, "/b", ds[2].Pointer())
	})

	t.Run("reroots nested paths", func(t *testing.T) {
		t.Parallel()
		sig, err := guard.NewSignature("sum", []guard.Param{
			{Name: "xs", Type: typefence.SequenceOf(typefence.Int())},
		})
		require.NoError(t, err)
		_, err = sig.Bind([]any{[]any{1, true}}, nil)
		ds, ok := typefence.AsDiagnostics(err)
		require.True(t, ok)
		assert.Equal(t, "/xs/1", ds[0].Pointer())
	})
}

func TestSignatureWrap(t *testing.T) {
	t.Parallel()
	s := divideSig(t, guard.WithResult(typefence.Float()))

	div := s.Wrap(func(args []any) (any, error) {
		a := asInt64(args[0])
		b := asInt64(args[1])
		if b == 0 {
			return nil, errors.New("division by zero")
		}
		return float64(a) / float64(b), nil
	})

	t.Run("validates arguments and result", func(t *testing.T) {
		t.Parallel()
		out, err := div("10", 4)
		require.NoError(t, err)
		assert.Equal(t, 2.5, out)
	})

	t.Run("passes through the function's own error", func(t *testing.T) {
		t.Parallel()
		_, err := div(1, 0)
		require.Error(t, err)
		_, ok := typefence.AsDiagnostics(err)
		assert.False(t, ok, "domain errors are not validation failures")
	})

	t.Run("rejects bad arguments before invoking", func(t *testing.T) {
		t.Parallel()
		called := false
		f := s.Wrap(func(args []any) (any, error) {
			called = true
			return 1.0, nil
		})
		_, err := f(true, 1)
		require.Error(t, err)
		assert.False(t, called)
	})
}

func TestSignatureWrapResultValidation(t *testing.T) {
	t.Parallel()
	s, err := guard.NewSignature("answer", nil, guard.WithResult(typefence.Int()))
	require.NoError(t, err)

	t.Run("coerces the result", func(t *testing.T) {
		t.Parallel()
		f := s.Wrap(func([]any) (any, error) { return "42", nil })
		out, err := f()
		require.NoError(t, err)
		assert.Equal(t, int64(42), out)
	})

	t.Run("reports result failures under return", func(t *testing.T) {
		t.Parallel()
		f := s.Wrap(func([]any) (any, error) { return true, nil })
		_, err := f()
		ds, ok := typefence.AsDiagnostics(err)
		require.True(t, ok)
		assert.Equal(t, "/return", ds[0].Pointer())
	})
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}
