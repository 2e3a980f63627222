// Package vector reconciles provider embedding shapes and scores vector similarity.
package vector

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// Flatten converts a raw provider payload into a flat numeric vector.
//
// Providers may return a flat sequence or a sequence wrapping exactly one inner
// sequence. When the first element is itself a sequence, one level is unwrapped and
// the inner sequence is used. Every remaining element must be numeric, otherwise a
// *domain.MalformedVectorError is returned. nil and empty payloads yield an empty vector.
func Flatten(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case [][]float32:
		if len(v) == 0 {
			return nil, nil
		}
		return Widen(v[0]), nil
	case [][]float64:
		if len(v) == 0 {
			return nil, nil
		}
		return append([]float64(nil), v[0]...), nil
	case []any:
		if len(v) > 0 && isSequence(v[0]) {
			return flat(v[0])
		}
		return flat(v)
	default:
		return flat(raw)
	}
}

// Align truncates both vectors to the shorter length. Trailing dimensions are dropped.
func Align(a, b []float64) ([]float64, []float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// Narrow converts a normalized vector to the float32 layout used by the index.
func Narrow(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// flat converts a single-level sequence; nested sequences at this point are malformed.
func flat(seq any) ([]float64, error) {
	switch v := seq.(type) {
	case []float32:
		return Widen(v), nil
	case []float64:
		return append([]float64(nil), v...), nil
	case []any:
		out := make([]float64, len(v))
		for i, x := range v {
			f, err := number(i, x)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: payload is %T", domain.ErrMalformedVector, seq)
	}
}

func number(i int, x any) (float64, error) {
	switch n := x.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, domain.NewMalformedVector(i, x)
		}
		return f, nil
	default:
		return 0, domain.NewMalformedVector(i, x)
	}
}

func isSequence(x any) bool {
	switch x.(type) {
	case []any, []float32, []float64:
		return true
	default:
		return false
	}
}

// Widen converts a stored float32 vector for scoring.
func Widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
