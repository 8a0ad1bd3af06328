package pipeline

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	payload := map[string]any{
		"symbol": "IBM",
		"price":  float64(120),
		"meta": map[string]any{
			"currency": "USD",
		},
	}

	t.Run("all rules pass", func(t *testing.T) {
		err := Validate(payload, []Rule{
			RequireKey("symbol"),
			RequireKey("meta.currency"),
			MatchPattern("symbol", regexp.MustCompile(`^[A-Z]{1,5}$`)),
			InRange("price", 0, 1000),
		})
		require.NoError(t, err)
	})

	t.Run("missing key names the key", func(t *testing.T) {
		err := Validate(payload, []Rule{RequireKey("Time Series (Daily)")})
		require.Error(t, err)
		require.Equal(t, KindValidationFailure, KindOf(err))
		require.Equal(t, StageValidate, StageOf(err))
		require.Contains(t, err.Error(), "Time Series (Daily)")
	})

	t.Run("forbidden key reports its value", func(t *testing.T) {
		err := Validate(map[string]any{"Note": "rate limited"}, []Rule{ForbidKey("Note")})
		require.Error(t, err)
		require.Contains(t, err.Error(), "rate limited")
	})

	t.Run("pattern mismatch", func(t *testing.T) {
		err := Validate(map[string]any{"symbol": "toolong"}, []Rule{
			MatchPattern("symbol", regexp.MustCompile(`^[A-Z]{1,5}$`)),
		})
		require.Error(t, err)
		require.Equal(t, KindValidationFailure, KindOf(err))
	})

	t.Run("out of range", func(t *testing.T) {
		err := Validate(payload, []Rule{InRange("price", 0, 100)})
		require.Error(t, err)
		require.Contains(t, err.Error(), "outside")
	})

	t.Run("fails fast on the first rule", func(t *testing.T) {
		secondRan := false
		err := Validate(payload, []Rule{
			{Name: "always fails", Check: func(any) error { return errors.New("nope") }},
			{Name: "tracks", Check: func(any) error {
				secondRan = true
				return nil
			}},
		})
		require.Error(t, err)
		require.False(t, secondRan)
		require.Contains(t, err.Error(), "always fails")
	})

	t.Run("non-object payload fails key rules", func(t *testing.T) {
		err := Validate([]any{"a", "b"}, []Rule{RequireKey("symbol")})
		require.Error(t, err)
		require.Equal(t, KindValidationFailure, KindOf(err))
	})
}

func TestValidateDoesNotMutate(t *testing.T) {
	payload := map[string]any{"value": float64(5)}
	err := Validate(payload, []Rule{InRange("value", 0, 10)})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"value": float64(5)}, payload)
}
