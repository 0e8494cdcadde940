package result_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ikalinin1/gestalt/result"
)

func TestMapPreservesErrors(t *testing.T) {
	warn := result.ValidationError{Level: result.LevelWarn, Kind: "test", Message: "warn"}
	r := result.WithValue(1, warn)

	mapped := result.Map(r, func(v int) int { return v + 1 })
	require.True(t, mapped.HasValue())
	require.Equal(t, 2, mapped.MustValue())
	require.Len(t, mapped.Errors, 1)
	if diff := cmp.Diff(warn, mapped.Errors[0]); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatMapNeverDropsErrors(t *testing.T) {
	outer := result.ValidationError{Level: result.LevelWarn, Kind: "outer", Message: "a"}
	inner := result.ValidationError{Level: result.LevelError, Kind: "inner", Message: "b"}

	r := result.WithValue(1, outer)
	chained := result.FlatMap(r, func(v int) result.R[string] {
		return result.Invalid[string](inner)
	})

	require.False(t, chained.HasValue())
	require.Len(t, chained.Errors, 2, "both outer and inner errors must survive flat_map")
}

func TestMergeValueOnlyIfAllPresent(t *testing.T) {
	a := result.Valid(1)
	b := result.Invalid[int](result.ValidationError{Level: result.LevelError, Kind: "x"})

	merged := result.Merge(a, b)
	require.False(t, merged.HasValue())
	require.Len(t, merged.Errors, 1)
}

func TestMergeAllPresent(t *testing.T) {
	a := result.Valid(1)
	b := result.Valid(2)
	merged := result.Merge(a, b)
	require.True(t, merged.HasValue())
}

func TestInvalidAlwaysHasErrors(t *testing.T) {
	r := result.Invalid[int](result.ValidationError{Level: result.LevelError, Kind: "x"})
	require.False(t, r.HasValue())
	require.True(t, r.HasErrors(), "value-less R must always carry at least one error")
}
