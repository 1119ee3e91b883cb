package symmetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopLeftMustBeRotationZero(t *testing.T) {
	require.True(t, Allowed(4, 4, 0, 0, 5, 0, 0, false))
	require.False(t, Allowed(4, 4, 0, 0, 5, 1, 0, false))
	require.False(t, Allowed(4, 4, 0, 0, 5, 2, 0, false))
}

func TestOtherCornersRequireGreaterOrEqualID(t *testing.T) {
	require.True(t, Allowed(4, 4, 0, 3, 9, 1, 5, true))
	require.False(t, Allowed(4, 4, 0, 3, 2, 1, 5, true))
	require.True(t, Allowed(4, 4, 3, 0, 5, 2, 5, true)) // equal id allowed
}

func TestNonCornerAlwaysAllowed(t *testing.T) {
	require.True(t, Allowed(4, 4, 1, 1, 1, 3, 5, true))
}

func TestCornersBeforeTopLeftKnownAreUnrestricted(t *testing.T) {
	require.True(t, Allowed(4, 4, 0, 3, 1, 0, 0, false))
}

func TestReflectionAllowedOffByDefault(t *testing.T) {
	cfg := Config{}
	require.True(t, ReflectionAllowed(cfg, []int{5, 1, 2}, []int{1, 9, 9}))
}

func TestReflectionAllowedWhenEnabled(t *testing.T) {
	cfg := Config{ReflectionPruning: true}
	require.True(t, ReflectionAllowed(cfg, []int{1, 2, 3}, []int{1, 5, 5}))
	require.False(t, ReflectionAllowed(cfg, []int{5, 2, 3}, []int{1, 9, 9}))
}
