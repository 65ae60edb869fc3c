package utils

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/stretchr/testify/require"
)

// AlmostEq reports whether left and right differ by at most maxRelDiff,
// relative to the larger of the two magnitudes. Two zeros are equal.
// The computed relative difference is returned for reporting.
func AlmostEq(left, right math.LegacyDec, maxRelDiff string) (bool, math.LegacyDec, error) {
	limit, err := math.LegacyNewDecFromStr(maxRelDiff)
	if err != nil {
		return false, math.LegacyDec{}, fmt.Errorf("invalid max relative difference %q: %w", maxRelDiff, err)
	}
	if limit.IsNegative() {
		return false, math.LegacyDec{}, fmt.Errorf("max relative difference must not be negative: %s", maxRelDiff)
	}

	largest := math.LegacyMaxDec(left.Abs(), right.Abs())
	if largest.IsZero() {
		return true, math.LegacyZeroDec(), nil
	}

	relDiff := left.Sub(right).Abs().Quo(largest)
	return relDiff.LTE(limit), relDiff, nil
}

// AssertAlmostEq fails the test unless left and right are within maxRelDiff
// of each other.
func AssertAlmostEq(t require.TestingT, left, right math.LegacyDec, maxRelDiff string) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	ok, relDiff, err := AlmostEq(left, right, maxRelDiff)
	require.NoError(t, err)
	if !ok {
		require.FailNow(t, "assertion failed: `(left ≈ right)`",
			"left: %s\nright: %s\nrelative difference: %s\nmax allowed relative difference: %s",
			left, right, relDiff, maxRelDiff)
	}
}
