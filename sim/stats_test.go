package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestTQuantile_KnownValues(t *testing.T) {
	// Textbook two-sided 95% critical values.
	cases := []struct {
		df   int
		want float64
		tol  float64
	}{
		{10, 2.228, 0.02},
		{20, 2.086, 0.01},
		{29, 2.045, 0.01},
		{100, 1.984, 0.01},
	}
	for _, c := range cases {
		got, err := tQuantile(0.975, c.df)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, c.tol, "df=%d", c.df)
	}
}

func TestTQuantile_MatchesGonumReference(t *testing.T) {
	// Cross-check the Hill approximation against the exact quantile for
	// the degrees of freedom replication runs actually use.
	for _, df := range []int{5, 10, 29, 50, 200} {
		for _, p := range []float64{0.9, 0.95, 0.975, 0.995} {
			ref := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(p)
			got, err := tQuantile(p, df)
			require.NoError(t, err)
			assert.InDelta(t, ref, got, 1e-2, "df=%d p=%v", df, p)
		}
	}
}

func TestTQuantile_Symmetry(t *testing.T) {
	upper, err := tQuantile(0.975, 15)
	require.NoError(t, err)
	lower, err := tQuantile(0.025, 15)
	require.NoError(t, err)
	assert.InDelta(t, -upper, lower, 1e-12)
}

func TestTQuantile_InvalidArguments(t *testing.T) {
	_, err := tQuantile(0, 10)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = tQuantile(1, 10)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = tQuantile(0.95, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCIHalfWidth_KnownSample(t *testing.T) {
	// Sample mean 3, sample stddev 1.5811 (n-1), n=5, t_{4,0.975}=2.776:
	// h = 2.776 * 1.5811 / sqrt(5) = 1.963.
	values := []float64{1, 2, 3, 4, 5}
	h, err := ciHalfWidth(values, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.963, h, 0.01)
}

func TestCIHalfWidth_NeedsTwoValues(t *testing.T) {
	_, err := ciHalfWidth([]float64{1.0}, 0.95)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestReplicationResult_Intervals(t *testing.T) {
	rawN := []float64{0.9, 1.0, 1.1, 1.0}
	rawT := []float64{1.9, 2.0, 2.1, 2.0}
	res, err := newReplicationResult(rawN, rawT, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.MeanN, 1e-12)
	assert.InDelta(t, 2.0, res.MeanT, 1e-12)

	loN, hiN := res.CIN()
	assert.InDelta(t, res.MeanN-res.CIHalfN, loN, 1e-12)
	assert.InDelta(t, res.MeanN+res.CIHalfN, hiN, 1e-12)
	loT, hiT := res.CIT()
	assert.Less(t, loT, res.MeanT)
	assert.Greater(t, hiT, res.MeanT)
	assert.Greater(t, res.CIHalfN, 0.0)
}

func TestCIHalfWidth_ShrinksWithMoreData(t *testing.T) {
	small := []float64{1, 2, 3, 4, 5}
	large := make([]float64, 0, 50)
	for i := 0; i < 10; i++ {
		large = append(large, small...)
	}
	hSmall, err := ciHalfWidth(small, 0.95)
	require.NoError(t, err)
	hLarge, err := ciHalfWidth(large, 0.95)
	require.NoError(t, err)
	assert.Less(t, hLarge, hSmall)
}

func TestTQuantile_MonotoneInP(t *testing.T) {
	prev := math.Inf(-1)
	for _, p := range []float64{0.6, 0.7, 0.8, 0.9, 0.95, 0.99} {
		v, err := tQuantile(p, 12)
		require.NoError(t, err)
		assert.Greater(t, v, prev, "p=%v", p)
		prev = v
	}
}
