package svd

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/quantfactor/dataframe"
	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// randomPanel builds a frame of independent standard-normal signal columns
// with recognizable row identifiers.
func randomPanel(t *testing.T, rows int, names []string, seed int64) *dataframe.DataFrame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make(map[string][]float64, len(names))
	for _, name := range names {
		col := make([]float64, rows)
		for i := range col {
			col[i] = rng.NormFloat64()
		}
		data[name] = col
	}
	index := make([]string, rows)
	for i := range index {
		index[i] = fmt.Sprintf("obs_%d", i)
	}
	df, err := dataframe.New(index, names, data)
	require.NoError(t, err)
	return df
}

func signalNames() []string {
	return []string{"value", "momentum", "quality", "size", "volatility"}
}

func TestExtractFactorsShapes(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 100, names, 42)

	factors, s, weights, scaling, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	r, c := factors.Dims()
	assert.Equal(t, 100, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, train.Index(), factors.Index(), "row identifiers must be preserved")
	assert.Equal(t, []string{"SVD_Factor_1", "SVD_Factor_2", "SVD_Factor_3"}, factors.Columns())

	assert.Len(t, s, 5, "full singular value spectrum has min(rows, k) entries")

	wr, wc := weights.Dims()
	assert.Equal(t, 5, wr)
	assert.Equal(t, 3, wc)
	assert.Equal(t, names, weights.Index(), "weights rows are indexed by factor name")

	sr, sc := scaling.Dims()
	assert.Equal(t, 5, sr)
	assert.Equal(t, 2, sc)
	assert.Equal(t, []string{"mean", "std"}, scaling.Columns())
}

func TestExtractFactorsStatistics(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 100, names, 7)

	_, _, _, scaling, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	means, err := scaling.Column("mean")
	require.NoError(t, err)
	stds, err := scaling.Column("std")
	require.NoError(t, err)

	for j := range names {
		assert.InDelta(t, 0.0, means[j], 0.5, "standard-normal column mean")
		assert.InDelta(t, 1.0, stds[j], 0.4, "standard-normal column std")
	}
}

func TestSingularValuesDescending(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 80, names, 3)

	_, s, _, _, err := ExtractFactors(train, names, 5)
	require.NoError(t, err)

	for i := 0; i+1 < len(s); i++ {
		assert.GreaterOrEqual(t, s[i], s[i+1], "singular values must be descending")
	}
	assert.GreaterOrEqual(t, s[len(s)-1], 0.0)
}

func TestWeightsOrthonormal(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 60, names, 11)

	_, _, weights, _, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	w := weights.Matrix()
	_, n := w.Dims()
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			dot := 0.0
			for i := 0; i < len(names); i++ {
				dot += w.At(i, a) * w.At(i, b)
			}
			if a == b {
				assert.InDelta(t, 1.0, dot, 1e-10, "column %d not unit length", a)
			} else {
				assert.InDelta(t, 0.0, dot, 1e-10, "columns %d, %d not orthogonal", a, b)
			}
		}
	}
}

func TestExtractFactorsDeterministic(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 50, names, 21)

	f1, s1, w1, _, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)
	f2, s2, w2, _, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	for i := 0; i < 50; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, f1.At(i, j), f2.At(i, j))
		}
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, w1.At(i, j), w2.At(i, j))
		}
	}
}

// Apply performs the raw projection X_std·W with no extra singular-value
// rescaling. Because X_std·V = U·diag(S) holds identically, applying the
// fitted model to the exact training data must reproduce fit's factor
// values within numerical tolerance.
func TestApplyReproducesFitOnTrainingData(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 100, names, 5)

	factors, _, weights, scaling, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	applied, err := ApplyFactors(train, names, weights, scaling, 3)
	require.NoError(t, err)

	assert.Equal(t, train.Index(), applied.Index())
	for j := 0; j < 3; j++ {
		for i := 0; i < 100; i++ {
			assert.InDelta(t, factors.At(i, j), applied.At(i, j), 1e-9,
				"row %d component %d", i, j)
		}
	}
}

func TestMissingValueImputation(t *testing.T) {
	names := []string{"a", "b", "c"}
	data := map[string][]float64{
		"a": {1.0, 2.0, math.NaN(), 4.0, 5.0, math.NaN()},
		"b": {2.0, 1.0, 3.0, 5.0, 4.0, math.NaN()},
		"c": {-1.0, 0.5, 1.5, math.NaN(), -0.5, math.NaN()},
	}
	df, err := dataframe.New(nil, names, data)
	require.NoError(t, err)

	factors, _, weights, scaling, err := ExtractFactors(df, names, 2)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		for j := 0; j < 2; j++ {
			assert.False(t, math.IsNaN(factors.At(i, j)),
				"NaN leaked into factors at (%d, %d)", i, j)
		}
	}

	// Row 5 is entirely missing: imputation replaces it with the training
	// means, so its standardized signal and factor values are zero.
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 0.0, factors.At(5, j), 1e-10)
	}

	applied, err := ApplyFactors(df, names, weights, scaling, 2)
	require.NoError(t, err)
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 0.0, applied.At(5, j), 1e-10)
	}
}

func TestEndToEndHeldOutSlice(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 100, names, 9)
	test := randomPanel(t, 20, names, 10)

	factors, s, weights, scaling, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)

	r, c := factors.Dims()
	require.Equal(t, 100, r)
	require.Equal(t, 3, c)
	require.Len(t, s, 5)

	applied, err := ApplyFactors(test, names, weights, scaling, 3)
	require.NoError(t, err)

	ar, ac := applied.Dims()
	assert.Equal(t, 20, ar)
	assert.Equal(t, 3, ac)
	assert.Equal(t, test.Index(), applied.Index())
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			v := applied.At(i, j)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0),
				"non-finite output at (%d, %d)", i, j)
		}
	}
}

func TestExtractFactorsNoReduction(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 40, names, 13)

	factors, s, weights, _, err := ExtractFactors(train, names, len(names))
	require.NoError(t, err)

	_, c := factors.Dims()
	assert.Equal(t, len(names), c)
	assert.Len(t, s, len(names))
	wr, wc := weights.Dims()
	assert.Equal(t, len(names), wr)
	assert.Equal(t, len(names), wc)
}

func TestExtractFactorsValidation(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 30, names, 17)

	tests := []struct {
		name        string
		factorNames []string
		nFactors    int
	}{
		{name: "zero components", factorNames: names, nFactors: 0},
		{name: "negative components", factorNames: names, nFactors: -1},
		{name: "more components than factors", factorNames: names, nFactors: 6},
		{name: "empty factor list", factorNames: nil, nFactors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, err := ExtractFactors(train, tt.factorNames, tt.nFactors)
			assert.Error(t, err)
		})
	}
}

func TestExtractFactorsMissingColumn(t *testing.T) {
	train := randomPanel(t, 30, []string{"a", "b"}, 19)
	_, _, _, _, err := ExtractFactors(train, []string{"a", "nope"}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestApplyFactorsMissingColumn(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 30, names, 23)
	_, _, weights, scaling, err := ExtractFactors(train, names, 2)
	require.NoError(t, err)

	// The new table lacks one of the fitted columns.
	test := randomPanel(t, 10, []string{"value", "momentum", "quality", "size"}, 24)
	_, err = ApplyFactors(test, names, weights, scaling, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestApplyFactorsOrderMismatch(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 30, names, 29)
	_, _, weights, scaling, err := ExtractFactors(train, names, 2)
	require.NoError(t, err)

	reordered := []string{"momentum", "value", "quality", "size", "volatility"}
	_, err = ApplyFactors(train, reordered, weights, scaling, 2)
	require.Error(t, err)

	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestApplyFactorsDimensionChecks(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 30, names, 31)
	_, _, weights, scaling, err := ExtractFactors(train, names, 2)
	require.NoError(t, err)

	// nFactors disagreeing with the fitted weights is a dimension error.
	_, err = ApplyFactors(train, names, weights, scaling, 3)
	assert.Error(t, err)

	_, err = ApplyFactors(train, names, nil, scaling, 2)
	assert.Error(t, err)
	_, err = ApplyFactors(train, names, weights, nil, 2)
	assert.Error(t, err)
}

func TestFactorExtractorEstimator(t *testing.T) {
	names := signalNames()
	train := randomPanel(t, 60, names, 37)
	test := randomPanel(t, 15, names, 38)

	ext := NewFactorExtractor(names, 3)

	_, err := ext.Transform(test)
	require.Error(t, err, "Transform before Fit must fail")
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	fitted, err := ext.FitTransform(train)
	require.NoError(t, err)

	// The wrapper must agree with the pure functions.
	factors, s, weights, scaling, err := ExtractFactors(train, names, 3)
	require.NoError(t, err)
	assert.Equal(t, s, ext.SingularValues())
	for i := 0; i < 60; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, factors.At(i, j), fitted.At(i, j))
		}
	}

	got, err := ext.Transform(test)
	require.NoError(t, err)
	want, err := ApplyFactors(test, names, weights, scaling, 3)
	require.NoError(t, err)
	for i := 0; i < 15; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, want.At(i, j), got.At(i, j))
		}
	}
}

func TestFactorColumns(t *testing.T) {
	assert.Equal(t, []string{"SVD_Factor_1", "SVD_Factor_2"}, FactorColumns(2))
	assert.Empty(t, FactorColumns(0))
}
