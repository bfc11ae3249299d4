package svd

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func randomMatrix(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

// The fallback routine must satisfy the same contract as the primary one:
// identical singular values and identical subspaces up to the sign ambiguity
// inherent to SVD.
func TestGramSVDMatchesPrimary(t *testing.T) {
	x := randomMatrix(8, 5, 1)

	u1, s1, v1, err := decompose(x)
	if err != nil {
		t.Fatalf("decompose() error = %v", err)
	}
	u2, s2, v2, err := gramSVD(x)
	if err != nil {
		t.Fatalf("gramSVD() error = %v", err)
	}

	if len(s1) != len(s2) {
		t.Fatalf("singular value counts differ: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if math.Abs(s1[i]-s2[i]) > 1e-8 {
			t.Errorf("s[%d] = %v (primary) vs %v (fallback)", i, s1[i], s2[i])
		}
	}

	// Compare singular vectors component-wise after resolving each
	// column's sign against the primary routine.
	for k := range s1 {
		sign := 1.0
		dot := 0.0
		for i := 0; i < 5; i++ {
			dot += v1.At(i, k) * v2.At(i, k)
		}
		if dot < 0 {
			sign = -1.0
		}
		for i := 0; i < 5; i++ {
			if diff := math.Abs(v1.At(i, k) - sign*v2.At(i, k)); diff > 1e-8 {
				t.Errorf("V(%d, %d) differs by %v", i, k, diff)
			}
		}
		for i := 0; i < 8; i++ {
			if diff := math.Abs(u1.At(i, k) - sign*u2.At(i, k)); diff > 1e-8 {
				t.Errorf("U(%d, %d) differs by %v", i, k, diff)
			}
		}
	}
}

func TestGramSVDReconstruction(t *testing.T) {
	tests := []struct {
		name string
		rows int
		cols int
	}{
		{name: "tall matrix", rows: 9, cols: 4},
		{name: "wide matrix", rows: 4, cols: 7},
		{name: "square matrix", rows: 5, cols: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := randomMatrix(tt.rows, tt.cols, 2)

			u, s, v, err := gramSVD(x)
			if err != nil {
				t.Fatalf("gramSVD() error = %v", err)
			}

			r := len(s)
			if want := min(tt.rows, tt.cols); r != want {
				t.Fatalf("len(s) = %d, want %d", r, want)
			}
			for i := 0; i+1 < r; i++ {
				if s[i] < s[i+1] {
					t.Errorf("singular values not descending at %d: %v < %v", i, s[i], s[i+1])
				}
			}

			// U · diag(s) · Vᵀ must reproduce X.
			us := mat.NewDense(tt.rows, r, nil)
			for j := 0; j < r; j++ {
				for i := 0; i < tt.rows; i++ {
					us.Set(i, j, u.At(i, j)*s[j])
				}
			}
			var recon mat.Dense
			recon.Mul(us, v.T())

			for i := 0; i < tt.rows; i++ {
				for j := 0; j < tt.cols; j++ {
					if diff := math.Abs(recon.At(i, j) - x.At(i, j)); diff > 1e-8 {
						t.Errorf("reconstruction off by %v at (%d, %d)", diff, i, j)
					}
				}
			}
		})
	}
}

func TestGramSVDOrthonormalVectors(t *testing.T) {
	x := randomMatrix(10, 4, 3)

	u, s, v, err := gramSVD(x)
	if err != nil {
		t.Fatalf("gramSVD() error = %v", err)
	}

	checkOrthonormal := func(name string, m *mat.Dense, dim int) {
		for a := 0; a < len(s); a++ {
			for b := 0; b < len(s); b++ {
				dot := 0.0
				for i := 0; i < dim; i++ {
					dot += m.At(i, a) * m.At(i, b)
				}
				want := 0.0
				if a == b {
					want = 1.0
				}
				if math.Abs(dot-want) > 1e-8 {
					t.Errorf("%s columns (%d, %d): dot = %v, want %v", name, a, b, dot, want)
				}
			}
		}
	}

	checkOrthonormal("U", u, 10)
	checkOrthonormal("V", v, 4)
}

func TestGramSVDRankDeficient(t *testing.T) {
	// Two identical columns: one singular value is (numerically) zero and
	// its direction must collapse to a zero column instead of blowing up.
	x := mat.NewDense(6, 2, nil)
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 6; i++ {
		v := rng.NormFloat64()
		x.Set(i, 0, v)
		x.Set(i, 1, v)
	}

	u, s, _, err := gramSVD(x)
	if err != nil {
		t.Fatalf("gramSVD() error = %v", err)
	}
	if s[1] > 1e-6 {
		t.Fatalf("expected near-zero second singular value, got %v", s[1])
	}
	for i := 0; i < 6; i++ {
		if v := u.At(i, 1); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("U(%d, 1) = %v, want finite", i, v)
		}
	}
}
