package svd

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// decompose は標準化済み行列の薄い特異値分解を計算する。
// 戻り値は U (m×r)、降順の特異値 s (長さ r = min(m, k))、V (k×r)。
//
// 主ルーチン（gonum/mat.SVD）が収束しない場合はConvergenceWarningを
// 警告チャネルに通知し、グラム行列の対称固有値分解による代替ルーチンへ
// フォールバックする。両方が失敗した場合のみエラーを返す。
func decompose(x mat.Matrix) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	var svd mat.SVD
	if svd.Factorize(x, mat.SVDThin) {
		u = &mat.Dense{}
		v = &mat.Dense{}
		svd.UTo(u)
		svd.VTo(v)
		return u, svd.Values(nil), v, nil
	}

	errors.Warn(errors.NewConvergenceWarning(
		"gonum/mat.SVD", "gram eigendecomposition",
		"thin factorization did not converge"))

	return gramSVD(x)
}

// gramSVD はグラム行列の固有値分解から薄いSVDを再構成する代替ルーチン。
// 数学的な契約は主ルーチンと同一（U·diag(s)·Vᵀ ≈ X、特異値は降順）だが、
// 数値経路が異なるため主ルーチンが収束しない行列でも成功しうる。
// 符号の不定性はSVD固有のものとしてそのまま残る。
func gramSVD(x mat.Matrix) (*mat.Dense, []float64, *mat.Dense, error) {
	m, n := x.Dims()

	if m >= n {
		// G = XᵀX (n×n) の固有値分解から V と s を得て、U = X·V·diag(1/s)
		var g mat.SymDense
		g.SymOuterK(1, x.T())

		s, v, err := eigenDescending(&g, n)
		if err != nil {
			return nil, nil, nil, err
		}

		u := mat.NewDense(m, n, nil)
		u.Mul(x, v)
		scaleColumns(u, s)
		return u, s, v, nil
	}

	// 横長の場合は H = XXᵀ (m×m) から U を得て、V = Xᵀ·U·diag(1/s)
	var h mat.SymDense
	h.SymOuterK(1, x)

	s, u, err := eigenDescending(&h, m)
	if err != nil {
		return nil, nil, nil, err
	}

	v := mat.NewDense(n, m, nil)
	v.Mul(x.T(), u)
	scaleColumns(v, s)
	return u, s, v, nil
}

// eigenDescending は対称行列の固有値分解を行い、固有値の平方根（特異値）を
// 降順に並べ替えた s と、対応する固有ベクトルを列に持つ行列を返す。
func eigenDescending(g mat.Symmetric, dim int) ([]float64, *mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(g, true) {
		return nil, nil, errors.Wrap(errors.ErrDecompositionFailed, "gram eigendecomposition did not converge")
	}

	// gonumのEigenSymは固有値を昇順で返すため反転する
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	s := make([]float64, dim)
	sorted := mat.NewDense(dim, dim, nil)
	for k := 0; k < dim; k++ {
		ev := vals[dim-1-k]
		if ev < 0 {
			// 丸め誤差による僅かな負値はゼロに切り上げる
			ev = 0
		}
		s[k] = math.Sqrt(ev)
		for i := 0; i < dim; i++ {
			sorted.Set(i, k, vecs.At(i, dim-1-k))
		}
	}
	return s, sorted, nil
}

// scaleColumns は各列を対応する特異値で割る。特異値ゼロの列は
// ランク落ち方向でありゼロベクトルに落とす。
func scaleColumns(m *mat.Dense, s []float64) {
	r, c := m.Dims()
	for k := 0; k < c && k < len(s); k++ {
		if s[k] == 0 {
			for i := 0; i < r; i++ {
				m.Set(i, k, 0)
			}
			continue
		}
		for i := 0; i < r; i++ {
			m.Set(i, k, m.At(i, k)/s[k])
		}
	}
}
