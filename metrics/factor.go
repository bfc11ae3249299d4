// Package metrics はファクターモデルの診断指標を提供します。
package metrics

import (
	"github.com/YuminosukeSato/quantfactor/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// VarianceExplained は各特異値が説明する分散の比率を計算する。
// 比率は特異値の二乗を全体の二乗和で正規化したもので、入力と同じ順序で返す。
func VarianceExplained(singularValues []float64) ([]float64, error) {
	// 入力検証
	if len(singularValues) == 0 {
		return nil, errors.NewValueError("VarianceExplained", "empty singular values")
	}

	total := 0.0
	for _, s := range singularValues {
		if s < 0 {
			return nil, errors.NewValueError("VarianceExplained", "singular values must be non-negative")
		}
		total += s * s
	}

	ratios := make([]float64, len(singularValues))
	for i, s := range singularValues {
		// 全特異値ゼロの退化ケースでは比率もゼロとする
		ratios[i] = errors.SafeDivide(s*s, total)
	}
	return ratios, nil
}

// CumulativeVarianceExplained は先頭からの累積説明分散比率を計算する。
// 要素iは上位i+1成分が説明する分散の合計比率。
func CumulativeVarianceExplained(singularValues []float64) ([]float64, error) {
	ratios, err := VarianceExplained(singularValues)
	if err != nil {
		return nil, err
	}

	cumulative := make([]float64, len(ratios))
	sum := 0.0
	for i, r := range ratios {
		sum += r
		cumulative[i] = sum
	}
	return cumulative, nil
}

// ReconstructionMSE は打ち切り基底によるランクn再構成の平均二乗誤差を計算する。
//
// standardizedは標準化済みの元データ (m×k)、factorsはfitスケーリング済みの
// ファクター U·diag(S) (m×n)、weightsはシグナル重み (k×n)。
// 再構成は factors·weightsᵀ で、全成分を使えば誤差はゼロに近づく。
func ReconstructionMSE(standardized, factors, weights mat.Matrix) (float64, error) {
	// 入力検証
	m, k := standardized.Dims()
	fr, fc := factors.Dims()
	wr, wc := weights.Dims()

	if m == 0 || k == 0 {
		return 0, errors.NewValueError("ReconstructionMSE", "empty matrix")
	}
	if fr != m {
		return 0, errors.NewDimensionError("ReconstructionMSE", m, fr, 0)
	}
	if wr != k {
		return 0, errors.NewDimensionError("ReconstructionMSE", k, wr, 0)
	}
	if fc != wc {
		return 0, errors.NewDimensionError("ReconstructionMSE", fc, wc, 1)
	}

	var recon mat.Dense
	recon.Mul(factors, weights.T())

	// MSE = (1/(m·k)) * ΣΣ (x - x̂)²
	var sum float64
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			diff := standardized.At(i, j) - recon.At(i, j)
			sum += diff * diff
		}
	}
	return sum / float64(m*k), nil
}
