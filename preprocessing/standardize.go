// Package preprocessing は因子パネルの標準化を提供します。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/quantfactor/core/model"
	"github.com/YuminosukeSato/quantfactor/core/parallel"
	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// Standardizer は欠損値を考慮した標準化スケーラー。
// 各列の平均と標本標準偏差（ddof=1）を非欠損値のみから計算し、
// Transformでは欠損値を訓練時の平均で補完してから標準化する。
//
// 統計量はFitで一度だけ計算され、以後不変。テストデータにも訓練時の
// 統計量をそのまま適用する（リーク防止の基本契約）。
//
// 注意: 分散がゼロの列（定数列）はガードしない。標準化でInf/NaNが
// 発生し下流に伝播する。呼び出し側の前提条件であり、事前検証には
// CheckVarianceを使用する。
type Standardizer struct {
	model.BaseEstimator

	// Mean は各列の平均値（非欠損値のみから計算）
	Mean []float64

	// Std は各列の標本標準偏差（ddof=1、非欠損値のみから計算）
	Std []float64

	// NFeatures は列数
	NFeatures int
}

// 行ループを並列化する閾値。これ以下の行数では逐次処理を使用
const parallelThreshold = 1000

// インターフェース実装の確認
var _ model.Transformer = (*Standardizer)(nil)

// NewStandardizer は新しいStandardizerを作成する
func NewStandardizer() *Standardizer {
	return &Standardizer{}
}

// Fit は訓練データから列ごとの平均と標本標準偏差を計算する。
// NaNは欠損値として統計量から除外される。
func (s *Standardizer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("Standardizer.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)

	for j := 0; j < c; j++ {
		sum := 0.0
		count := 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			// 全欠損列。統計量はNaNのまま伝播させる
			s.Mean[j] = math.NaN()
			s.Std[j] = math.NaN()
			continue
		}
		s.Mean[j] = sum / float64(count)

		if count < 2 {
			s.Std[j] = math.NaN()
			continue
		}
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			diff := v - s.Mean[j]
			sumSquares += diff * diff
		}
		s.Std[j] = math.Sqrt(sumSquares / float64(count-1))
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計量でデータを標準化する。
// 欠損値は訓練時の平均で補完されるため、標準化後はゼロになる。
func (s *Standardizer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Standardizer", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("Standardizer.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				v := X.At(i, j)
				if math.IsNaN(v) {
					v = s.Mean[j]
				}
				result.Set(i, j, (v-s.Mean[j])/s.Std[j])
			}
		}
	})

	return result, nil
}

// FitTransform は訓練データで統計量を学習し、同じデータを標準化する
func (s *Standardizer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String はスケーラーの文字列表現を返す
func (s *Standardizer) String() string {
	if !s.IsFitted() {
		return "Standardizer()"
	}
	return fmt.Sprintf("Standardizer(n_features=%d)", s.NFeatures)
}

// CheckVariance は分散がゼロ（または計算不能）の列を検出し、
// 該当列があればValidationErrorを返す。標準化のゼロ除算を
// 事前に検出したい呼び出し側向けのオプトイン検証。
func CheckVariance(X mat.Matrix) error {
	s := NewStandardizer()
	if err := s.Fit(X); err != nil {
		return err
	}

	var degenerate []int
	for j, std := range s.Std {
		if std == 0 || math.IsNaN(std) {
			degenerate = append(degenerate, j)
		}
	}
	if len(degenerate) > 0 {
		return errors.NewValidationError("X", "zero-variance or undefined-variance columns", degenerate)
	}
	return nil
}
