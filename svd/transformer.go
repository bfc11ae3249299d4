package svd

import (
	"fmt"

	"github.com/YuminosukeSato/quantfactor/core/model"
	"github.com/YuminosukeSato/quantfactor/dataframe"
	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// FactorExtractor はExtractFactors/ApplyFactorsをestimatorとして包んだ
// 変換器。Fitで基底と統計量を学習し、Transformで任意のテーブルへ適用する。
//
// 学習後の重み・統計量は不変であり、同一のFactorExtractorに対する
// 複数のTransform呼び出しは同期なしに並行実行できる。
type FactorExtractor struct {
	model.BaseEstimator

	factorNames []string
	nFactors    int

	singularValues []float64
	weights        *dataframe.DataFrame
	scaling        *dataframe.DataFrame
}

// インターフェース実装の確認
var _ model.FrameTransformer = (*FactorExtractor)(nil)

// NewFactorExtractor は新しいFactorExtractorを作成する。
// factorNamesはFitとTransformの両方で同じ順序で使用される。
func NewFactorExtractor(factorNames []string, nFactors int) *FactorExtractor {
	return &FactorExtractor{
		factorNames: append([]string(nil), factorNames...),
		nFactors:    nFactors,
	}
}

// Fit は訓練テーブルから標準化統計量とSVD基底を学習する
func (e *FactorExtractor) Fit(df *dataframe.DataFrame) error {
	_, s, weights, scaling, err := ExtractFactors(df, e.factorNames, e.nFactors)
	if err != nil {
		return err
	}
	e.singularValues = s
	e.weights = weights
	e.scaling = scaling
	e.SetFitted()
	return nil
}

// Transform は学習済みの基底と統計量を新しいテーブルへ適用する。
// 出力は特異値によるスケーリングなしの射影（ApplyFactorsと同一）。
func (e *FactorExtractor) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("FactorExtractor", "Transform")
	}
	return ApplyFactors(df, e.factorNames, e.weights, e.scaling, e.nFactors)
}

// FitTransform はFitを実行し、訓練データに対するfitスケーリング済みの
// ファクターテーブル（U·diag(S)）を返す。Transformの出力とは特異値倍
// だけ異なることに注意。
func (e *FactorExtractor) FitTransform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	factors, s, weights, scaling, err := ExtractFactors(df, e.factorNames, e.nFactors)
	if err != nil {
		return nil, err
	}
	e.singularValues = s
	e.weights = weights
	e.scaling = scaling
	e.SetFitted()
	return factors, nil
}

// SingularValues は全特異値（降順）のコピーを返す
func (e *FactorExtractor) SingularValues() []float64 {
	return append([]float64(nil), e.singularValues...)
}

// Weights は学習済みのシグナル重みテーブル (k×nFactors) を返す
func (e *FactorExtractor) Weights() *dataframe.DataFrame {
	return e.weights
}

// Scaling は学習済みの標準化統計量テーブル (k×2) を返す
func (e *FactorExtractor) Scaling() *dataframe.DataFrame {
	return e.scaling
}

// String は変換器の文字列表現を返す
func (e *FactorExtractor) String() string {
	if !e.IsFitted() {
		return fmt.Sprintf("FactorExtractor(n_factors=%d)", e.nFactors)
	}
	return fmt.Sprintf("FactorExtractor(n_factors=%d, n_signals=%d)", e.nFactors, len(e.factorNames))
}
