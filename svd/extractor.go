// Package svd は相関した予測シグナル（ファクター）群を特異値分解で
// 少数の直交成分に縮約する変換を提供します。
//
// 変換は fit/apply の二段構成。ExtractFactorsが訓練データから標準化
// 統計量とSVD基底を学習し、ApplyFactorsがその基底と統計量を再計算せずに
// 新しいデータへ適用する。シグナル重みと標準化統計量の二つが学習結果の
// すべてであり、呼び出し側が一組として保持・受け渡しする。
package svd

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/quantfactor/dataframe"
	"github.com/YuminosukeSato/quantfactor/pkg/errors"
	"github.com/YuminosukeSato/quantfactor/preprocessing"
)

// FactorColumns は出力ファクター列の名前 "SVD_Factor_1".."SVD_Factor_n" を返す
func FactorColumns(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("SVD_Factor_%d", i+1)
	}
	return names
}

// ExtractFactors は訓練データの指定ファクター列を標準化し、特異値分解で
// 直交する新ファクターを抽出する。
//
// 戻り値:
//   - factors: 新ファクターのテーブル (rows×nFactors)。列名はSVD_Factor_i、
//     行識別子は入力テーブルのものを保存する。値は U[:, :n]·diag(S[:n])、
//     つまり左特異ベクトルを特異値でスケールしたもの
//   - singularValues: min(rows, k) 個の特異値すべて（非負・降順）
//   - weights: シグナル重み (k×nFactors)。Vᵀの先頭n行の転置で、行は
//     ファクター名で添字付けされる。ApplyFactorsがそのまま使用する
//   - scaling: 標準化統計量 (k×2)。列は "mean" と "std"（非欠損値に対する
//     平均と標本標準偏差）。ApplyFactorsがそのまま使用する
//
// 欠損値は列平均で補完される（標準化後はゼロ寄与）。分散ゼロの列は
// ガードされず、Inf/NaNが下流に伝播する（前提条件。事前検証には
// preprocessing.CheckVarianceを使用）。
//
// 主SVDルーチンが収束しない場合はConvergenceWarningを通知して代替
// ルーチンにフォールバックし、両方失敗した場合のみエラーを返す。
func ExtractFactors(data *dataframe.DataFrame, factorNames []string, nFactors int) (factors *dataframe.DataFrame, singularValues []float64, weights, scaling *dataframe.DataFrame, err error) {
	k := len(factorNames)
	if k == 0 {
		return nil, nil, nil, nil, errors.NewValidationError("factorNames", "must not be empty", factorNames)
	}
	if nFactors < 1 || nFactors > k {
		return nil, nil, nil, nil, errors.NewValidationError("nFactors", "must be between 1 and the number of factors", nFactors)
	}

	// 呼び出し側のテーブルを変更しないよう選択時にコピーする
	sub, err := data.Select(factorNames)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	X := sub.Matrix()
	rows, _ := X.Dims()
	if nFactors > min(rows, k) {
		return nil, nil, nil, nil, errors.NewValidationError("nFactors", "must not exceed min(rows, factors)", nFactors)
	}

	scaler := preprocessing.NewStandardizer()
	standardized, err := scaler.FitTransform(X)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	u, s, v, err := decompose(standardized)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// 新ファクター = U[:, :n]·diag(S[:n])。
	// 特異値でスケールするため、各ファクターの大きさは説明分散に比例する
	f := mat.NewDense(rows, nFactors, nil)
	for j := 0; j < nFactors; j++ {
		for i := 0; i < rows; i++ {
			f.Set(i, j, u.At(i, j)*s[j])
		}
	}

	names := FactorColumns(nFactors)
	factors, err = dataframe.FromMatrix(data.Index(), names, f)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// シグナル重み = Vᵀ[:n, :] の転置（= Vの先頭n列）。ファクター名添字
	weights, err = dataframe.FromMatrix(factorNames, names, v.Slice(0, k, 0, nFactors))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	scaling, err = dataframe.New(factorNames, []string{"mean", "std"}, map[string][]float64{
		"mean": scaler.Mean,
		"std":  scaler.Std,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return factors, s, weights, scaling, nil
}

// ApplyFactors は学習済みのシグナル重みと標準化統計量を新しいデータへ
// 適用し、(rows×nFactors) のファクターテーブルを返す。
//
// 標準化と欠損値補完には必ず訓練時の統計量を使用し、新データから
// 統計量を再計算しない（リーク防止と学習済み線形写像との整合のための
// 中心的な不変条件）。
//
// 出力は標準化済みデータとシグナル重みの積そのものであり、ExtractFactorsと
// 異なり特異値による追加のスケーリングは一切行わない。新データ自身の
// 特異値は存在しないため、適用時には学習済みの方向ベクトルのみを再利用
// する。なお X_std·V = U·diag(S) が恒等的に成り立つため、訓練データ
// そのものに適用した場合の出力はfit出力と（数値誤差の範囲で）一致する。
// この射影規約は意図されたものであり、変更してはならない。
//
// factorNamesはExtractFactorsに渡した列リストと同一の順序でなければ
// ならない。重みテーブルの行添字とfactorNamesの名前照合は行うが、
// 数値的な整合までは検証しない（呼び出し側の契約）。
func ApplyFactors(data *dataframe.DataFrame, factorNames []string, weights, scaling *dataframe.DataFrame, nFactors int) (*dataframe.DataFrame, error) {
	k := len(factorNames)
	if k == 0 {
		return nil, errors.NewValidationError("factorNames", "must not be empty", factorNames)
	}
	if nFactors < 1 {
		return nil, errors.NewValidationError("nFactors", "must be positive", nFactors)
	}
	if weights == nil || scaling == nil {
		return nil, errors.NewValueError("svd.ApplyFactors", "weights and scaling must come from ExtractFactors")
	}

	wr, wc := weights.Dims()
	if wr != k {
		return nil, errors.NewDimensionError("svd.ApplyFactors", k, wr, 0)
	}
	if wc != nFactors {
		return nil, errors.NewDimensionError("svd.ApplyFactors", nFactors, wc, 1)
	}
	for i, name := range weights.Index() {
		if name != factorNames[i] {
			return nil, errors.NewValidationError("factorNames", "order differs from the weights' row order", name)
		}
	}
	if sr := scaling.Rows(); sr != k {
		return nil, errors.NewDimensionError("svd.ApplyFactors", k, sr, 0)
	}

	means, err := scaling.Column("mean")
	if err != nil {
		return nil, err
	}
	stds, err := scaling.Column("std")
	if err != nil {
		return nil, err
	}

	sub, err := data.Select(factorNames)
	if err != nil {
		return nil, err
	}
	X := sub.Matrix()
	rows, _ := X.Dims()

	// 訓練時の統計量で補完・標準化する
	scaler := &preprocessing.Standardizer{Mean: means, Std: stds, NFeatures: k}
	scaler.SetFitted()
	standardized, err := scaler.Transform(X)
	if err != nil {
		return nil, err
	}

	projected := mat.NewDense(rows, nFactors, nil)
	projected.Mul(standardized, weights.Matrix())

	return dataframe.FromMatrix(data.Index(), FactorColumns(nFactors), projected)
}
