package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/quantfactor/dataframe"
)

// Transformer は行列ベースのデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要な統計量を学習する
	Fit(X mat.Matrix) error

	// Transform は学習済みの統計量でデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// FrameTransformer は名前付き列テーブルを入出力とする変換のインターフェース。
// 行識別子は変換を通して保存される。
type FrameTransformer interface {
	// Fit は訓練テーブルから変換パラメータを学習する
	Fit(df *dataframe.DataFrame) error

	// Transform は学習済みパラメータで新しいテーブルを変換する
	Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(df *dataframe.DataFrame) (*dataframe.DataFrame, error)
}
