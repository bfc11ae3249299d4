// Package quantfactor reduces large panels of correlated predictive signals
// into a small number of orthogonal components via Singular Value
// Decomposition, fitted on a training period and applied unchanged to later
// periods.
//
// The core lives in the svd package as a fit/apply pair:
//
//   - svd.ExtractFactors standardizes the selected factor columns of a
//     training table, decomposes the standardized matrix, and returns the new
//     factor values, the component directions (signal weights), the singular
//     values, and the standardization statistics.
//   - svd.ApplyFactors standardizes a new table with the *training*
//     statistics and projects it onto the stored directions. It never
//     recomputes statistics from the new data.
//
// The signal weights and the scaling statistics together constitute the
// fitted model; callers pass and store them as a unit. Fit output is
// U·diag(S) (component magnitude proportional to explained variance); apply
// output is the raw projection of the standardized data onto the stored
// directions, with no additional rescaling. This projection convention is
// intentional and documented on both functions.
//
// Quick start:
//
//	factors, s, weights, scaling, err := svd.ExtractFactors(train, names, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	held, err := svd.ApplyFactors(test, names, weights, scaling, 3)
//
// Supporting packages: dataframe (named-column tables with preserved row
// identifiers), preprocessing (missing-value-aware standardization), metrics
// (variance-explained and reconstruction diagnostics), visualization (scree
// plots).
package quantfactor
