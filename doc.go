// Package attrition analyzes employee attrition in an HR dataset.
//
// The module implements two analysis paths over the same CSV input:
//
//   - An inferential binomial GLM over three numeric predictors (Age,
//     YearsSinceLastPromotion, DistanceFromHome) with a classical
//     coefficient summary: estimates, standard errors and Wald p-values.
//   - A predictive comparison of an L1-regularized logistic regression
//     and a 100-tree random forest over the label-encoded feature set,
//     scored on a held-out split.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/peopleml/attrition/pipeline"
//	)
//
//	func main() {
//	    cfg := pipeline.DefaultConfig()
//	    cfg.DataPath = "hr_attrition.csv"
//
//	    res, err := pipeline.RunGLM(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(res.Summary)
//	}
//
// # Packages
//
//   - dataset: CSV loading, feature classification, label encoding and
//     deterministic train/test splitting
//   - linear: BinomialGLM (IRLS) and LassoLogisticRegression
//     (coordinate descent)
//   - tree, ensemble: CART decision tree and the bagged random forest
//   - metrics: accuracy and the binary confusion matrix
//   - figures: PNG histograms and coefficient charts
//   - pipeline: orchestration of the two analysis paths
//
// The cmd/attrition command exposes the pipeline as a CLI.
package attrition
