// Command attrition runs the HR attrition analysis from the command
// line: an inferential GLM summary, a classifier comparison, or both.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/peopleml/attrition/pipeline"
	applog "github.com/peopleml/attrition/pkg/log"
)

var (
	cfg      = pipeline.DefaultConfig()
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "attrition",
	Short: "Employee attrition analysis over an HR dataset CSV",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applog.SetupLogger(logLevel)
		console := applog.NewConsoleLogger(os.Stderr, zerolog.WarnLevel)
		applog.InstallWarningBridge(console)
	},
}

var glmCmd = &cobra.Command{
	Use:   "glm",
	Short: "Fit the binomial GLM and print its coefficient summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.RunGLM(cfg)
		if err != nil {
			return err
		}
		printGLM(res)
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Train and score the lasso and random forest classifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.RunClassifiers(cfg)
		if err != nil {
			return err
		}
		printClassifiers(res)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run both analysis paths and print the combined report",
	RunE: func(cmd *cobra.Command, args []string) error {
		glmRes, err := pipeline.RunGLM(cfg)
		if err != nil {
			return err
		}
		clfRes, err := pipeline.RunClassifiers(cfg)
		if err != nil {
			return err
		}
		printGLM(glmRes)
		fmt.Println()
		printClassifiers(clfRes)
		return nil
	},
}

func printGLM(res *pipeline.GLMResult) {
	fmt.Println("Binomial GLM (staying coded 1)")
	fmt.Println()
	fmt.Print(res.Summary)
	fmt.Printf("\nPredicted at threshold %.2f: %d stay, %d leave\n",
		cfg.Threshold, res.PredictedStay, res.PredictedLeave)
	fmt.Printf("Full-data accuracy: %.4f\n", res.TrainAccuracy)
	fmt.Printf("Holdout accuracy (%.0f%% held out): %.4f\n",
		cfg.GLMTestFraction*100, res.HoldoutAccuracy)
}

func printClassifiers(res *pipeline.ClassifierResult) {
	fmt.Println("Classifier comparison (leaving coded 1)")
	fmt.Println()
	fmt.Printf("Features: %d text, %d declared categorical, %d numerical\n",
		len(res.Features.Object), len(res.Features.Declared), len(res.Features.Numerical))
	fmt.Printf("Split: %d train / %d test rows\n", res.TrainRows, res.TestRows)
	fmt.Println()
	if res.LassoErr != nil {
		fmt.Printf("L1 logistic regression failed: %v\n", res.LassoErr)
	} else {
		fmt.Printf("L1 logistic regression accuracy: %.4f (%d non-zero coefficients)\n",
			res.LassoAccuracy, res.LassoNonZero)
	}
	if res.ForestErr != nil {
		fmt.Printf("Random forest failed: %v\n", res.ForestErr)
		return
	}
	fmt.Printf("Random forest accuracy:          %.4f\n", res.ForestAccuracy)
	fmt.Println()
	fmt.Println("Random forest confusion matrix:")
	fmt.Println(res.ForestConfusion.String())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfg.DataPath, "data", "d", "", "path to the attrition CSV (required)")
	pf.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for splits and the forest")
	pf.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "probability cutoff for GLM predictions")
	pf.Float64Var(&cfg.GLMTestFraction, "glm-test-fraction", cfg.GLMTestFraction, "held-out fraction for GLM scoring")
	pf.Float64Var(&cfg.ClassifierTestFraction, "test-fraction", cfg.ClassifierTestFraction, "test fraction for the classifier split")
	pf.Float64Var(&cfg.LassoC, "lasso-c", cfg.LassoC, "inverse regularization strength of the lasso")
	pf.IntVar(&cfg.NEstimators, "trees", cfg.NEstimators, "number of trees in the random forest")
	pf.StringVar(&cfg.FiguresDir, "figures", "", "directory for rendered PNG figures (optional)")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	_ = rootCmd.MarkPersistentFlagRequired("data")

	rootCmd.AddCommand(glmCmd, classifyCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
