package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/conformance/internal/conformance"
	"github.com/born-ml/conformance/internal/parallel"
)

// NewCLI builds the command tree.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "born-conformance",
		Short: "ONNX Split conformance fixture generator",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		NewGenerateCmd(),
		NewVerifyCmd(),
		NewListCmd(),
		NewVersionCmd(),
	)
	return rootCmd
}

// addCommonFlags binds the flags shared by generate and verify onto cfg.
func addCommonFlags(cmd *cobra.Command, cfg *conformance.Config, parallelCopy *bool) {
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Cases processed concurrently")
	cmd.Flags().StringVar(&cfg.Filter, "filter", cfg.Filter, "Glob selecting case names, e.g. 'test_split_*_2d'")
	cmd.Flags().BoolVar(parallelCopy, "parallel-copy", false, "Split large tensors across goroutines")
}

func applyParallel(cfg *conformance.Config, parallelCopy bool) {
	if parallelCopy {
		cfg.Parallel = parallel.DefaultConfig()
	}
}

// NewGenerateCmd writes the fixture set to disk.
func NewGenerateCmd() *cobra.Command {
	cfg := conformance.DefaultConfig()
	var parallelCopy bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write Split fixtures in the ONNX backend-test layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyParallel(&cfg, parallelCopy)
			gen, err := conformance.NewGenerator(cfg)
			if err != nil {
				return err
			}
			results, err := gen.Generate(cmd.Context(), conformance.SplitCases())
			if err != nil {
				return err
			}

			var written, skipped int
			var total int64
			for _, res := range results {
				if res.Skipped {
					skipped++
					continue
				}
				written++
				total += res.Bytes
			}
			klog.Infof("generated %d cases (%s) in %s, %d skipped",
				written, humanize.Bytes(uint64(total)), cfg.OutputDir, skipped) //nolint:gosec // G115: byte counts are non-negative.
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "Output directory")
	cmd.Flags().Int64Var(&cfg.Opset, "opset", cfg.Opset, "Target opset version")
	cmd.Flags().BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Replace existing case directories")
	addCommonFlags(cmd, &cfg, &parallelCopy)
	return cmd
}

// NewVerifyCmd runs every fixture under a directory and compares outputs.
func NewVerifyCmd() *cobra.Command {
	cfg := conformance.DefaultConfig()
	var parallelCopy bool

	cmd := &cobra.Command{
		Use:   "verify DIR",
		Short: "Run fixtures and compare against their expected outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyParallel(&cfg, parallelCopy)
			reports, err := conformance.Verify(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range reports {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", r.Name, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", r.Name)
			}
			klog.Infof("verified %d cases, %d failed", len(reports), failed)
			if failed > 0 {
				return errors.Errorf("%d of %d cases failed", failed, len(reports))
			}
			return nil
		},
	}

	addCommonFlags(cmd, &cfg, &parallelCopy)
	return cmd
}

// NewVersionCmd prints the CLI version.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "born-conformance %s\n", version)
		},
	}
}
