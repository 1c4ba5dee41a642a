package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-analyzer/internal/export"
	"github.com/jonathan/ats-analyzer/internal/observability"
	"github.com/jonathan/ats-analyzer/internal/pipeline"
	"github.com/jonathan/ats-analyzer/internal/rules"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		jdPath  string
		xlsx    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE [FILE...]",
		Short: "Score one or more plain-text résumés",
		Long: `Analyze runs the full pipeline over each résumé file ("-" reads stdin) and prints the JSON report.
A single file prints its report; several files print the batch items in input order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			jd := ""
			if jdPath != "" {
				data, err := readInput(cmd.InOrStdin(), jdPath)
				if err != nil {
					return err
				}
				jd = data
			}

			reqs := make([]pipeline.Request, len(args))
			for i, path := range args {
				text, err := readInput(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				reqs[i] = pipeline.Request{ID: inputID(path), Text: text, JobDescription: jd}
			}

			src, closeSrc, err := a.ruleSource(ctx)
			if err != nil {
				return err
			}
			defer closeSrc()

			printer := observability.NewPrinter(cmd.ErrOrStderr())
			opts := pipeline.Options{
				Logger:       a.log,
				MaxTextBytes: a.cfg.Analysis.MaxTextBytes,
				Concurrency:  a.cfg.Analysis.Concurrency,
			}
			if verbose && len(reqs) == 1 {
				opts.OnProgress = printer.PrintProgress
			}
			analyzer := pipeline.New(rules.NewCache(src, a.log), opts)

			var (
				items  []pipeline.BatchItem
				output any
				failed int
			)
			if len(reqs) == 1 {
				report, err := analyzer.Analyze(ctx, reqs[0])
				if err != nil {
					return err
				}
				items = []pipeline.BatchItem{{ID: reqs[0].ID, Report: report}}
				output = report
			} else {
				items, err = analyzer.AnalyzeBatch(ctx, reqs)
				if err != nil {
					return err
				}
				output = items
			}

			for _, item := range items {
				if item.Error != nil {
					failed++
					continue
				}
				if verbose {
					printer.PrintReport(item.Report)
				}
			}

			if err := writeJSON(cmd.OutOrStdout(), output); err != nil {
				return err
			}

			if xlsx != "" {
				path, err := export.ExportToExcel(items, xlsx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote spreadsheet report to %s\n", path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d analyses failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jdPath, "jd", "", "Path to a job description used for skills relevance")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write a spreadsheet report to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	return cmd
}

// readInput reads a file, or stdin when path is "-"
func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func inputID(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
