package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/surface"
)

func newScoreCmd(g *globalOpts) *cobra.Command {
	var (
		instrumentID   string
		answers        []int
		submissionPath string
		outputFmt      string
		exportReport   bool
		savePath       string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one instrument or a whole submission",
		Long: `Scores answers for a single instrument (--instrument with --answers), or every
instrument in a submission file (--submission, "-" for stdin). Unanswered
questions use -1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), cmd.OutOrStdout(), g, scoreOpts{
				instrumentID:   instrumentID,
				answers:        answers,
				submissionPath: submissionPath,
				outputFmt:      outputFmt,
				exportReport:   exportReport,
				savePath:       savePath,
			})
		},
	}

	cmd.Flags().StringVar(&instrumentID, "instrument", "", "Instrument id or alias")
	cmd.Flags().IntSliceVar(&answers, "answers", nil, "Comma-separated answer values, e.g. 1,2,3,0")
	cmd.Flags().StringVar(&submissionPath, "submission", "", "Path to a submission JSON file")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json, or markdown")
	cmd.Flags().BoolVar(&exportReport, "export", false, "Publish the report to the configured export backend")
	cmd.Flags().StringVar(&savePath, "save", "", "Also write the report JSON to this path")
	cmd.MarkFlagsMutuallyExclusive("instrument", "submission")
	cmd.MarkFlagsRequiredTogether("instrument", "answers")
	cmd.MarkFlagsOneRequired("instrument", "submission")

	return cmd
}

type scoreOpts struct {
	instrumentID   string
	answers        []int
	submissionPath string
	outputFmt      string
	exportReport   bool
	savePath       string
}

func runScore(ctx context.Context, w io.Writer, g *globalOpts, opts scoreOpts) error {
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	e, err := setup(g)
	if err != nil {
		return err
	}
	defer e.close()

	sub, err := buildSubmission(opts)
	if err != nil {
		return err
	}

	report, err := e.evaluator.Evaluate(sub)
	if err != nil {
		return err
	}

	if opts.savePath != "" {
		if err := assessment.SaveReport(opts.savePath, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved: %s\n", opts.savePath)
	}

	if opts.exportReport {
		sink, err := export.New(ctx, e.cfg.Export)
		if err != nil {
			return err
		}
		defer closeSink(sink)
		if err := export.Publish(ctx, sink, report); err != nil {
			return err
		}
		e.log.Info("report exported",
			zap.String("report", report.ID),
			zap.String("backend", firstNonEmpty(e.cfg.Export.Backend, "local")),
		)
	}

	return renderer.Render(w, report)
}

func buildSubmission(opts scoreOpts) (*assessment.Submission, error) {
	if opts.submissionPath != "" {
		return assessment.LoadSubmission(opts.submissionPath)
	}
	if opts.instrumentID == "" {
		return nil, fmt.Errorf("either --instrument with --answers or --submission is required")
	}
	return &assessment.Submission{
		ID:          "cli",
		Instruments: []string{opts.instrumentID},
		Answers:     opts.answers,
	}, nil
}
