package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/features"
)

func newEncodeCmd(g *globalOpts) *cobra.Command {
	var (
		submissionPath string
		instruments    []string
		answers        []int
		compact        bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode answers into the 201-slot feature vector",
		Long: `Encodes a submission into the fixed-length feature vector. Either pass a
submission file (--submission, "-" for stdin) or the selected instruments and
their flat answers (--instruments with --answers).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.OutOrStdout(), g, encodeOpts{
				submissionPath: submissionPath,
				instruments:    instruments,
				answers:        answers,
				compact:        compact,
			})
		},
	}

	cmd.Flags().StringVar(&submissionPath, "submission", "", "Path to a submission JSON file")
	cmd.Flags().StringSliceVar(&instruments, "instruments", nil, "Selected instrument ids in answer order")
	cmd.Flags().IntSliceVar(&answers, "answers", nil, "Flat comma-separated answers")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print the vector on a single line")
	cmd.MarkFlagsMutuallyExclusive("submission", "instruments")
	cmd.MarkFlagsOneRequired("submission", "instruments")

	return cmd
}

type encodeOpts struct {
	submissionPath string
	instruments    []string
	answers        []int
	compact        bool
}

func runEncode(w io.Writer, g *globalOpts, opts encodeOpts) error {
	e, err := setup(g)
	if err != nil {
		return err
	}
	defer e.close()

	selected, flat := opts.instruments, opts.answers
	if opts.submissionPath != "" {
		sub, err := assessment.LoadSubmission(opts.submissionPath)
		if err != nil {
			return err
		}
		selected, flat = sub.Instruments, sub.Answers
	}

	vec, err := features.NewEncoder(e.catalog).Encode(selected, flat)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	if opts.compact {
		return writeCompact(w, vec.Slice())
	}
	return writeJSON(w, vec.Slice())
}

func writeCompact(w io.Writer, vals []int) error {
	for i, v := range vals {
		sep := ","
		if i == len(vals)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "%d%s", v, sep); err != nil {
			return err
		}
	}
	return nil
}
