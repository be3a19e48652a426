package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/instrument"
)

func newInstrumentsCmd(g *globalOpts) *cobra.Command {
	var (
		outputFmt string
		layout    bool
	)

	cmd := &cobra.Command{
		Use:   "instruments [id]",
		Short: "List the instrument catalog",
		Long: `Lists every instrument with its rule kind and feature-vector slots.
With an id, prints that instrument's questions and options. With --layout,
prints the feature-vector slot table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := instrumentsOpts{outputFmt: outputFmt, layout: layout}
			if len(args) == 1 {
				opts.id = args[0]
			}
			return runInstruments(cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&layout, "layout", false, "Print the feature-vector slot table")

	return cmd
}

type instrumentsOpts struct {
	id        string
	outputFmt string
	layout    bool
}

func runInstruments(w io.Writer, g *globalOpts, opts instrumentsOpts) error {
	e, err := setup(g)
	if err != nil {
		return err
	}
	defer e.close()

	switch {
	case opts.layout:
		slots := features.NewEncoder(e.catalog).Layout()
		if opts.outputFmt == "json" {
			return writeJSON(w, slots)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "OFFSET\tEND\tCOUNT\tINSTRUMENT")
		for _, s := range slots {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", s.Offset, s.End(), s.Count, s.Instrument)
		}
		return tw.Flush()

	case opts.id != "":
		in, err := e.catalog.Get(opts.id)
		if err != nil {
			return err
		}
		if opts.outputFmt == "json" {
			return writeJSON(w, in)
		}
		printInstrument(w, in)
		return nil
	}

	all := e.catalog.All()
	if opts.outputFmt == "json" {
		return writeJSON(w, all)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSHORT\tRULE\tQUESTIONS\tSLOTS")
	for _, in := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t[%d, %d)\n",
			in.ID, in.ShortName, in.Scoring.Rule, len(in.Questions), in.Offset, in.Offset+len(in.Questions))
	}
	return tw.Flush()
}

func printInstrument(w io.Writer, in *instrument.Instrument) {
	fmt.Fprintf(w, "%s (%s)\n", in.ID, in.ShortName)
	if in.Description != "" {
		fmt.Fprintf(w, "%s\n", in.Description)
	}
	fmt.Fprintf(w, "Rule: %s, slots [%d, %d)\n\n", in.Scoring.Rule, in.Offset, in.Offset+len(in.Questions))
	for i, q := range in.Questions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q.Prompt)
		for _, o := range q.Options {
			fmt.Fprintf(w, "      %d = %s\n", o.Value, o.Label)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
