package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/psyscore/psyscore/pkg/instrument"
)

func newValidateCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog.yaml]",
		Short: "Validate an instrument catalog",
		Long: `Loads a catalog file and checks it: option values, severity tables,
subscale partitions, screening criteria, and feature-vector slot layout.
Every problem is printed. Without an argument, the --catalog path or the
built-in catalog is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.catalogPath
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(cmd.OutOrStdout(), path)
		},
	}
}

func runValidate(w io.Writer, path string) error {
	catalog, err := loadCatalog(path)
	if err != nil {
		var cerr *instrument.ConfigError
		if errors.As(err, &cerr) {
			for _, v := range cerr.Violations {
				fmt.Fprintf(w, "  ✗ %s\n", v.Error())
			}
			return fmt.Errorf("%d problem(s) found", len(cerr.Violations))
		}
		return err
	}

	name := path
	if name == "" {
		name = "built-in catalog"
	}
	fmt.Fprintf(w, "✓ %s: %d instruments, %d of %d slots used\n",
		name, catalog.Len(), catalog.SlotsUsed(), instrument.SlotCount)
	return nil
}
