package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the catalog templates in selection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), cat.Summaries())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTRIGGER\tNODES\tSETUP\tKEYWORDS")
			for _, s := range cat.Summaries() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					s.Name, s.TriggerType, s.NodeCount, s.EstimatedSetupTime, strings.Join(s.Keywords, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print summaries as JSON")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check a directory of template files for integrity problems",
		Long: `Validate loads every *.yaml template in dir and reports each problem found.
Without dir it checks the built-in catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				err error
				src = "built-in catalog"
			)
			if len(args) == 1 {
				src = args[0]
				cat, err = catalog.LoadDir(src)
			} else {
				cat, err = catalog.Default()
			}

			var ie *catalog.IntegrityError
			if errors.As(err, &ie) {
				out := cmd.ErrOrStderr()
				fmt.Fprintf(out, "%s: %d problem(s)\n", src, len(ie.Problems))
				for _, p := range ie.Problems {
					fmt.Fprintf(out, "  - %s\n", p)
				}
				return fmt.Errorf("%s is invalid", src)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d templates OK\n", src, cat.Len())
			return nil
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Print example descriptions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, e := range catalog.Examples() {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
		},
	}
}
