package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/ai/local"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		workflowOnly bool
		req          ai.GenerateRequest
	)
	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a workflow from a description",
		Long: `Generate prints the full generation response as JSON. With --workflow-only
it prints just the n8n document, ready to import.`,
		Example: `  wfgen generate "Send me an email when someone fills out my contact form"
  wfgen generate --workflow-only "Back up database to cloud storage daily" > backup.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			req.Prompt = strings.Join(args, " ")

			logger := opts.logger(cmd.ErrOrStderr())
			svc := ai.NewService(local.NewGenerator(cat, logger), ai.WithLogger(logger))
			wf, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			var out any = wf
			if workflowOnly {
				out = wf.WorkflowJSON
			}
			return writeIndented(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&workflowOnly, "workflow-only", false, "Print only the n8n workflow document")
	cmd.Flags().BoolVar(&req.IncludeAuth, "include-auth", false, "Request authentication setup (external generators only)")
	cmd.Flags().BoolVar(&req.IncludeErrorHandling, "include-error-handling", false, "Request error handling nodes (external generators only)")
	return cmd
}

func newExplainCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "explain <description>",
		Short: "Show how each template scores against a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			writeExplanation(cmd.OutOrStdout(), local.Rank(prompt, cat.Templates()), all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include templates that scored zero")
	return cmd
}

// writeExplanation prints breakdowns highest first. Equal totals keep
// catalog order, matching selection.
func writeExplanation(w io.Writer, ranked []local.Breakdown, all bool) {
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEMPLATE\tKEYWORDS\tCROSS\tFLAGSHIP\tTOTAL\tMATCHED")
	for _, b := range ranked {
		if b.Total == 0 && !all {
			continue
		}
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%s\n",
			b.Template, b.Keywords, b.CrossCutting, b.Flagship, b.Total, strings.Join(b.Matched, ", "))
	}
	_ = tw.Flush()

	if len(ranked) == 0 || ranked[0].Total == 0 {
		fmt.Fprintf(w, "\nNo template matched; %q would be synthesized.\n", local.FallbackName)
		return
	}
	fmt.Fprintf(w, "\nSelected: %s (%g)\n", ranked[0].Template, ranked[0].Total)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
