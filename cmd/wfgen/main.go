// Command wfgen generates n8n workflows offline with the local generator
// and inspects the template catalog.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	catalogDir string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "wfgen",
		Short:         "Generate n8n workflows from plain English",
		Long:          "wfgen turns an automation description into an importable n8n workflow using the built-in template catalog.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.catalogDir, "catalog-dir", "", "Directory of template YAML files replacing the built-in catalog")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log generator decisions to stderr")

	root.AddCommand(
		newGenerateCmd(opts),
		newExplainCmd(opts),
		newTemplatesCmd(opts),
		newValidateCmd(),
		newExamplesCmd(),
	)
	return root
}

func (o *options) catalog() (*catalog.Catalog, error) {
	if o.catalogDir == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadDir(o.catalogDir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
