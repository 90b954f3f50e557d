package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render <dni>",
		Short: "Render a family tree, report, certificate or node-link diagram",
		Long: `Render looks the DNI up in the civil registry and writes one artifact.

Kinds and formats (the first format is the default):
  tree         png, pdf, json
  report       pdf
  certificate  pdf
  nodelink     svg, dot

Lookups and artifacts are cached; --refresh skips both caches.`,
		Example: `  kinreport render 12345678
  kinreport render 12345678 -k report -o reports/
  kinreport render 12345678 -k nodelink -f dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DNI = args[0]
			c.setCLIDefaults(&opts)
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", pipeline.KindTree, "artifact kind: "+strings.Join(pipeline.Kinds, ", "))
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format (default depends on kind)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default <kind>-<dni>.<format>)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "raster resolution multiplier (default from config)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "data source printed in report footers (default from config)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add DNI and age to node-link labels")
	cmd.Flags().BoolVar(&opts.Unclassified, "unclassified", false, "keep relatives with unknown relations in node-link views")
	cmd.Flags().BoolVar(&opts.AutoWidth, "auto-width", false, "widen the tree canvas instead of truncating crowded tiers")
	cmd.Flags().BoolVar(&opts.NoTree, "no-tree", false, "leave the tree page out of the genealogy report")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass lookup and artifact caches")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(pipeline.Kinds, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s for %s...", opts.Kind, opts.DNI))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Render failed: %s", errors.UserMessage(err)))
		return err
	}
	spinner.Stop()

	path := outputPath(output, result.Filename)
	if err := os.WriteFile(path, result.Artifact, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	prog.done("rendered "+opts.Kind, "format", opts.Format, "bytes", len(result.Artifact))

	printSuccess("Rendered %s", opts.Kind)
	printStats(result.Stats.Relatives, result.Pages, result.CacheInfo.ArtifactHit)
	printFile(path)
	return nil
}
