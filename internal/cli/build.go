package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	specio "github.com/herblab/specnet/pkg/io"
	"github.com/herblab/specnet/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output    string // output network JSON path
	format    string // records format: "csv" or "toml" (inferred from extension when empty)
	separator string // collectors column separator (CSV)
	header    bool   // skip the first CSV line
	namesMap  string // names map TOML path
	refresh   bool   // bypass the cache and rebuild
	noCache   bool   // disable the artifact cache
}

// newBuildCmd creates the build command, which constructs a bipartite
// species-collectors network from an occurrence records file and writes it
// as JSON.
func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [records-file]",
		Short: "Build a species-collectors network from occurrence records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p := newProgress(logger)

			c, err := openCache(opts.noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			runner := pipeline.NewRunner(c, nil, logger)
			defer runner.Close()

			network, _, cached, err := runner.Build(cmd.Context(), pipeline.Options{
				RecordsPath:  args[0],
				Format:       recordsFormat(opts.format, args[0]),
				Separator:    opts.separator,
				Header:       opts.header,
				NamesMapPath: opts.namesMap,
				Refresh:      opts.refresh,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			if err := specio.ExportNetworkJSON(network, opts.output); err != nil {
				return err
			}

			p.done(fmt.Sprintf("Built network with %d nodes and %d edges", network.NodeCount(), network.EdgeCount()))
			printSuccess("Wrote %s", opts.output)
			if cached {
				printDetail("network loaded from cache")
			}
			printKV("species", len(network.Species()))
			printKV("collectors", len(network.Collectors()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "network.json", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "records format: csv (default), toml")
	cmd.Flags().StringVar(&opts.separator, "separator", "", "collectors column separator (default \";\")")
	cmd.Flags().BoolVar(&opts.header, "header", false, "skip the first CSV line")
	cmd.Flags().StringVar(&opts.namesMap, "names-map", "", "names map TOML file for collector normalization")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and rebuild")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
