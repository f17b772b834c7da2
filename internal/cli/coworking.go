package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/herblab/specnet/pkg/coworking"
	specio "github.com/herblab/specnet/pkg/io"
	"github.com/herblab/specnet/pkg/namesmap"
	"github.com/herblab/specnet/pkg/pipeline"
	"github.com/herblab/specnet/pkg/records"
)

// coworkingOpts holds the command-line flags for the coworking command.
type coworkingOpts struct {
	output    string // output path; extension selects JSON or CSV
	format    string // records format
	separator string // collectors column separator (CSV)
	header    bool   // skip the first CSV line
	namesMap  string // names map TOML path
	weight    string // exported edge weight: "count" or "hyperbolic"
	taxa      bool   // accumulate the species of each record on its edges
}

// newCoworkingCmd creates the coworking command, which builds a
// collaboration network among collectors from the same records files the
// build command consumes. Each record's collector team induces a clique.
func newCoworkingCmd() *cobra.Command {
	opts := coworkingOpts{weight: "count"}

	cmd := &cobra.Command{
		Use:   "coworking [records-file]",
		Short: "Build a collaboration network among collectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p := newProgress(logger)

			var weighting coworking.Weighting
			switch opts.weight {
			case "count":
				weighting = coworking.WeightCount
			case "hyperbolic":
				weighting = coworking.WeightHyperbolic
			default:
				return fmt.Errorf("weight must be %q or %q, got %q", "count", "hyperbolic", opts.weight)
			}

			batch, err := loadBatch(args[0], opts.format, opts.separator, opts.header)
			if err != nil {
				return err
			}

			var buildOpts []coworking.Option
			if opts.namesMap != "" {
				nm, err := namesmap.LoadTOML(opts.namesMap)
				if err != nil {
					return err
				}
				buildOpts = append(buildOpts, coworking.WithNamesMap(nm))
			}
			if opts.taxa {
				buildOpts = append(buildOpts, coworking.WithTaxa(batch.Species))
			}

			network, err := coworking.New(batch.Collectors, buildOpts...)
			if err != nil {
				return err
			}
			g, err := network.ToGraph(weighting)
			if err != nil {
				return err
			}

			switch strings.ToLower(filepath.Ext(opts.output)) {
			case ".csv":
				err = specio.ExportEdgeCSV(g, opts.output)
			default:
				err = specio.ExportGraphJSON(g, opts.output)
			}
			if err != nil {
				return err
			}

			p.done(fmt.Sprintf("Built coworking network from %d records", batch.Len()))
			printSuccess("Wrote %s", opts.output)
			printKV("collectors", network.NodeCount())
			printKV("ties", network.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "coworking.json", "output file (.json or .csv)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "records format: csv (default), toml")
	cmd.Flags().StringVar(&opts.separator, "separator", "", "collectors column separator (default \";\")")
	cmd.Flags().BoolVar(&opts.header, "header", false, "skip the first CSV line")
	cmd.Flags().StringVar(&opts.namesMap, "names-map", "", "names map TOML file for collector normalization")
	cmd.Flags().StringVarP(&opts.weight, "weight", "w", opts.weight, "edge weight: count (default), hyperbolic")
	cmd.Flags().BoolVar(&opts.taxa, "taxa", false, "accumulate recorded species on edges")

	return cmd
}

// loadBatch reads a records file in the given (or inferred) format.
func loadBatch(path, format, separator string, header bool) (*records.Batch, error) {
	if recordsFormat(format, path) == pipeline.FormatTOML {
		return records.LoadTOML(path)
	}
	var csvOpts []records.CSVOption
	if separator != "" {
		csvOpts = append(csvOpts, records.WithSeparator(separator))
	}
	if header {
		csvOpts = append(csvOpts, records.WithHeader())
	}
	return records.LoadCSV(path, csvOpts...)
}
