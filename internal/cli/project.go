package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/herblab/specnet/pkg/bipartite"
	specio "github.com/herblab/specnet/pkg/io"
)

// projectOpts holds the command-line flags for the project command.
type projectOpts struct {
	output    string  // output path; extension selects JSON or CSV
	partition string  // "collectors" or "species"
	rule      string  // "simple", "additive" or "cosine"
	threshold float64 // minimum edge weight to keep
}

// newProjectCmd creates the project command, which collapses a built network
// onto one partition under a weighting rule.
func newProjectCmd() *cobra.Command {
	opts := projectOpts{
		partition: "collectors",
		rule:      "simple",
	}

	cmd := &cobra.Command{
		Use:   "project [network-file]",
		Short: "Project a network onto one partition",
		Long: `Project collapses a bipartite network onto the collectors or species
partition. Three weighting rules are available: simple (shared neighbor
count), additive (multiplicity-averaged), and cosine (vector similarity).

The output format follows the extension of --output: .json keeps nodes and
attributes, .csv writes a plain edge list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p := newProgress(logger)

			partition, err := bipartite.ParsePartition(opts.partition)
			if err != nil {
				return err
			}
			rule, err := bipartite.ParseRule(opts.rule)
			if err != nil {
				return err
			}

			network, err := specio.ImportNetworkJSON(args[0])
			if err != nil {
				return err
			}

			var projOpts []bipartite.ProjectOption
			if cmd.Flags().Changed("threshold") {
				projOpts = append(projOpts, bipartite.WithThreshold(opts.threshold))
			}
			g, err := network.Project(partition, rule, projOpts...)
			if err != nil {
				return err
			}
			if g.EdgeCount() == 0 && cmd.Flags().Changed("threshold") {
				printError("No edges survive threshold %g", opts.threshold)
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

			p.done(fmt.Sprintf("Projected %s under the %s rule", opts.partition, opts.rule))
			printSuccess("Wrote %s", opts.output)
			printKV("nodes", g.NodeCount())
			printKV("edges", g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "projection.json", "output file (.json or .csv)")
	cmd.Flags().StringVarP(&opts.partition, "partition", "p", opts.partition, "partition to project: collectors (default), species")
	cmd.Flags().StringVarP(&opts.rule, "rule", "r", opts.rule, "weighting rule: simple (default), additive, cosine")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "drop edges with weight below this value")

	return cmd
}
