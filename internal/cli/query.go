package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	specio "github.com/herblab/specnet/pkg/io"
)

// newQueryCmd creates the query command group for inspecting a built
// network.
func newQueryCmd() *cobra.Command {
	var networkPath string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect a built network",
	}
	cmd.PersistentFlags().StringVarP(&networkPath, "network", "n", "network.json", "network JSON file")

	cmd.AddCommand(newQueryBagCmd(&networkPath))
	cmd.AddCommand(newQueryInterestCmd(&networkPath))
	cmd.AddCommand(newQueryListCmd(&networkPath, "collectors"))
	cmd.AddCommand(newQueryListCmd(&networkPath, "species"))

	return cmd
}

// newQueryBagCmd creates the "query bag" subcommand: the species bag of one
// collector.
func newQueryBagCmd(networkPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bag [collector]",
		Short: "Print the species bag of a collector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := specio.ImportNetworkJSON(*networkPath)
			if err != nil {
				return err
			}
			ids, vector, err := network.SpeciesBag(args[0])
			if err != nil {
				return err
			}
			printVector(args[0], ids, vector)
			return nil
		},
	}
}

// newQueryInterestCmd creates the "query interest" subcommand: the interest
// vector of one species.
func newQueryInterestCmd(networkPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "interest [species]",
		Short: "Print the interest vector of a species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := specio.ImportNetworkJSON(*networkPath)
			if err != nil {
				return err
			}
			ids, vector, err := network.InterestVector(args[0])
			if err != nil {
				return err
			}
			printVector(args[0], ids, vector)
			return nil
		},
	}
}

// newQueryListCmd creates the "query collectors" / "query species"
// subcommands listing one partition with record counts.
func newQueryListCmd(networkPath *string, partition string) *cobra.Command {
	return &cobra.Command{
		Use:   partition,
		Short: fmt.Sprintf("List %s with their record counts", partition),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := specio.ImportNetworkJSON(*networkPath)
			if err != nil {
				return err
			}
			var counts map[string]int
			if partition == "species" {
				counts = network.SpeciesCounts()
			} else {
				counts = network.CollectorsCounts()
			}

			ids := make([]string, 0, len(counts))
			for id := range counts {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				printKV(id, counts[id])
			}
			printDetail("%d %s", len(ids), partition)
			return nil
		},
	}
}

// printVector prints the nonzero entries of a query vector, highest count
// first.
func printVector(id string, ids []string, vector []float64) {
	type entry struct {
		id    string
		count float64
	}
	var entries []entry
	for i, v := range vector {
		if v > 0 {
			entries = append(entries, entry{ids[i], v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].id < entries[j].id
	})

	printInfo("%s", id)
	for _, e := range entries {
		printKV(e.id, int(e.count))
	}
	printDetail("%d of %d nonzero", len(entries), len(vector))
}
