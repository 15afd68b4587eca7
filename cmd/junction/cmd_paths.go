package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/visualization"
)

func newPathsCmd() *cobra.Command {
	var dot bool
	var entry string

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the quadrants every movement holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := junction.Directions[:]
			if entry != "" {
				d, err := junction.ParseDirection(entry)
				if err != nil {
					return err
				}
				entries = []junction.Direction{d}
			}

			out := cmd.OutOrStdout()
			if dot {
				opts := visualization.DefaultDOTOptions()
				opts.Entries = entries
				graph, err := visualization.NewDOTGenerator(opts).Generate()
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, graph)
				return err
			}

			for _, in := range entries {
				for _, exit := range junction.Directions {
					if _, err := fmt.Fprintf(out, "%-6s %-6s %-9s %s\n",
						in, exit, junction.Classify(in, exit), junction.ResolvePath(in, exit)); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "print a Graphviz DOT graph")
	cmd.Flags().StringVar(&entry, "entry", "", "only show movements from this direction")
	return cmd
}
