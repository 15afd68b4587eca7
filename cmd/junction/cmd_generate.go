package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/anggasct/junction/pkg/schedule"
)

func newGenerateCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate <count>",
		Short: "Write a random schedule in the text format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid car count %q", args[0])
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			return schedule.Format(cmd.OutOrStdout(), schedule.Generate(n, seed))
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}
