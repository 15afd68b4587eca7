package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "junction",
		Short: "Simulate traffic through a four-way intersection",
		Long: `junction routes cars from four bounded lanes through an intersection
split into four quadrants. Each car holds every quadrant on its path while
it crosses, and crossings are printed as "<entry> <exit> <id>".`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPathsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	return rootCmd
}
