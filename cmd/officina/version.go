package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the officina version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("officina %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
