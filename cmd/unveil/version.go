package main

import (
	"fmt"

	"github.com/aretw0/unveil"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of unveil",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("unveil version %s\n", unveil.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
