// Package main is the entry point for the card battle API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cardbattle-api",
	Short: "Card Battle API server",
	Long:  `Card Battle API runs the turn-based card battle engine behind an HTTP interface: player profiles, challenges, battles, and stakes settlement.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
