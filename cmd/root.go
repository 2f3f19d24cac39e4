/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Answer questions about PDF, text and CSV documents",
	Long: `docqa answers a natural-language query about a single uploaded document.
PDF and text files go through a retrieval pipeline, CSV files through a
tabular agent. Every answer is stored in MongoDB together with the file
metadata.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file")
}
