package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipelinectl",
	Short: "pipelinectl - invoke model pipeline stages from the command line",
	Long:  `pipelinectl invokes a single stage of the model training pipeline with an event payload read from a YAML or JSON file, the same payload the HTTP surface accepts.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
