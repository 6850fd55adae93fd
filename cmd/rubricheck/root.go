package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rubricheck",
	Short: "LLM-assisted rubric grading for student assignments",
	Long: "Rubricheck grades student assignments against free-form rubrics.\n" +
		"One model pass structures the rubric, a second assesses the assignment,\n" +
		"and the two are reconciled into a bounded, range-based report.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
