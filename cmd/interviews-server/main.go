package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interviews-server",
	Short: "Interview scheduling and confirmation service",
	Long:  "Serves the interviews REST API and the operator gRPC surface. Running without a subcommand is the same as serve.",
	RunE:  runServe,
}

var seedPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "JSON file of applications to load when store.driver is memory")
	rootCmd.AddCommand(serveCmd, migrateCmd, outcomeCmd, tokenCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
