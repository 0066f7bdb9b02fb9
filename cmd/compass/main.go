package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "compass — explore the enterprise capability graph",
	Long: "compass serves the capability model API and renders animated\n" +
		"subtree visualizations from the command line.",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	rootCmd.AddCommand(serveCmd(), viewCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
