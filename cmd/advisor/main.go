// Package main 是 advisor 命令行的入口点。
package main

import (
	"os"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "10-K filing advisor: ingestion, retrieval and generation service",
	Long:  "Ingests SEC 10-K filing sections, indexes their embeddings, and answers advisor questions with retrieval-augmented generation. Every model interaction is audited.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		config.Conf = *c

		log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, ingestCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
