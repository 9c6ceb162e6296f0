// Command recallbench generates and certifies memory-recall evidence
// collections from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/probelab/recallbench"
	"github.com/probelab/recallbench/config"
	"github.com/probelab/recallbench/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logFormat  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "recallbench",
		Short: "Generate and certify memory-recall benchmark data",
		Long: `recallbench plants verifiable facts in generated conversation histories and
certifies each item by checking the fact is recoverable with the evidence
present, and not recoverable without it.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGenerateCmd(flags),
		newReevaluateCmd(flags),
	)
	return root
}

func (f *rootFlags) logger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Format = f.logFormat
	if f.verbose {
		cfg.Level = logging.LogLevelDebug
	}
	return logging.New(cfg)
}

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		short      bool
		outputDir  string
		workers    int
		provider   string
		modelID    string
		personas   string
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate evidence collections until each reaches its target",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}

			// Flags override file values when set.
			if short {
				cfg.Short = true
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if modelID != "" {
				cfg.ModelID = modelID
			}
			if personas != "" {
				cfg.PersonasPath = personas
			}
			if len(categories) > 0 {
				cfg.Categories = categories
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			rb, err := recallbench.New(cfg, func(o *recallbench.Options) {
				o.Logger = flags.logger()
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return rb.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "diagnostic run with fewer personas and items")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for persisted collections")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent pipeline workers")
	cmd.Flags().StringVar(&provider, "provider", "", "model provider: anthropic or openai")
	cmd.Flags().StringVar(&modelID, "model", "", "generation model id")
	cmd.Flags().StringVar(&personas, "personas", "", "path to personas YAML file")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "scenario categories to generate")

	return cmd
}

func newReevaluateCmd(flags *rootFlags) *cobra.Command {
	var answersPath string

	cmd := &cobra.Command{
		Use:   "reevaluate",
		Short: "Re-grade cached answers against persisted collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(answersPath)
			if err != nil {
				return fmt.Errorf("read cached answers: %w", err)
			}
			cached := map[string]string{}
			if err := json.Unmarshal(raw, &cached); err != nil {
				return fmt.Errorf("parse cached answers: %w", err)
			}

			rb, err := recallbench.New(cfg, func(o *recallbench.Options) {
				o.Logger = flags.logger()
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := rb.Reevaluate(ctx, cached)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reevaluated %d items: %d correct, %d incorrect\n",
				report.Total, report.Correct, len(report.Incorrect))
			for _, id := range report.Incorrect {
				fmt.Fprintln(cmd.OutOrStdout(), "  incorrect:", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&answersPath, "answers", "", "path to JSON file mapping item id to cached answer")
	_ = cmd.MarkFlagRequired("answers")

	return cmd
}
