package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/kart-io/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Chanu-03/Study-Mate/internal/app"
	"github.com/Chanu-03/Study-Mate/internal/config"
	"github.com/Chanu-03/Study-Mate/internal/logging"
	"github.com/Chanu-03/Study-Mate/internal/tui"
)

type globalOptions struct {
	configPath string
	topK       int
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "Path to YAML config file (default ./config.yaml, then ~/.config/studymate/config.yaml)")
	fs.IntVarP(&o.topK, "top-k", "k", 0, "Number of passages to retrieve per question (default from config)")
}

// load reads the configuration and applies flag overrides.
func (o *globalOptions) load() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if o.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(o.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.topK != 0 {
		if o.topK < 1 || o.topK > cfg.Retrieval.MaxTopK {
			return nil, fmt.Errorf("--top-k must be between 1 and %d", cfg.Retrieval.MaxTopK)
		}
		cfg.Retrieval.TopK = o.topK
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "studymate [files...]",
		Short: "Ask questions about your study material",
		Long: `StudyMate extracts text from pdf, docx, pptx and txt files, indexes it in
memory and answers questions from the most relevant passages.

Without a subcommand it opens the interactive terminal UI and processes the
given files first.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}
	opts.addFlags(cmd.PersistentFlags())
	cmd.AddCommand(newAskCmd(opts))
	return cmd
}

func runTUI(cmd *cobra.Command, opts *globalOptions, paths []string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Options(cfg.Log, true)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Flush()

	session, err := app.Build(cfg)
	if err != nil {
		return err
	}
	logger.Infow("starting terminal session", "files", len(paths), "top_k", cfg.Retrieval.TopK)

	ctx := cmd.Context()
	m := tui.New(ctx, session, tui.Options{
		TopK:          cfg.Retrieval.TopK,
		PreviewLength: cfg.Retrieval.PreviewLength,
		Paths:         paths,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
