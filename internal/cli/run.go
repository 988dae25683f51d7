package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/git"
	"github.com/huimingz/autocommit-go/internal/llm"
	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/pipeline"
	"github.com/huimingz/autocommit-go/internal/ui"
	"github.com/huimingz/autocommit-go/pkg/lang"
)

func runAutocommit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration before touching the repository
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}

	if cfg.ShowLogs {
		log.SetDebugMode(true)
	}
	log.DebugConfig("Configuration", cfg.Redacted())

	outputLang := lang.ParseLanguage(cfg.Language)
	if outputLang.String() != cfg.Language {
		log.Warn("unsupported language %q, using %s", cfg.Language, outputLang.DisplayName())
	}
	log.Debug("Using language: %s", outputLang)

	// Create LLM provider
	provider, err := llm.NewProviderFactory().Create(cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	chatModel, err := provider.CreateChatModel(ctx)
	if err != nil {
		return fmt.Errorf("failed to create chat model: %w", err)
	}
	log.Debug("Using model: %s (provider: %s)", cfg.Model.Model, provider.Name())

	runner := git.NewRunner()
	printer := ui.NewStreamPrinter(cmd.OutOrStdout(),
		ui.WithColor(!color.NoColor),
		ui.WithVerbose(cfg.ShowLogs),
	)

	p := pipeline.New(
		git.NewInspector(runner, cfg.RepoDir, git.WithTimeout(cfg.GitTimeout)),
		llm.NewGenerator(chatModel, llm.WithTimeout(cfg.Timeout)),
		git.NewApplier(runner, cfg.RepoDir),
		printer,
		pipeline.Options{
			Vocabulary:    cfg.Vocabulary(),
			Language:      outputLang,
			Context:       commitContext,
			ResponseField: cfg.Model.ResponseField,
			Model:         fmt.Sprintf("%s/%s", provider.Name(), cfg.Model.Model),
			DryRun:        dryRun,
		},
	)

	_, err = p.Run(ctx)
	return err
}
