package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/pipeline"
	"github.com/huimingz/autocommit-go/internal/prompt"
)

var (
	// Global flags
	showLogs   bool
	configFile string
	envFile    string

	// Run flags, bound into the configuration
	repoDir      string
	scopes       string
	types        string
	providerName string
	modelName    string
	language     string
	timeout      time.Duration

	// Run flags read directly
	commitContext string
	dryRun        bool

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autocommit",
	Short: "Generate a Conventional Commits message for your changes and commit them",
	Long: `autocommit stages every pending change in a repository, asks a language model
for a single-line Conventional Commits message, validates it against the
allowed types and scopes, and commits.

Nothing is staged or committed unless the generated message is valid.

Examples:
  autocommit --repo ~/src/project
  autocommit --scopes api,ui -c "fixes the login redirect"
  autocommit --provider openai -m gpt-4o-mini --dry-run`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set debug mode before any command runs; the run command may
		// enable it later from the configuration
		if showLogs {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
	RunE: runAutocommit,
}

// Execute runs the root command until it finishes or an interrupt arrives
func Execute() error {
	ctx, stop := signalContext()
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		report(err)
	}
	return err
}

// report prints a failure; an empty changeset gets its own wording and
// pipeline failures were already shown on the console
func report(err error) {
	if errors.Is(err, prompt.ErrEmptyChangeset) {
		log.Warn("nothing to commit, working tree clean")
		return
	}
	var failure *pipeline.Failure
	if errors.As(err, &failure) {
		log.Debug("Run failed at stage %s", failure.Stage)
		return
	}
	log.Error("%v", err)
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

// normalizeFlags maps the --debug alias onto --show-logs
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "debug" {
		name = "show-logs"
	}
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&showLogs, "show-logs", false, "Print debug logs (alias: --debug)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.autocommit.yaml, then ~/.autocommit.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file to read (default: .env.local)")

	flags := rootCmd.Flags()
	flags.StringVar(&repoDir, "repo", "", "Path to the git repository (env: PATH_TO_GIT_REPO)")
	flags.StringVar(&scopes, "scopes", "", "Allowed scopes, comma separated or JSON array (env: COMMIT_SCOPES)")
	flags.StringVar(&types, "types", "", "Allowed commit types, comma separated (default: feat, fix, docs, ...)")
	flags.StringVar(&providerName, "provider", "", "LLM provider (gemini, openai, deepseek, ollama, grok, groq, github)")
	flags.StringVarP(&modelName, "model", "m", "", "LLM model to use (overrides config)")
	flags.StringVarP(&language, "language", "l", "", "Output language (en, zh, ja, etc.)")
	flags.DurationVar(&timeout, "timeout", 0, "Timeout for the model call (default 60s)")
	flags.StringVarP(&commitContext, "context", "c", "", "Additional context to help AI generate better message")
	flags.BoolVar(&dryRun, "dry-run", false, "Generate and validate the message without staging or committing")
}
