package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/huimingz/autocommit-go/internal/config"
)

const configHeader = `# autocommit configuration file
# Every key can also be set through the environment (see "autocommit --help").
# Keep API keys out of this file: reference an environment variable instead.

`

// initFile is the document written by "autocommit init"
type initFile struct {
	RepoDir    string    `yaml:"repo_dir"`
	Scopes     []string  `yaml:"scopes,flow"`
	Language   string    `yaml:"language"`
	Timeout    string    `yaml:"timeout"`
	GitTimeout string    `yaml:"git_timeout"`
	ShowLogs   bool      `yaml:"show_logs"`
	Model      initModel `yaml:"model"`
}

type initModel struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// initOptions are the values collected from the init flags
type initOptions struct {
	RepoDir  string
	Scopes   string
	Provider string
	Model    string
	Force    bool
}

var initOpts initOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize autocommit configuration",
	Long: `Create a configuration file (default ~/.autocommit.yaml, or the --config path).

The API key is written as a reference to the provider's environment variable,
so the file itself never holds a secret.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			path = filepath.Join(homeDir, config.DefaultFileName)
		}

		if err := writeInitConfig(path, initOpts); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", path)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Export the API key variable named in the file")
		fmt.Fprintln(out, "  2. Adjust scopes and language if needed")
		fmt.Fprintln(out, "  3. Run 'autocommit --dry-run' to preview a message")
		return nil
	},
}

// writeInitConfig renders the configuration for opts and writes it to path
func writeInitConfig(path string, opts initOptions) error {
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	data, err := renderInitConfig(opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func renderInitConfig(opts initOptions) ([]byte, error) {
	name := opts.Provider
	if name == "" {
		name = config.DefaultProvider
	}
	provider, ok := config.LookupProvider(name)
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}

	repo := opts.RepoDir
	if repo == "" {
		repo = "."
	}
	repo, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path: %w", err)
	}

	scopeList, err := config.ParseList(opts.Scopes)
	if err != nil {
		return nil, fmt.Errorf("invalid scopes: %w", err)
	}

	doc := initFile{
		RepoDir:    repo,
		Scopes:     scopeList,
		Language:   "en",
		Timeout:    config.DefaultTimeout.String(),
		GitTimeout: config.DefaultGitTimeout.String(),
		Model: initModel{
			Provider: provider.Name,
			Model:    provider.DefaultModel,
		},
	}
	if opts.Model != "" {
		doc.Model.Model = opts.Model
	}
	if len(provider.KeyEnv) > 0 {
		doc.Model.APIKey = "${" + provider.KeyEnv[0] + "}"
	}
	if doc.Scopes == nil {
		doc.Scopes = []string{}
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func init() {
	initCmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().StringVar(&initOpts.RepoDir, "repo", "", "Repository path to store (default: current directory)")
	initCmd.Flags().StringVar(&initOpts.Scopes, "scopes", "", "Allowed scopes, comma separated or JSON array")
	initCmd.Flags().StringVar(&initOpts.Provider, "provider", "", "LLM provider (default: gemini)")
	initCmd.Flags().StringVarP(&initOpts.Model, "model", "m", "", "LLM model (default: the provider's default)")
	rootCmd.AddCommand(initCmd)
}
