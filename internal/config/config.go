package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/huimingz/autocommit-go/internal/conventional"
)

const (
	// DefaultFileName is the yaml configuration file looked up in the
	// working directory and then in the home directory
	DefaultFileName = ".autocommit.yaml"

	// DefaultEnvFile is the dotenv file read from the working directory
	DefaultEnvFile = ".env.local"

	DefaultTimeout       = 60 * time.Second
	DefaultGitTimeout    = 30 * time.Second
	DefaultResponseField = "commit_message"
)

// envBindings maps configuration keys to the environment variables that set them.
// Earlier names win.
var envBindings = map[string][]string{
	"repo_dir":             {"AUTOCOMMIT_REPO_DIR", "REPO_DIR", "PATH_TO_GIT_REPO"},
	"scopes":               {"AUTOCOMMIT_SCOPES", "COMMIT_SCOPES", "REPO_SCOPES"},
	"types":                {"AUTOCOMMIT_TYPES"},
	"show_logs":            {"AUTOCOMMIT_SHOW_LOGS", "SHOW_LOGS"},
	"language":             {"AUTOCOMMIT_LANG"},
	"timeout":              {"AUTOCOMMIT_TIMEOUT"},
	"git_timeout":          {"AUTOCOMMIT_GIT_TIMEOUT"},
	"model.provider":       {"AUTOCOMMIT_PROVIDER"},
	"model.model":          {"AUTOCOMMIT_MODEL"},
	"model.base_url":       {"AUTOCOMMIT_BASE_URL"},
	"model.api_key":        {"AUTOCOMMIT_API_KEY"},
	"model.temperature":    {"AUTOCOMMIT_TEMPERATURE"},
	"model.response_field": {"AUTOCOMMIT_RESPONSE_FIELD"},
}

// flagBindings maps configuration keys to command-line flag names
var flagBindings = map[string]string{
	"repo_dir":       "repo",
	"scopes":         "scopes",
	"types":          "types",
	"show_logs":      "show-logs",
	"language":       "language",
	"timeout":        "timeout",
	"model.provider": "provider",
	"model.model":    "model",
}

// ConfigError is returned when the configuration is missing or invalid
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config represents the application configuration
type Config struct {
	RepoDir    string        `yaml:"repo_dir" mapstructure:"repo_dir"`
	Scopes     []string      `yaml:"scopes" mapstructure:"scopes"`
	Types      []string      `yaml:"types" mapstructure:"types"`
	ShowLogs   bool          `yaml:"show_logs" mapstructure:"show_logs"`
	Language   string        `yaml:"language" mapstructure:"language"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	GitTimeout time.Duration `yaml:"git_timeout" mapstructure:"git_timeout"`
	Model      ModelConfig   `yaml:"model" mapstructure:"model"`

	// Source is the yaml file the configuration was read from, if any
	Source string `yaml:"-" mapstructure:"-"`
}

// ModelConfig represents the text-generation model configuration
type ModelConfig struct {
	Provider      string   `yaml:"provider" mapstructure:"provider"`
	Model         string   `yaml:"model" mapstructure:"model"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	APIKey        string   `yaml:"api_key" mapstructure:"api_key"`
	Temperature   *float32 `yaml:"temperature,omitempty" mapstructure:"temperature"`
	ResponseField string   `yaml:"response_field" mapstructure:"response_field"`
}

// LoadOptions controls where Load reads configuration from
type LoadOptions struct {
	ConfigFile string         // explicit yaml file; disables the default lookup
	EnvFile    string         // dotenv file; defaults to .env.local
	Flags      *pflag.FlagSet // flags bound over every other source
}

// Load loads configuration with the following priority:
// 1. Command-line flags
// 2. Process environment
// 3. Dotenv file (.env.local)
// 4. Yaml file (custom path, ./.autocommit.yaml, ~/.autocommit.yaml)
// 5. Defaults
func Load(opts LoadOptions) (*Config, error) {
	fv := viper.New()
	source, err := readConfigFile(fv, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	// dotenv values replace file values wholesale, whatever their yaml type
	settings := fv.AllSettings()
	overlayDotenv(settings, dotenv)

	v := viper.New()
	setDefaults(v)
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to merge configuration: %w", err)}
	}

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, &ConfigError{Key: key, Err: err}
		}
	}

	if opts.Flags != nil {
		for key, name := range flagBindings {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, &ConfigError{Key: key, Err: err}
				}
			}
		}
	}

	cfg, err := build(v, dotenv)
	if err != nil {
		return nil, err
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("language", "en")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("git_timeout", DefaultGitTimeout)
	v.SetDefault("model.provider", DefaultProvider)
	v.SetDefault("model.response_field", DefaultResponseField)
}

// readConfigFile reads the yaml layer. A missing default file is not an error;
// a missing explicit file is.
func readConfigFile(v *viper.Viper, custom string) (string, error) {
	candidates := []string{custom}
	if custom == "" {
		candidates = []string{DefaultFileName}
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(homeDir, DefaultFileName))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if custom != "" {
				return "", &ConfigError{Err: fmt.Errorf("config file not found: %s", path)}
			}
			continue
		}

		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return "", &ConfigError{Err: fmt.Errorf("failed to read config file %s: %w", path, err)}
		}
		return path, nil
	}
	return "", nil
}

// readEnvFile reads a dotenv file into a map keyed by upper-case variable name
func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, &ConfigError{Err: fmt.Errorf("env file not found: %s", path)}
		}
		return map[string]string{}, nil
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to read env file %s: %w", path, err)}
	}

	values := make(map[string]string, len(ev.AllKeys()))
	for _, key := range ev.AllKeys() {
		values[strings.ToUpper(key)] = ev.GetString(key)
	}
	return values, nil
}

// overlayDotenv writes dotenv variables into a nested settings map
func overlayDotenv(settings map[string]any, dotenv map[string]string) {
	for key, names := range envBindings {
		for _, name := range names {
			value, ok := dotenv[name]
			if !ok {
				continue
			}
			setNested(settings, strings.Split(key, "."), value)
			break
		}
	}
}

func setNested(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[path[0]] = child
	}
	setNested(child, path[1:], value)
}

func build(v *viper.Viper, dotenv map[string]string) (*Config, error) {
	cfg := &Config{
		RepoDir:  strings.TrimSpace(v.GetString("repo_dir")),
		ShowLogs: v.GetBool("show_logs"),
		Language: strings.TrimSpace(v.GetString("language")),
		Model: ModelConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("model.provider"))),
			Model:         strings.TrimSpace(v.GetString("model.model")),
			BaseURL:       strings.TrimSpace(v.GetString("model.base_url")),
			APIKey:        expandEnv(strings.TrimSpace(v.GetString("model.api_key"))),
			ResponseField: strings.TrimSpace(v.GetString("model.response_field")),
		},
	}

	var err error
	if cfg.Scopes, err = getList(v, "scopes"); err != nil {
		return nil, err
	}
	if cfg.Types, err = getList(v, "types"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = getDuration(v, "timeout"); err != nil {
		return nil, err
	}
	if cfg.GitTimeout, err = getDuration(v, "git_timeout"); err != nil {
		return nil, err
	}

	if v.IsSet("model.temperature") {
		t, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("model.temperature")), 32)
		if err != nil {
			return nil, &ConfigError{Key: "model.temperature", Err: err}
		}
		temperature := float32(t)
		cfg.Model.Temperature = &temperature
	}

	cfg.applyProviderDefaults(dotenv)
	return cfg, nil
}

// applyProviderDefaults fills the model, base URL, API key and temperature
// from the provider table when they were not configured
func (c *Config) applyProviderDefaults(dotenv map[string]string) {
	p, ok := LookupProvider(c.Model.Provider)
	if !ok {
		return
	}
	if c.Model.Model == "" {
		c.Model.Model = p.DefaultModel
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = p.BaseURL
	}
	if c.Model.APIKey == "" {
		c.Model.APIKey = lookupEnv(dotenv, p.KeyEnv...)
	}
	if c.Model.Temperature == nil && p.Temperature > 0 {
		temperature := p.Temperature
		c.Model.Temperature = &temperature
	}
}

// lookupEnv returns the first non-empty variable, process environment first
func lookupEnv(dotenv map[string]string, names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	for _, name := range names {
		if value := strings.TrimSpace(dotenv[name]); value != "" {
			return value
		}
	}
	return ""
}

// getList reads a list that may be a yaml sequence, a JSON array string or a
// comma-separated string
func getList(v *viper.Viper, key string) ([]string, error) {
	switch value := v.Get(key).(type) {
	case nil:
		return nil, nil
	case string:
		list, err := ParseList(value)
		if err != nil {
			return nil, &ConfigError{Key: key, Err: err}
		}
		return list, nil
	case []string:
		return cleanList(value), nil
	case []any:
		list := make([]string, 0, len(value))
		for _, item := range value {
			list = append(list, fmt.Sprint(item))
		}
		return cleanList(list), nil
	default:
		return nil, &ConfigError{Key: key, Err: fmt.Errorf("expected a list, got %T", value)}
	}
}

// ParseList parses a JSON array of strings or a comma-separated string.
// Blank entries are dropped.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return nil, fmt.Errorf("invalid JSON list %q: %w", s, err)
		}
		return cleanList(list), nil
	}
	return cleanList(strings.Split(s, ",")), nil
}

func cleanList(items []string) []string {
	var list []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// getDuration accepts Go duration strings ("45s") and plain numbers of seconds
func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	switch value := v.Get(key).(type) {
	case time.Duration:
		return value, nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	case string:
		value = strings.TrimSpace(value)
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, &ConfigError{Key: key, Err: fmt.Errorf("invalid duration %q", value)}
		}
		return d, nil
	default:
		return v.GetDuration(key), nil
	}
}

// Validate validates the entire configuration and makes RepoDir absolute
func (c *Config) Validate() error {
	if c.RepoDir == "" {
		return &ConfigError{
			Key: "repo_dir",
			Err: errors.New("repository path is required (set --repo, AUTOCOMMIT_REPO_DIR or PATH_TO_GIT_REPO)"),
		}
	}
	dir, err := expandHome(c.RepoDir)
	if err != nil {
		return &ConfigError{Key: "repo_dir", Err: err}
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return &ConfigError{Key: "repo_dir", Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return &ConfigError{Key: "repo_dir", Err: fmt.Errorf("repository path %s does not exist", dir)}
	}
	if !info.IsDir() {
		return &ConfigError{Key: "repo_dir", Err: fmt.Errorf("repository path %s is not a directory", dir)}
	}
	c.RepoDir = dir

	if err := validateTokens("types", c.Types); err != nil {
		return err
	}
	if err := validateTokens("scopes", c.Scopes); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return &ConfigError{Key: "timeout", Err: errors.New("must be positive")}
	}
	if c.GitTimeout <= 0 {
		return &ConfigError{Key: "git_timeout", Err: errors.New("must be positive")}
	}

	return c.Model.Validate()
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return &ConfigError{Key: "model.provider", Err: errors.New("provider is required")}
	}
	p, ok := LookupProvider(m.Provider)
	if !ok {
		return &ConfigError{
			Key: "model.provider",
			Err: fmt.Errorf("unsupported provider: %s (supported: %s)", m.Provider, strings.Join(SupportedProviders(), ", ")),
		}
	}
	if m.Model == "" {
		return &ConfigError{Key: "model.model", Err: errors.New("model is required")}
	}
	if p.RequiresKey && m.APIKey == "" {
		return &ConfigError{
			Key: "model.api_key",
			Err: fmt.Errorf("api_key is required for provider %s (set AUTOCOMMIT_API_KEY or %s)", m.Provider, strings.Join(p.KeyEnv, ", ")),
		}
	}
	if m.ResponseField == "" {
		return &ConfigError{Key: "model.response_field", Err: errors.New("must not be empty")}
	}
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return &ConfigError{Key: "model.temperature", Err: fmt.Errorf("%v is outside [0, 2]", *m.Temperature)}
	}
	return nil
}

// validateTokens rejects vocabulary entries that could never appear in a commit header
func validateTokens(key string, tokens []string) error {
	for _, token := range tokens {
		if strings.ContainsAny(token, "():") || strings.ContainsFunc(token, isSpace) {
			return &ConfigError{Key: key, Err: fmt.Errorf("invalid entry %q", token)}
		}
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Vocabulary returns the commit type and scope vocabulary
func (c *Config) Vocabulary() conventional.Vocabulary {
	return conventional.NewVocabulary(c.Types, c.Scopes)
}

// Redacted returns a copy that is safe to log
func (c *Config) Redacted() Config {
	out := *c
	if out.Model.APIKey != "" {
		out.Model.APIKey = redact(out.Model.APIKey)
	}
	return out
}

func redact(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envName := s[2 : len(s)-1]
		return os.Getenv(envName)
	}
	// Handle $VAR format
	if strings.HasPrefix(s, "$") {
		envName := s[1:]
		return os.Getenv(envName)
	}
	return s
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
