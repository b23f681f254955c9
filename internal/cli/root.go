package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// Version is overridden at build time via -ldflags
var Version = "v0.3.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "antiplagiat",
	Short: "Antiplagiat - text originality checks with optional web and LLM corroboration",
	Long: `Antiplagiat estimates how original a text is.

Fast mode scores the text locally: repetition, sentence uniformity and
known reference phrases. Deep mode additionally asks an exact-phrase web
search and an LLM paraphrase judge when the local score looks suspicious.

The result is an originality percentage, the matched spans and the
sources they point to. It is a signal for a reviewer, not a verdict.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("antiplagiat %s\n", Version)
	},
}

// envBindings maps well-known provider variables onto config keys
var envBindings = map[string][]string{
	"search.api_key":   {"ANTIPLAGIAT_SEARCH_API_KEY", "GOOGLE_SEARCH_API_KEY"},
	"search.cx":        {"ANTIPLAGIAT_SEARCH_CX", "GOOGLE_SEARCH_CX"},
	"llm.api_key":      {"ANTIPLAGIAT_LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.base_url":     {"ANTIPLAGIAT_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"store.pg_dsn":     {"ANTIPLAGIAT_STORE_PG_DSN", "DATABASE_URL"},
	"store.redis_addr": {"ANTIPLAGIAT_STORE_REDIS_ADDR", "REDIS_ADDR"},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.antiplagiat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and ANTIPLAGIAT_* variables
func initConfig() {
	// A missing .env is the common case
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".antiplagiat"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults("", reflect.ValueOf(*model.DefaultConfig()))
	viper.SetEnvPrefix("ANTIPLAGIAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, envs := range envBindings {
		_ = viper.BindEnv(append([]string{key}, envs...)...)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every leaf of the default config so that
// AutomaticEnv can resolve keys absent from the config file
func setDefaults(prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		field := v.Field(i)
		if field.Kind() == reflect.Struct {
			setDefaults(key, field)
			continue
		}
		viper.SetDefault(key, field.Interface())
	}
}

// loadConfig merges defaults, config file, env and bound flags, then
// applies the log settings
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	level := cfg.Log.Level
	if verbose && logLevel == "" {
		level = "info"
	}
	if err := logger.SetLevel(level); err != nil {
		return nil, err
	}
	if err := logger.SetFormat(cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
