package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/filtering"
	"github.com/spigell/movie-recommender/internal/tmdb"
)

const (
	app = "movie-recommender"
)

type Config struct {
	Catalog    catalog.Source    `mapstructure:"catalog"`
	Similarity SimilarityConfig  `mapstructure:"similarity"`
	AI         *AIConfig         `mapstructure:"ai"`
	TMDB       *TMDBConfig       `mapstructure:"tmdb"`
	Filters    *filtering.Config `mapstructure:"filters"`
}

type SimilarityConfig struct {
	Path string `mapstructure:"path"`
}

type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	ContextSize int           `mapstructure:"context-size"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type TMDBConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api-key"`
	APIKeyFile  string `mapstructure:"api-key-file"`
	PosterSize  string `mapstructure:"poster-size"`
	Concurrency int    `mapstructure:"concurrency"`

	tmdb.Config `mapstructure:",squash"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "movie-recommender finds similar movies and turns free-text wishes into catalog picks",
	}
)

// Execute executes the root command. SIGINT and SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	for key, env := range map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"tmdb.api-key-file":      "TMDB_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is movie-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog", "", "path to the movie catalog (csv or sqlite)")
	rootCmd.PersistentFlags().String("catalog-format", "", "catalog format: csv or sqlite. Guessed from the extension by default")
	rootCmd.PersistentFlags().String("similarity", "", "path to the similarity matrix (json rows or gonum binary)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("catalog.format", rootCmd.PersistentFlags().Lookup("catalog-format"))
	viper.BindPFlag("similarity.path", rootCmd.PersistentFlags().Lookup("similarity"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Without an explicit --config every setting may come from flags and environment.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
