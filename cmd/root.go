package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/killallgit/wortschatz-api/pkg/config"
	"github.com/killallgit/wortschatz-api/pkg/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wortschatz-api",
	Short: "Wortschatz API server",
	Long: `Wortschatz API - German audio transcription and vocabulary backend

Upload German audio to get a word-timed transcript, replay the stored
audio alongside it, look words up in a dictionary and keep the ones
worth learning in a personal vocabulary.

Features:
  • Transcription through whisper.cpp or an OpenAI compatible server
  • Audio library with range request streaming
  • Dictionary lookup with machine translation fallback
  • Vocabulary list with case-insensitive duplicates check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath, "settings file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "write HTTP request logs as JSON lines")
}

// loadConfig reads configuration for commands that need it, applying the
// persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		config.SetConfigPath(path)
	}
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	return cfg, nil
}

// setupLogging configures the standard logger and follows level changes in
// the settings file unless --log-level pinned it
func setupLogging(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("log-level") {
		config.Watch(func(updated *config.Config) {
			logger.Writer.SetLevel(logging.ParseLevel(updated.Logging.Level))
		})
	}
	return logger, nil
}
