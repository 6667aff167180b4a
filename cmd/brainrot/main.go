package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/brainrot-studio/internal/cli"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/lambdaboot"
	"github.com/fpang/brainrot-studio/internal/logging"
)

// Persistent flags
var (
	configFlag   string
	envFileFlag  string
	logLevelFlag string
	outputFlag   string
)

var initStart = time.Now()

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "brainrot",
	Short: "Italian brainrot meme video generator",
	Long: `Brainrot asks a roster of language models for Italian brainrot characters,
renders several images and a spoken line for each, lets a model pick the
best image, and composes a short video with ffmpeg.

Examples:
  brainrot generate
  brainrot generate --model openai/gpt-4.1 --model gemini:gemini-2.5-flash --candidates 3
  brainrot generate --publish
  brainrot arena seed && brainrot arena matchup
  brainrot arena vote openai_gpt-4.1 deepseek_deepseek-chat-v3-0324 --winner a
  brainrot export --out bundle.zip`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevelFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "YAML config file (default brainrot.yaml in . or ./config)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Environment file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default from BRAINROT_LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overrides output_dir)")

	rootCmd.AddCommand(generateCmd, arenaCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM. Work already started
// is allowed to wind down and the summary is still written.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads configuration, applies command-line overrides, creates
// the AWS clients the configuration needs and resolves secrets from SSM.
// Any problem here is a configuration error and exits the process.
func loadConfig(ctx context.Context, override func(*config.Config)) (*config.Config, *lambdaboot.AWSClients) {
	cfg, err := config.Load(config.LoadOptions{File: configFlag, EnvFile: envFileFlag})
	if err != nil {
		cli.HandleConfigError(err)
	}
	if outputFlag != "" {
		cfg.OutputDir = outputFlag
	}
	if logLevelFlag == "" && cfg.LogLevel != "" {
		logging.Init(cfg.LogLevel)
	}
	if override != nil {
		override(cfg)
	}

	var clients *lambdaboot.AWSClients
	if lambdaboot.NeedsAWS(cfg) {
		clients, err = lambdaboot.InitAWS(ctx, cfg)
		if err != nil {
			cli.HandleConfigError(err)
		}
		if err := clients.ResolveSecrets(ctx, cfg); err != nil {
			cli.HandleConfigError(err)
		}
	}
	log.Debug().Str("output", cfg.OutputDir).Bool("aws", clients != nil).Msg("Configuration loaded")
	return cfg, clients
}
