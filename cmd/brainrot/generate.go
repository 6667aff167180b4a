package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/brainrot-studio/internal/app"
	"github.com/fpang/brainrot-studio/internal/cli"
	"github.com/fpang/brainrot-studio/internal/config"
)

// generate flags
var (
	candidatesFlag int
	modelFlags     []string
	publishFlag    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one batch: ideas from every roster model, one video per idea",
	Long: `Generate asks every roster model for one idea in parallel, then for each
accepted idea renders image candidates and speech, selects the best image and
composes the final video. Results are appended to the summary file.

Individual ideas may fail or be abandoned; the exit status is non-zero only
for configuration errors.`,
	Args: cobra.NoArgs,
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&candidatesFlag, "candidates", "n", 0, "Image candidates per idea (overrides candidates)")
	generateCmd.Flags().StringArrayVarP(&modelFlags, "model", "m", nil, "Roster model; repeat to run several (overrides roster)")
	generateCmd.Flags().BoolVar(&publishFlag, "publish", false, "Upload videos to s3://<aws.s3_bucket>/<aws.s3_prefix>/<run-id>/")
}

func runGenerate(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	cfg, clients := loadConfig(ctx, func(cfg *config.Config) {
		if cmd.Flags().Changed("candidates") {
			cfg.Candidates = candidatesFlag
		}
		if len(modelFlags) > 0 {
			cfg.Roster = modelFlags
		}
		if publishFlag {
			cfg.Publish = true
		}
	})

	studio, err := app.New(ctx, cfg, clients, app.Options{Name: "brainrot", InitStart: initStart})
	if err != nil {
		cli.HandleConfigError(err)
	}

	report := studio.Run(ctx)
	cli.PrintReport(os.Stdout, report)
}
