package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/brainrot-studio/internal/archive"
	"github.com/fpang/brainrot-studio/internal/cli"
)

// export flags
var (
	outFlag   string
	levelFlag int
	yesFlag   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle the output directory into a Zstandard ZIP",
	Long: `Export writes every file of the output directory (summary, ratings and
per-idea artifacts) into one ZIP archive compressed with Zstandard
(method 93). Extract it with 7-Zip 21+ or any zstd-aware unzip.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, _ := loadConfig(ctx, nil)
		dir, err := cli.ResolveDirectory(cfg.OutputDir)
		if err != nil {
			return err
		}

		if _, err := os.Stat(outFlag); err == nil {
			if !yesFlag && !cli.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("%s exists. Overwrite?", outFlag)) {
				log.Info().Str("path", outFlag).Msg("Export cancelled")
				return nil
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		stats, err := archive.BundleFile(ctx, dir, outFlag, levelFlag)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s: %d files, %.1f MB uncompressed\n", outFlag, stats.Files, float64(stats.Bytes)/(1024*1024))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&outFlag, "out", "brainrot-export.zip", "Archive path")
	exportCmd.Flags().IntVar(&levelFlag, "level", archive.DefaultLevel, "Zstandard level (1-22)")
	exportCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Overwrite the archive without asking")
}
