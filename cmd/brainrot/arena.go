package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/brainrot-studio/internal/app"
	"github.com/fpang/brainrot-studio/internal/arena"
	"github.com/fpang/brainrot-studio/internal/cli"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/lambdaboot"
	"github.com/fpang/brainrot-studio/internal/summary"
)

// arena flags
var (
	winnerFlag    string
	s3SummaryFlag bool
)

var arenaCmd = &cobra.Command{
	Use:   "arena",
	Short: "Compare roster models head to head with Elo ratings",
	Long: `The arena keeps one contestant per roster model, showing its latest video.
Ratings start at 1000 and move with every vote (K = 32). Ratings live in
ratings.json in the output directory, or in DynamoDB when aws.dynamo_table
is set.`,
}

var arenaSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register contestants from the summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, clients := loadConfig(ctx, nil)
		store, err := app.SummaryStore(cfg, clients, s3SummaryFlag)
		if err != nil {
			cli.HandleConfigError(err)
		}
		results, err := summary.Results(ctx, store)
		if err != nil {
			return err
		}
		n, err := newArena(cfg, clients).Seed(ctx, results)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d contestants from %s\n", n, store.Location())
		return nil
	},
}

var arenaMatchupCmd = &cobra.Command{
	Use:   "matchup",
	Short: "Draw two random contestants to compare",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, clients := loadConfig(ctx, nil)
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		a, b, err := newArena(cfg, clients).Matchup(ctx, rng)
		if err != nil {
			return err
		}
		printContestant("A", a)
		printContestant("B", b)
		fmt.Printf("\nVote with: brainrot arena vote %s %s --winner a|b|tie\n", a.ID, b.ID)
		return nil
	},
}

var arenaVoteCmd = &cobra.Command{
	Use:   "vote <contestant-a> <contestant-b>",
	Short: "Record the outcome of one matchup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := arena.ParseOutcome(winnerFlag)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		cfg, clients := loadConfig(ctx, nil)
		a, b, err := newArena(cfg, clients).Vote(ctx, args[0], args[1], outcome)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d (%s)\n%s: %d (%s)\n", a.ID, a.Rating, a.Rank(), b.ID, b.Rating, b.Rank())
		return nil
	},
}

var arenaLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show contestants ordered by rating",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, clients := loadConfig(ctx, nil)
		board, err := newArena(cfg, clients).Leaderboard(ctx)
		if err != nil {
			return err
		}
		cli.PrintLeaderboard(os.Stdout, board)
		return nil
	},
}

func init() {
	arenaSeedCmd.Flags().BoolVar(&s3SummaryFlag, "s3-summary", false, "Read the summary from S3 instead of the output directory")
	arenaVoteCmd.Flags().StringVarP(&winnerFlag, "winner", "w", "", "Winner: a, b or tie")
	_ = arenaVoteCmd.MarkFlagRequired("winner")

	arenaCmd.AddCommand(arenaSeedCmd, arenaMatchupCmd, arenaVoteCmd, arenaLeaderboardCmd)
}

func newArena(cfg *config.Config, clients *lambdaboot.AWSClients) *arena.Arena {
	return &arena.Arena{Store: clients.ArenaStore(cfg)}
}

func printContestant(label string, c arena.Contestant) {
	video := c.VideoPath
	if c.VideoURL != "" {
		video = c.VideoURL
	}
	fmt.Printf("%s  %-40s %4d %-12s %s\n    %s\n", label, c.Model, c.Rating, c.Rank(), c.IdeaName, video)
}
