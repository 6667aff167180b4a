package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/model"
)

// ErrUnknownContestant is returned when a vote names a missing contestant.
var ErrUnknownContestant = errors.New("unknown contestant")

// Store persists contestants.
type Store interface {
	List(ctx context.Context) ([]Contestant, error)
	Get(ctx context.Context, id string) (Contestant, bool, error)
	Put(ctx context.Context, c Contestant) error
	// SaveMatch writes both contestants of a vote together.
	SaveMatch(ctx context.Context, a, b Contestant) error
}

// Arena applies seeding and votes to a Store.
type Arena struct {
	Store Store
	Now   func() time.Time
}

func (a *Arena) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// Seed registers one contestant per model from summary results. The
// latest result per model supplies the video; existing records keep their
// rating and votes. It returns the number of contestants written.
func (a *Arena) Seed(ctx context.Context, results []model.PipelineResult) (int, error) {
	latest := Latest(results)
	for _, r := range latest {
		id := model.ContestantID(r.SourceModel)
		c, found, err := a.Store.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		if found {
			c.setVideo(r)
		} else {
			c = NewContestant(r)
		}
		c.UpdatedAt = a.now()
		if err := a.Store.Put(ctx, c); err != nil {
			return 0, err
		}
		log.Debug().Str("model", r.SourceModel).Bool("existing", found).Msg("Contestant seeded")
	}
	log.Info().Int("contestants", len(latest)).Msg("Arena seeded")
	return len(latest), nil
}

// Vote records one match between contestants idA and idB.
func (a *Arena) Vote(ctx context.Context, idA, idB string, outcome Outcome) (Contestant, Contestant, error) {
	if idA == idB {
		return Contestant{}, Contestant{}, fmt.Errorf("a contestant cannot face itself: %s", idA)
	}
	ca, err := a.mustGet(ctx, idA)
	if err != nil {
		return Contestant{}, Contestant{}, err
	}
	cb, err := a.mustGet(ctx, idB)
	if err != nil {
		return Contestant{}, Contestant{}, err
	}

	ca, cb = ApplyMatch(ca, cb, outcome, a.now())
	if err := a.Store.SaveMatch(ctx, ca, cb); err != nil {
		return Contestant{}, Contestant{}, err
	}

	log.Info().
		Str("a", ca.ID).
		Str("b", cb.ID).
		Str("winner", outcome.String()).
		Int("rating_a", ca.Rating).
		Int("rating_b", cb.Rating).
		Msg("Vote recorded")
	return ca, cb, nil
}

func (a *Arena) mustGet(ctx context.Context, id string) (Contestant, error) {
	c, found, err := a.Store.Get(ctx, id)
	if err != nil {
		return Contestant{}, err
	}
	if !found {
		return Contestant{}, fmt.Errorf("%w: %s", ErrUnknownContestant, id)
	}
	return c, nil
}

// Leaderboard returns every contestant ordered by rating.
func (a *Arena) Leaderboard(ctx context.Context) ([]Contestant, error) {
	all, err := a.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Leaderboard(all), nil
}

// Matchup draws two distinct contestants from the store.
func (a *Arena) Matchup(ctx context.Context, rng *rand.Rand) (Contestant, Contestant, error) {
	all, err := a.Store.List(ctx)
	if err != nil {
		return Contestant{}, Contestant{}, err
	}
	return Pair(all, rng)
}
