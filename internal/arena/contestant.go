package arena

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/fpang/brainrot-studio/internal/model"
)

// ErrNotEnoughContestants is returned when a matchup needs two contestants.
var ErrNotEnoughContestants = errors.New("not enough contestants for a matchup")

// Contestant is one roster model with its latest video and its record.
type Contestant struct {
	ID         string    `json:"id" dynamodbav:"id"`
	Model      string    `json:"model" dynamodbav:"model"`
	IdeaName   string    `json:"idea_name" dynamodbav:"ideaName"`
	VideoPath  string    `json:"video_path" dynamodbav:"videoPath"`
	VideoURL   string    `json:"video_url,omitempty" dynamodbav:"videoUrl,omitempty"`
	Rating     int       `json:"rating" dynamodbav:"rating"`
	Wins       int       `json:"wins" dynamodbav:"wins"`
	Losses     int       `json:"losses" dynamodbav:"losses"`
	Ties       int       `json:"ties" dynamodbav:"ties"`
	TotalVotes int       `json:"total_votes" dynamodbav:"totalVotes"`
	UpdatedAt  time.Time `json:"updated_at,omitzero" dynamodbav:"updatedAt"`
}

// NewContestant creates a contestant at the initial rating.
func NewContestant(r model.PipelineResult) Contestant {
	c := Contestant{ID: model.ContestantID(r.SourceModel), Rating: InitialRating}
	c.setVideo(r)
	return c
}

func (c *Contestant) setVideo(r model.PipelineResult) {
	c.Model = r.SourceModel
	c.IdeaName = r.IdeaName
	c.VideoPath = r.VideoPath
	c.VideoURL = r.VideoURL
}

// Matches is the number of decided or tied matches played.
func (c Contestant) Matches() int {
	return c.Wins + c.Losses + c.Ties
}

// WinRate is the percentage of matches won, counting ties as half a win.
func (c Contestant) WinRate() float64 {
	matches := c.Matches()
	if matches == 0 {
		return 0
	}
	return (float64(c.Wins) + 0.5*float64(c.Ties)) / float64(matches) * 100
}

// Rank is the rank name of the current rating.
func (c Contestant) Rank() string {
	return RankName(c.Rating)
}

// ApplyMatch returns both contestants updated for one vote. Ratings are
// rounded to integers.
func ApplyMatch(a, b Contestant, outcome Outcome, now time.Time) (Contestant, Contestant) {
	ra, rb := UpdateRatings(float64(a.Rating), float64(b.Rating), outcome)
	a.Rating = int(math.Round(ra))
	b.Rating = int(math.Round(rb))

	switch outcome {
	case WinA:
		a.Wins++
		b.Losses++
	case WinB:
		a.Losses++
		b.Wins++
	default:
		a.Ties++
		b.Ties++
	}
	a.TotalVotes++
	b.TotalVotes++
	a.UpdatedAt, b.UpdatedAt = now, now
	return a, b
}

// Latest keeps the last result per model, in first-appearance order.
func Latest(results []model.PipelineResult) []model.PipelineResult {
	index := make(map[string]int)
	var out []model.PipelineResult
	for _, r := range results {
		id := model.ContestantID(r.SourceModel)
		if i, ok := index[id]; ok {
			out[i] = r
			continue
		}
		index[id] = len(out)
		out = append(out, r)
	}
	return out
}

// Pair picks two distinct contestants at random.
func Pair(contestants []Contestant, rng *rand.Rand) (Contestant, Contestant, error) {
	if len(contestants) < 2 {
		return Contestant{}, Contestant{}, ErrNotEnoughContestants
	}
	i := rng.IntN(len(contestants))
	j := rng.IntN(len(contestants) - 1)
	if j >= i {
		j++
	}
	return contestants[i], contestants[j], nil
}

// Leaderboard sorts contestants by rating, then win rate, then ID.
func Leaderboard(contestants []Contestant) []Contestant {
	out := append([]Contestant(nil), contestants...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		if wi, wj := out[i].WinRate(), out[j].WinRate(); wi != wj {
			return wi > wj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
