package matchmaking

import (
	"time"

	"github.com/matchbot-dev/matchbot/internal/rating"
)

// QueueConfig is the per-queue matchmaking configuration. It is mutated only
// through Engine.Configure, under the queue lock.
type QueueConfig struct {
	TeamSize  int `json:"team_size"`
	TeamCount int `json:"team_count"`

	// Maps is the full map pool; each session offers MapVoteCount of them
	// for the map vote. A MapVoteCount of zero picks a map at random with
	// no vote.
	Maps         []string `json:"maps"`
	MapVoteCount int      `json:"map_vote_count"`
	// MapVoteTime bounds the map vote; zero means the vote stays open
	// until a majority is reached.
	MapVoteTime time.Duration `json:"map_vote_time"`

	LeaverVerificationTime time.Duration `json:"leaver_verification_time"`

	// MaximumQueueCost is the highest total cost the composer may commit.
	// A cheaper-than-nothing assignment above this bound is deferred.
	MaximumQueueCost float64 `json:"maximum_queue_cost"`

	// Categories maps a category name to its ordered variant labels
	// (for example "mode" -> ["hardpoint", "control"]).
	Categories map[string][]string `json:"categories"`

	DefaultRating rating.Rating `json:"default_rating"`
	DefaultCost   CostConfig    `json:"default_cost"`
}

// DefaultQueueConfig returns a 5v5 queue with a 30s leaver verification
// window and a cost ceiling of 50.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		TeamSize:               5,
		TeamCount:              2,
		MapVoteCount:           0,
		MapVoteTime:            0,
		LeaverVerificationTime: 30 * time.Second,
		MaximumQueueCost:       50.0,
		Categories:             map[string][]string{},
		DefaultRating:          rating.New(),
		DefaultCost:            DefaultCostConfig(),
	}
}

// TotalSlots is the number of participants a full session needs.
func (c *QueueConfig) TotalSlots() int {
	return c.TeamSize * c.TeamCount
}

// RequiredVotes is the majority threshold for map and result votes.
func (c *QueueConfig) RequiredVotes() int {
	return c.TotalSlots()/2 + 1
}
