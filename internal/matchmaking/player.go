package matchmaking

import (
	"time"

	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/rating"
)

// CostConfig holds the weights the cost evaluator applies for one
// participant. Every queue carries a default; participants may override
// individual fields (see CostOverrides).
type CostConfig struct {
	// CostPerSpread is applied to the part of the team-average rating
	// spread that exceeds AcceptableSpread.
	CostPerSpread    float64 `json:"cost_per_spread"`
	AcceptableSpread float64 `json:"acceptable_spread"`

	// CostPerRange is applied to the part of the individual rating range
	// that exceeds AcceptableRange.
	CostPerRange    float64 `json:"cost_per_range"`
	AcceptableRange float64 `json:"acceptable_range"`

	// WrongCategoryCost is the per-category penalty charged when the
	// session's majority variant is not among the participant's own
	// memberships for that category.
	WrongCategoryCost map[string]float64 `json:"wrong_category_cost"`
}

// DefaultCostConfig is a workable starting point for 25-mean ratings.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		CostPerSpread:     0.04,
		AcceptableSpread:  1.0,
		CostPerRange:      0.02,
		AcceptableRange:   3.0,
		WrongCategoryCost: map[string]float64{},
	}
}

// CostOverrides is a participant's sparse cost configuration. Nil fields
// fall back to the queue default.
type CostOverrides struct {
	CostPerSpread     *float64           `json:"cost_per_spread,omitempty"`
	AcceptableSpread  *float64           `json:"acceptable_spread,omitempty"`
	CostPerRange      *float64           `json:"cost_per_range,omitempty"`
	AcceptableRange   *float64           `json:"acceptable_range,omitempty"`
	WrongCategoryCost map[string]float64 `json:"wrong_category_cost,omitempty"`
}

// Derive resolves the overrides against the queue default.
func (o CostOverrides) Derive(base CostConfig) CostConfig {
	out := base
	if o.CostPerSpread != nil {
		out.CostPerSpread = *o.CostPerSpread
	}
	if o.AcceptableSpread != nil {
		out.AcceptableSpread = *o.AcceptableSpread
	}
	if o.CostPerRange != nil {
		out.CostPerRange = *o.CostPerRange
	}
	if o.AcceptableRange != nil {
		out.AcceptableRange = *o.AcceptableRange
	}
	if o.WrongCategoryCost != nil {
		out.WrongCategoryCost = o.WrongCategoryCost
	}
	return out
}

// PlayerStats is a participant's win/loss record in one queue.
type PlayerStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// PlayerData is everything a queue tracks per participant: the skill
// estimate, cost overrides, category memberships and the running record.
// Created on first reference, never deleted.
type PlayerData struct {
	Rating     rating.Rating    `json:"rating"`
	Overrides  CostOverrides    `json:"overrides"`
	Categories map[string][]int `json:"categories"`
	Stats      PlayerStats      `json:"stats"`
}

type queueStatus int

const (
	statusIdle queueStatus = iota
	statusQueued
	statusInSession
)

// playerState is the cross-queue view of a participant: whether they are
// waiting or playing, where, and which party they belong to. Guarded by
// Engine.mu.
type playerState struct {
	status    queueStatus
	queue     uuid.UUID
	session   uint64
	enteredAt time.Time // zero unless status == statusQueued
	party     uuid.UUID // uuid.Nil when not partied
}
