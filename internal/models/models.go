package models

import (
	"fmt"
	"strings"
	"time"
)

// Position is a roster-eligible position
type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DST Position = "DST"
)

// Positions lists every position in display order
var Positions = []Position{QB, RB, WR, TE, K, DST}

// ParsePosition validates a position string (case-insensitive)
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if p.Valid() {
		return p, nil
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Valid reports whether p is one of the known positions
func (p Position) Valid() bool {
	switch p {
	case QB, RB, WR, TE, K, DST:
		return true
	}
	return false
}

// InjuryStatus is the reported injury designation of a player
type InjuryStatus string

const (
	Healthy      InjuryStatus = "Healthy"
	Questionable InjuryStatus = "Questionable"
	Doubtful     InjuryStatus = "Doubtful"
	Out          InjuryStatus = "Out"
)

// ParseInjuryStatus validates an injury status. Empty means Healthy.
func ParseInjuryStatus(s string) (InjuryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "healthy":
		return Healthy, nil
	case "questionable":
		return Questionable, nil
	case "doubtful":
		return Doubtful, nil
	case "out":
		return Out, nil
	}
	return "", fmt.Errorf("unknown injury status %q", s)
}

// Normalized maps the zero value to Healthy
func (s InjuryStatus) Normalized() InjuryStatus {
	if s == "" {
		return Healthy
	}
	return s
}

// Player represents a draftable player. VORP and Tier are derived and only
// written by the valuation package.
type Player struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Position        Position     `json:"position" yaml:"position"`
	Team            string       `json:"team" yaml:"team"`
	ByeWeek         int          `json:"byeWeek" yaml:"byeWeek"`
	ProjectedPoints float64      `json:"projectedPoints" yaml:"projectedPoints"`
	ADP             float64      `json:"adp" yaml:"adp"`
	Floor           float64      `json:"floor" yaml:"floor"`
	Ceiling         float64      `json:"ceiling" yaml:"ceiling"`
	StartableWeeks  []int        `json:"startableWeeks" yaml:"startableWeeks"`
	VORP            float64      `json:"vorp" yaml:"-"`
	Tier            int          `json:"tier" yaml:"-"`
	InjuryStatus    InjuryStatus `json:"injuryStatus,omitempty" yaml:"injuryStatus"`
	DepthRank       int          `json:"depthRank" yaml:"depthRank"`
	IsDrafted       bool         `json:"isDrafted" yaml:"-"`
	DraftedBy       string       `json:"draftedBy,omitempty" yaml:"-"`
	DraftedRound    int          `json:"draftedRound,omitempty" yaml:"-"`
	DraftedPick     int          `json:"draftedPick,omitempty" yaml:"-"`
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	if p.StartableWeeks != nil {
		weeks := make([]int, len(p.StartableWeeks))
		copy(weeks, p.StartableWeeks)
		p.StartableWeeks = weeks
	}
	return p
}

// ClearDraft resets the draft fields
func (p *Player) ClearDraft() {
	p.IsDrafted = false
	p.DraftedBy = ""
	p.DraftedRound = 0
	p.DraftedPick = 0
}

// DraftPick is one slot in the draft order. Player is nil while the pick is open.
type DraftPick struct {
	Round     int        `json:"round"`
	Pick      int        `json:"pick"`
	Team      string     `json:"team"`
	Player    *Player    `json:"player"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Open reports whether the pick has not been made yet
func (p DraftPick) Open() bool {
	return p.Player == nil
}

// DraftState is the snapshot of one draft session
type DraftState struct {
	Players  []Player    `json:"players"`
	Picks    []DraftPick `json:"picks"`
	UserTeam string      `json:"userTeam"`
	Teams    []string    `json:"teams"`
}

// Clone returns a deep copy so callers can mutate the result freely
func (s *DraftState) Clone() *DraftState {
	if s == nil {
		return nil
	}
	out := &DraftState{
		UserTeam: s.UserTeam,
		Players:  make([]Player, len(s.Players)),
		Picks:    make([]DraftPick, len(s.Picks)),
		Teams:    make([]string, len(s.Teams)),
	}
	for i := range s.Players {
		out.Players[i] = s.Players[i].Clone()
	}
	for i, pick := range s.Picks {
		if pick.Player != nil {
			p := pick.Player.Clone()
			pick.Player = &p
		}
		if pick.Timestamp != nil {
			ts := *pick.Timestamp
			pick.Timestamp = &ts
		}
		out.Picks[i] = pick
	}
	copy(out.Teams, s.Teams)
	return out
}

// SortKey selects the ordering of a player listing
type SortKey string

const (
	SortByVORP            SortKey = "vorp"
	SortByADP             SortKey = "adp"
	SortByProjectedPoints SortKey = "projectedPoints"
	SortByCeiling         SortKey = "ceiling"
)

// ParseSortKey validates a sort key. Empty means vorp.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByVORP, nil
	case SortByVORP, SortByADP, SortByProjectedPoints, SortByCeiling:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// FilterState is the player-list filter selection
type FilterState struct {
	Positions      []Position     `json:"position"`
	Tier           *int           `json:"tier"`
	ByeWeek        *int           `json:"byeWeek"`
	Teams          []string       `json:"team"`
	AvailableOnly  bool           `json:"availableOnly"`
	InjuryStatuses []InjuryStatus `json:"injuryStatus"`
	Search         string         `json:"search,omitempty"`
}

// RecommendationEntry is a ranked suggestion. Priority is only used for ranking.
type RecommendationEntry struct {
	Player   Player  `json:"player"`
	Reason   string  `json:"reason"`
	Priority float64 `json:"-"`
}

// AlternativeEntry is a secondary suggestion
type AlternativeEntry struct {
	Player Player `json:"player"`
	Reason string `json:"reason"`
}

// DraftAdvice is computed fresh on every request and never stored
type DraftAdvice struct {
	Recommendations []RecommendationEntry `json:"recommendations"`
	Rationale       string                `json:"rationale"`
	Alternatives    []AlternativeEntry    `json:"alternatives"`
}

// ProjectionUpdate is a refreshed projection for one player from an
// external source. Nil fields are left unchanged.
type ProjectionUpdate struct {
	PlayerID        string        `json:"playerId"`
	ProjectedPoints float64       `json:"projectedPoints"`
	ADP             *float64      `json:"adp,omitempty"`
	Floor           *float64      `json:"floor,omitempty"`
	Ceiling         *float64      `json:"ceiling,omitempty"`
	InjuryStatus    *InjuryStatus `json:"injuryStatus,omitempty"`
}

// Apply writes the update onto p
func (u ProjectionUpdate) Apply(p *Player) {
	p.ProjectedPoints = u.ProjectedPoints
	if u.ADP != nil {
		p.ADP = *u.ADP
	}
	if u.Floor != nil {
		p.Floor = *u.Floor
	}
	if u.Ceiling != nil {
		p.Ceiling = *u.Ceiling
	}
	if u.InjuryStatus != nil {
		p.InjuryStatus = *u.InjuryStatus
	}
}
