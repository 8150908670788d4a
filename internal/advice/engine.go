package advice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

// DefaultSummarizerTimeout bounds how long a rationale may take before the
// fallback text is used
const DefaultSummarizerTimeout = 3 * time.Second

const alternativePrefix = "Alternative: "

// Engine ranks available players for the user's next pick
type Engine struct {
	cfg        valuation.Config
	summarizer Summarizer
	timeout    time.Duration
}

// Option customizes an Engine
type Option func(*Engine)

// WithTimeout overrides the summarizer timeout
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an engine. summarizer may be nil, in which case every
// rationale uses the fallback text.
func NewEngine(cfg valuation.Config, summarizer Summarizer, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		summarizer: summarizer,
		timeout:    DefaultSummarizerTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithConfig returns a copy of the engine using different tables
func (e *Engine) WithConfig(cfg valuation.Config) *Engine {
	clone := *e
	clone.cfg = cfg
	return &clone
}

// Config returns the tables the engine ranks with
func (e *Engine) Config() valuation.Config {
	return e.cfg
}

type candidate struct {
	player   models.Player
	reason   string
	priority float64
}

// Recommend builds draft advice from the available players, the user's
// roster and the current round. It never fails: an empty candidate set
// gives empty lists, and any summarizer problem resolves to the fallback
// rationale.
func (e *Engine) Recommend(ctx context.Context, available, roster []models.Player, round int) models.DraftAdvice {
	ranked := e.rank(available, roster, round)

	out := models.DraftAdvice{
		Recommendations: []models.RecommendationEntry{},
		Alternatives:    []models.AlternativeEntry{},
	}
	if len(ranked) == 0 {
		out.Rationale = EmptyRationale
		return out
	}

	for i, c := range ranked {
		switch {
		case i < e.cfg.MaxRecommendations:
			out.Recommendations = append(out.Recommendations, models.RecommendationEntry{
				Player:   c.player,
				Reason:   c.reason,
				Priority: c.priority,
			})
		case i < e.cfg.MaxRecommendations+e.cfg.MaxAlternatives:
			out.Alternatives = append(out.Alternatives, models.AlternativeEntry{
				Player: c.player,
				Reason: alternativePrefix + firstSentence(c.reason),
			})
		}
	}

	top := ranked[0].player
	out.Rationale = e.rationale(ctx, top, roster, round)
	return out
}

// rank scores the candidate window and returns it ordered by adjusted
// priority, then raw VORP, then id
func (e *Engine) rank(available, roster []models.Player, round int) []candidate {
	needs := valuation.ComputeNeeds(e.cfg, roster)

	pool := make([]models.Player, 0, len(available))
	for _, p := range available {
		if !p.IsDrafted {
			pool = append(pool, p)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].VORP != pool[j].VORP {
			return pool[i].VORP > pool[j].VORP
		}
		return pool[i].ID < pool[j].ID
	})
	if len(pool) > e.cfg.CandidateWindow {
		pool = pool[:e.cfg.CandidateWindow]
	}

	ranked := make([]candidate, 0, len(pool))
	for _, p := range pool {
		ranked = append(ranked, e.score(p, needs, round))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.player.VORP != b.player.VORP {
			return a.player.VORP > b.player.VORP
		}
		return a.player.ID < b.player.ID
	})
	return ranked
}

// score applies the need, early-round and injury adjustments in that order
func (e *Engine) score(p models.Player, needs map[models.Position]int, round int) candidate {
	c := candidate{
		player:   p,
		priority: p.VORP,
		reason:   fmt.Sprintf("Elite value with %.1f VORP", p.VORP),
	}

	if needs[p.Position] > 0 {
		c.priority += e.cfg.NeedBonus
		c.reason = fmt.Sprintf("Fills %s need with strong %.1f VORP", p.Position, p.VORP)
	}

	if round <= e.cfg.EarlyRoundMax && p.Tier > e.cfg.EarlyRoundTierCutoff {
		c.priority -= e.cfg.EarlyRoundPenalty
		c.reason = fmt.Sprintf("High-upside pick but consider tier %d risk", p.Tier)
	}

	if status := p.InjuryStatus.Normalized(); status != models.Healthy {
		c.priority -= e.cfg.InjuryPenalty
		c.reason += fmt.Sprintf(". Monitor %s status", strings.ToLower(string(status)))
	}

	return c
}

func (e *Engine) rationale(ctx context.Context, top models.Player, roster []models.Player, round int) string {
	fallback := FallbackRationale(top, round)
	if e.summarizer == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("summarizer panic: %v", r)}
			}
		}()
		text, err := e.summarizer.Summarize(ctx, top, roster, round)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			logger.Warn("Summarizer failed, using fallback rationale", "error", res.err, "player_id", top.ID)
			return fallback
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			logger.Warn("Summarizer returned empty text, using fallback rationale", "player_id", top.ID)
			return fallback
		}
		return text
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("Summarizer timed out, using fallback rationale", "timeout", e.timeout.String(), "player_id", top.ID)
		} else {
			logger.Debug("Advice request cancelled, using fallback rationale", "player_id", top.ID)
		}
		return fallback
	}
}

// Overview is the one-line headline shown above the recommendation list
func Overview(adv models.DraftAdvice, round, pick int) string {
	if len(adv.Recommendations) == 0 {
		return fmt.Sprintf("Round %d, Pick %d: %s", round, pick, EmptyRationale)
	}
	top := adv.Recommendations[0].Player
	return fmt.Sprintf("Round %d, Pick %d: Top recommendation is %s (%s).", round, pick, top.Name, top.Position)
}

// firstSentence cuts a reason at its first sentence break. Decimal points in
// VORP values are not sentence breaks.
func firstSentence(reason string) string {
	if i := strings.Index(reason, ". "); i >= 0 {
		return reason[:i]
	}
	return strings.TrimSuffix(reason, ".")
}
