package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/cache"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// RationaleTTL is how long a generated rationale is reused
const RationaleTTL = 24 * time.Hour

// Cached reuses rationales for an identical top pick, its scores, round and
// roster
type Cached struct {
	next  advice.Summarizer
	store cache.Store
	ttl   time.Duration
}

// NewCached wraps next with store
func NewCached(next advice.Summarizer, store cache.Store) *Cached {
	return &Cached{next: next, store: store, ttl: RationaleTTL}
}

// Summarize returns the cached text or calls through and stores the result.
// Cache failures fall through to a direct call.
func (c *Cached) Summarize(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error) {
	key := rationaleKey(top, roster, round)

	var text string
	err := c.store.Get(ctx, key, &text)
	switch {
	case err == nil:
		return text, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Warn("Rationale cache read failed", "key", key, "error", err)
	}

	text, err = c.next.Summarize(ctx, top, roster, round)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, text, c.ttl); err != nil {
		logger.Warn("Rationale cache write failed", "key", key, "error", err)
	}
	return text, nil
}

func rationaleKey(top models.Player, roster []models.Player, round int) string {
	ids := make([]string, 0, len(roster))
	for _, p := range roster {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)

	// Scores are part of the key so a revalued player gets fresh text
	scores := fmt.Sprintf("%.1f|%d|%.1f", top.VORP, top.Tier, top.ProjectedPoints)
	sum := sha256.Sum256([]byte(top.ID + "|" + scores + "|" + strconv.Itoa(round) + "|" + strings.Join(ids, ",")))
	return cache.Key("rationale", hex.EncodeToString(sum[:16]))
}
