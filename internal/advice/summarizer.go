package advice

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Summarizer phrases a short explanation for the top pick. Implementations
// may be slow or fail; the engine always has a local fallback.
type Summarizer interface {
	Summarize(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error)
}

// SummarizerFunc adapts a plain function to Summarizer
type SummarizerFunc func(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error)

// Summarize calls f
func (f SummarizerFunc) Summarize(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error) {
	return f(ctx, top, roster, round)
}

// EmptyRationale is returned when there is nothing to recommend
const EmptyRationale = "No available players to recommend right now."

// FallbackRationale builds the deterministic explanation from local data only
func FallbackRationale(top models.Player, round int) string {
	return fmt.Sprintf("%s offers excellent value at pick %d with %.1f VORP. This addresses your %s needs while maintaining strong upside potential.",
		top.Name, round, top.VORP, top.Position)
}
