package summarizer

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Static phrases rationales locally without any network call
type Static struct{}

// Summarize describes the top pick from its tier and VORP
func (Static) Summarize(_ context.Context, top models.Player, roster []models.Player, round int) (string, error) {
	return fmt.Sprintf("%s is the strongest tier %d option left in round %d at %.1f VORP. With %d players rostered, a %s keeps your lineup balanced.",
		top.Name, top.Tier, round, top.VORP, len(roster), top.Position), nil
}
