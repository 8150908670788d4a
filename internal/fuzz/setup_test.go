package fuzz

import (
	"io"
	"testing"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/catalog"
	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/draft-assistant/internal/session"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

func init() {
	logger.InitWith(io.Discard, "error")
}

var defaultCatalog = catalog.Default()

// newSession returns a manager with one live session and its id
func newSession(t testing.TB) (*session.Manager, string) {
	t.Helper()
	cfg := valuation.DefaultConfig()
	manager := session.NewManager(dal.NewMemoryDAL(), pubsub.New(), defaultCatalog, advice.NewEngine(cfg, nil))
	id, _, err := manager.Create("", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return manager, id
}
