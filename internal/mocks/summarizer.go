package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Summarizer is a testify mock for the rationale summarizer
type Summarizer struct {
	mock.Mock
}

// Summarize records the call and returns the configured result
func (m *Summarizer) Summarize(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error) {
	args := m.Called(ctx, top, roster, round)
	return args.String(0), args.Error(1)
}
