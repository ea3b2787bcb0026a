package services

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

type TemplateSvcFacade interface {
	// LoadTemplates decodes and registers templates. Nothing is registered when any template is malformed.
	LoadTemplates(r io.Reader) ([]domain.JournalTemplate, error)
	ListTemplates() []domain.JournalTemplate

	// CreateFromTemplate creates a DRAFT entry dated date from the named template.
	CreateFromTemplate(ctx context.Context, name string, date time.Time, actorID string) (*domain.JournalEntry, error)
}
