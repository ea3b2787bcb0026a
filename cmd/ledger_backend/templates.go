package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func loadTemplates(load func(io.Reader) ([]domain.JournalTemplate, error), path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open templates %s: %w", path, err)
	}
	defer f.Close()

	templates, err := load(f)
	if err != nil {
		return fmt.Errorf("load templates %s: %w", path, err)
	}
	logger.Info("Journal templates loaded", slog.Int("count", len(templates)), slog.String("path", path))
	return nil
}
