// Package backend builds the mirror store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"ledger/internal/config"
	"ledger/internal/mirror"
	"ledger/internal/mirror/memory"
	"ledger/internal/mirror/sheets"
)

// Open returns the configured store, or nil for the "none" backend.
func Open(ctx context.Context, cfg config.MirrorConfig) (mirror.Store, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.New([][]any{{cfg.PerDayLabel, cfg.ObligationLabel}}), nil
	case "sheets":
		c, err := sheets.New(ctx, cfg.SpreadsheetID, sheets.Credentials{
			JSON: cfg.CredentialsJSON,
			File: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("sheets mirror: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unsupported mirror backend %q", cfg.Backend)
}
