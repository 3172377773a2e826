// Package settings manages the singleton site configuration document.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// Service reads and mutates settings/config.
type Service struct {
	repo store.SettingsRepo
	log  *slog.Logger
}

func NewService(repo store.SettingsRepo, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

// Load returns the settings document, creating it with uploads enabled
// when absent. The healed default is returned directly, not re-read.
func (s *Service) Load(ctx context.Context) (*model.Settings, error) {
	got, err := s.repo.Get(ctx)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	def := model.DefaultSettings()
	if err := s.repo.Put(ctx, def); err != nil {
		return nil, fmt.Errorf("heal settings: %w", err)
	}
	s.log.Info("settings document created", "postUploadEnabled", def.PostUploadEnabled)
	return def, nil
}

// Toggle flips postUploadEnabled and returns the new state. The write
// is unconditional on the value read moments earlier; concurrent admin
// toggles race and the last write wins.
func (s *Service) Toggle(ctx context.Context) (*model.Settings, error) {
	cur, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	next := &model.Settings{PostUploadEnabled: !cur.PostUploadEnabled}
	if err := s.repo.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("toggle settings: %w", err)
	}
	s.log.Info("post upload toggled", "postUploadEnabled", next.PostUploadEnabled)
	return next, nil
}

// UploadEnabled reports whether new posts may currently be submitted.
// An absent document heals to enabled.
func (s *Service) UploadEnabled(ctx context.Context) (bool, error) {
	cur, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return cur.PostUploadEnabled, nil
}
