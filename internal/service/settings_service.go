package service

import (
	"context"
	"fmt"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/validation"
	"github.com/rs/zerolog"
)

// settingsService is the concrete implementation of SettingsService
type settingsService struct {
	settings  repository.SettingsRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newSettingsService(repos *repository.Repositories, o *options, log zerolog.Logger) *settingsService {
	return &settingsService{
		settings:  repos.Settings,
		validator: o.validator,
		log:       log.With().Str("service", "settings").Logger(),
	}
}

// Get returns the stored settings, or unsaved defaults
func (s *settingsService) Get(ctx context.Context, authorID int64) (*models.Settings, error) {
	settings, err := s.settings.GetByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings == nil {
		return models.DefaultSettings(authorID), nil
	}
	return settings, nil
}

// Save validates and upserts the author's settings
func (s *settingsService) Save(ctx context.Context, authorID int64, form *validation.SettingsForm) (*models.Settings, error) {
	if authorID == 0 {
		return nil, ErrUnauthorized
	}
	if errs := s.validator.ValidateSettings(form); len(errs) > 0 {
		return nil, errs
	}

	settings := &models.Settings{
		AuthorID:   authorID,
		BlogTitle:  form.BlogTitle,
		AuthorName: form.AuthorName,
	}
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.log.Info().Int64("author_id", authorID).Msg("Settings saved")
	return settings, nil
}
