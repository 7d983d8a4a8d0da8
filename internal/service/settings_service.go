package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/mealsbot/internal/domain"
	"github.com/tazhate/mealsbot/internal/storage"
)

type SettingsService struct {
	storage *storage.Storage
}

func NewSettingsService(s *storage.Storage) *SettingsService {
	return &SettingsService{storage: s}
}

// SaveCredentials stores both fields verbatim. They are validated only
// implicitly, when the stored credentials fail the token exchange.
func (s *SettingsService) SaveCredentials(userID int64, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("username and password cannot be empty")
	}
	if err := s.storage.SaveCredentials(userID, username, password); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *SettingsService) SetFrequency(userID int64, raw string) (domain.Frequency, error) {
	freq, err := domain.ParseFrequency(raw)
	if err != nil {
		return "", err
	}
	if err := s.storage.SetFrequency(userID, freq); err != nil {
		return "", fmt.Errorf("set frequency: %w", err)
	}
	return freq, nil
}

// Get returns nil without error when the user has no settings yet.
func (s *SettingsService) Get(userID int64) (*domain.Settings, error) {
	return s.storage.GetSettings(userID)
}
