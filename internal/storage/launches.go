package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"ctp/internal/domain"
)

// Save adds or replaces a configuration by ID
func (s *JSONLaunchStore) Save(cfg *domain.LaunchConfiguration) error {
	all, err := s.List()
	if err != nil {
		return err
	}
	replaced := false
	for i, c := range all {
		if c.ID == cfg.ID {
			all[i] = cfg
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, cfg)
	}
	if err := writeJSON(s.cfg.GetLaunchesPath(), all); err != nil {
		return fmt.Errorf("save launch configuration %q: %w", cfg.Name, err)
	}
	return nil
}

// Get returns the configuration with the given ID
func (s *JSONLaunchStore) Get(id string) (*domain.LaunchConfiguration, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLaunchNotFound, id)
}

// Latest returns the most recently added configuration
func (s *JSONLaunchStore) Latest() (*domain.LaunchConfiguration, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrLaunchNotFound
	}
	return all[len(all)-1], nil
}

// List returns all configurations in the order they were first saved
func (s *JSONLaunchStore) List() ([]*domain.LaunchConfiguration, error) {
	data, err := os.ReadFile(s.cfg.GetLaunchesPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read launch configurations: %w", err)
	}
	var all []*domain.LaunchConfiguration
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse launch configurations: %w", err)
	}
	return all, nil
}
