package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/model"
)

// Processors maintains the registry of processors the vault recognizes.
// Subjects can only be associated with registered processors.
type Processors struct {
	store  model.ProcessorStore
	logger *logger.Logger
}

func NewProcessors(store model.ProcessorStore, logger *logger.Logger) *Processors {
	return &Processors{
		store:  store,
		logger: logger,
	}
}

// processorSeed mirrors the JSON shape accepted in configuration.
type processorSeed struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
}

// SyncFromJSON upserts every processor in the configured JSON seed. Existing
// processors keep their associations; only their attributes are refreshed.
func (s *Processors) SyncFromJSON(ctx context.Context, raw string) error {
	var seeds []processorSeed
	if err := json.Unmarshal([]byte(raw), &seeds); err != nil {
		return fmt.Errorf("failed to parse processor seed: %w", err)
	}

	for _, seed := range seeds {
		if seed.ID == "" || seed.Name == "" {
			return fmt.Errorf("processor seed entries require an id and a name")
		}
		err := s.store.Upsert(ctx, model.Processor{
			ID:          seed.ID,
			Name:        seed.Name,
			LogoURL:     seed.LogoURL,
			Description: seed.Description,
		})
		if err != nil {
			return err
		}
	}

	if len(seeds) > 0 {
		s.logger.Info("Processor service: synced processor registry", "count", len(seeds))
	}

	return nil
}

// List returns all registered processors.
func (s *Processors) List(ctx context.Context) ([]model.Processor, error) {
	return s.store.List(ctx)
}
