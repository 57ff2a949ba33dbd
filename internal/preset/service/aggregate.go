package service

import (
	"context"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// ListForGeneratorType merges both preset tiers for one generator type:
// the curated factory tier first, then user presets in insertion order.
// An empty type returns everything. Cross-tier content duplicates are
// permitted; a factory fetch failure degrades to an empty factory tier.
func (s *Service) ListForGeneratorType(ctx context.Context, generatorType string) (domain.List, error) {
	user, err := s.store.ListUserPresets(ctx, generatorType)
	if err != nil {
		return domain.List{}, err
	}

	var factory []domain.FactoryPreset
	for _, preset := range s.fetchFactory(ctx) {
		if generatorType != "" && preset.GeneratorType != generatorType {
			continue
		}
		factory = append(factory, preset)
	}

	return domain.List{Factory: factory, User: user}, nil
}
