package service

import (
	"context"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// SetUserDefault makes one preset the default for its generator type,
// atomically clearing the flag on every other preset of that type.
func (s *Service) SetUserDefault(ctx context.Context, presetID string) (domain.UserPreset, error) {
	preset, err := s.store.SetUserDefault(ctx, presetID)
	if err != nil {
		return domain.UserPreset{}, err
	}
	s.broadcast()
	return preset, nil
}

// ClearUserDefault drops the user default for a generator type.
func (s *Service) ClearUserDefault(ctx context.Context, generatorType string) error {
	if err := s.store.ClearUserDefault(ctx, generatorType); err != nil {
		return err
	}
	s.broadcast()
	return nil
}

// UserDefault returns the user-designated default for a generator type;
// found is false when none is assigned.
func (s *Service) UserDefault(ctx context.Context, generatorType string) (domain.UserPreset, bool, error) {
	return s.store.GetUserDefault(ctx, generatorType)
}

// EffectiveDefault resolves the default for a generator type by
// precedence: a user default wins, else the catalog's flagged factory
// default (fetched fresh), else none and the caller falls back to the
// generator's built-in values.
func (s *Service) EffectiveDefault(ctx context.Context, generatorType string) (domain.EffectiveDefault, error) {
	preset, found, err := s.store.GetUserDefault(ctx, generatorType)
	if err != nil {
		return domain.EffectiveDefault{}, err
	}
	if found {
		return domain.EffectiveDefault{Source: domain.DefaultSourceUser, User: &preset}, nil
	}

	for _, factory := range s.fetchFactory(ctx) {
		if factory.GeneratorType == generatorType && factory.IsDefault {
			return domain.EffectiveDefault{Source: domain.DefaultSourceFactory, Factory: &factory}, nil
		}
	}
	return domain.EffectiveDefault{Source: domain.DefaultSourceNone}, nil
}
