// Package service implements preset operations on top of the store, the
// factory catalog, and the change hub. Every mutation broadcasts a
// payload-free change signal after it commits.
package service

import (
	"context"
	"time"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/platform/id"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
	"github.com/lumenfield/lumenfield/internal/preset/notify"
	"github.com/lumenfield/lumenfield/internal/preset/storage"
)

// Catalog supplies the curated factory tier. Fetch degrades to an empty
// slice on any failure.
type Catalog interface {
	Fetch(ctx context.Context) []domain.FactoryPreset
}

// Service coordinates preset persistence, catalog reads, and change
// notification.
type Service struct {
	store    storage.Store
	catalog  Catalog
	notifier *notify.Hub

	now   func() time.Time
	newID func() (string, error)
}

// New creates a Service. The catalog and notifier may be nil; a nil
// catalog behaves as an empty factory tier.
func New(store storage.Store, catalog Catalog, notifier *notify.Hub) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		now:      time.Now,
		newID:    id.NewID,
	}
}

// Save validates input, constructs a preset, and persists it. Content
// and name collisions within the generator type abort with no mutation.
func (s *Service) Save(ctx context.Context, input domain.NewUserPresetInput) (domain.UserPreset, error) {
	preset, err := domain.NewUserPreset(input, s.now, s.newID)
	if err != nil {
		return domain.UserPreset{}, err
	}
	if err := s.store.CreateUserPreset(ctx, preset); err != nil {
		return domain.UserPreset{}, err
	}
	s.broadcast()
	return preset, nil
}

// Get returns one user preset without touching the last-active scalar.
func (s *Service) Get(ctx context.Context, presetID string) (domain.UserPreset, error) {
	return s.store.GetUserPreset(ctx, presetID)
}

// Load returns one user preset and records it as the last-active preset.
// Recording is a mutation, so a change signal follows.
func (s *Service) Load(ctx context.Context, presetID string) (domain.UserPreset, error) {
	preset, err := s.store.GetUserPreset(ctx, presetID)
	if err != nil {
		return domain.UserPreset{}, err
	}
	if err := s.store.SetLastActivePresetID(ctx, preset.ID); err != nil {
		return domain.UserPreset{}, err
	}
	s.broadcast()
	return preset, nil
}

// Rename changes a preset's name, rejecting collisions with another
// preset of the same generator type.
func (s *Service) Rename(ctx context.Context, presetID, newName string) (domain.UserPreset, error) {
	preset, err := s.store.RenameUserPreset(ctx, presetID, newName)
	if err != nil {
		return domain.UserPreset{}, err
	}
	s.broadcast()
	return preset, nil
}

// Delete removes one preset. Dependent state (the last-active reference,
// a default flag) is not cascaded; consumers re-read on the change
// signal.
func (s *Service) Delete(ctx context.Context, presetID string) error {
	found, err := s.store.DeleteUserPreset(ctx, presetID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.Newf(apperrors.CodePresetNotFound, "preset %q not found", presetID).
			WithMetadata(map[string]string{"id": presetID})
	}
	s.broadcast()
	return nil
}

// LastActivePresetID returns the recorded last-active preset id, empty
// when none has been recorded. The id may point at a deleted preset.
func (s *Service) LastActivePresetID(ctx context.Context) (string, error) {
	return s.store.LastActivePresetID(ctx)
}

// Subscribe registers a change listener on the service's hub.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	return s.notifier.Subscribe()
}

func (s *Service) broadcast() {
	if s.notifier != nil {
		s.notifier.Broadcast()
	}
}

func (s *Service) fetchFactory(ctx context.Context) []domain.FactoryPreset {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Fetch(ctx)
}
