package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
	"github.com/lumenfield/lumenfield/internal/preset/notify"
	"github.com/lumenfield/lumenfield/internal/preset/storage/sqlite"
)

type stubCatalog struct {
	presets []domain.FactoryPreset
}

func (c stubCatalog) Fetch(ctx context.Context) []domain.FactoryPreset {
	return c.presets
}

func newTestService(t *testing.T, catalog Catalog) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("open temp store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return New(store, catalog, notify.NewHub())
}

func noiseParams(size, intensity float64) domain.Params {
	return domain.Params{
		"pixelSize":      domain.Number(size),
		"colorIntensity": domain.Number(intensity),
	}
}

func factoryPreset(name, generatorType string, isDefault bool, params domain.Params) domain.FactoryPreset {
	hash := domain.ContentHash(generatorType, params)
	return domain.FactoryPreset{
		Core: domain.Core{
			ID:            "factory-" + hash,
			Name:          name,
			GeneratorType: generatorType,
			Parameters:    params,
			ContentHash:   hash,
		},
		IsDefault: isDefault,
	}
}

func drainSignal(t *testing.T, ch <-chan struct{}, want bool) {
	t.Helper()
	select {
	case <-ch:
		if !want {
			t.Fatal("received a change signal, want none")
		}
	case <-time.After(100 * time.Millisecond):
		if want {
			t.Fatal("no change signal received")
		}
	}
}

func TestSaveBroadcastsAndPersists(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()
	signals, cancel := svc.Subscribe()
	defer cancel()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Cosmic Storm",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(8, 0.7),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	drainSignal(t, signals, true)

	got, err := svc.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Cosmic Storm" || got.ContentHash != saved.ContentHash {
		t.Fatalf("Get() = %+v, want saved preset back", got)
	}
}

func TestSaveDuplicateContentNamesExistingPreset(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Cosmic Storm",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(8, 0.7),
	}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	_, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Digital Rain",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(8, 0.7),
	})
	if !apperrors.IsCode(err, apperrors.CodePresetDuplicateContent) {
		t.Fatalf("Save() error = %v, want code %s", err, apperrors.CodePresetDuplicateContent)
	}
	if meta := apperrors.GetMetadata(err); meta["existingName"] != "Cosmic Storm" {
		t.Fatalf("metadata = %v, want existingName %q", meta, "Cosmic Storm")
	}
}

func TestLoadRecordsLastActiveAndBroadcasts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Gentle Current",
		GeneratorType: "flow-field",
		Parameters:    domain.Params{"speed": domain.Number(0.6)},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	signals, cancel := svc.Subscribe()
	defer cancel()

	if _, err := svc.Load(ctx, saved.ID); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	drainSignal(t, signals, true)

	lastActive, err := svc.LastActivePresetID(ctx)
	if err != nil {
		t.Fatalf("LastActivePresetID() error = %v", err)
	}
	if lastActive != saved.ID {
		t.Fatalf("LastActivePresetID() = %q, want %q", lastActive, saved.ID)
	}
}

func TestGetDoesNotBroadcastOrTouchLastActive(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Quiet Read",
		GeneratorType: "flow-field",
		Parameters:    domain.Params{"speed": domain.Number(1)},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	signals, cancel := svc.Subscribe()
	defer cancel()

	if _, err := svc.Get(ctx, saved.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	drainSignal(t, signals, false)

	lastActive, err := svc.LastActivePresetID(ctx)
	if err != nil {
		t.Fatalf("LastActivePresetID() error = %v", err)
	}
	if lastActive != "" {
		t.Fatalf("LastActivePresetID() = %q, want empty", lastActive)
	}
}

func TestDeleteMissingPresetReturnsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	err := svc.Delete(context.Background(), "no-such-id")
	if !apperrors.IsCode(err, apperrors.CodePresetNotFound) {
		t.Fatalf("Delete() error = %v, want code %s", err, apperrors.CodePresetNotFound)
	}
}

func TestRenameBroadcasts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Before",
		GeneratorType: "wave-interference",
		Parameters:    domain.Params{"sourceCount": domain.Number(2)},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	signals, cancel := svc.Subscribe()
	defer cancel()

	renamed, err := svc.Rename(ctx, saved.ID, "After")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if renamed.Name != "After" {
		t.Fatalf("Rename() name = %q, want %q", renamed.Name, "After")
	}
	drainSignal(t, signals, true)
}

func TestListForGeneratorTypeMergesFactoryThenUser(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Classic Static", "pixelated-noise", true, noiseParams(8, 0.75)),
		factoryPreset("Gentle Current", "flow-field", true, domain.Params{"speed": domain.Number(0.6)}),
	}}
	svc := newTestService(t, catalog)
	ctx := context.Background()

	first, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Mine First",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(4, 0.5),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Mine Second",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(16, 0.9),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, err := svc.ListForGeneratorType(ctx, "pixelated-noise")
	if err != nil {
		t.Fatalf("ListForGeneratorType() error = %v", err)
	}
	if len(list.Factory) != 1 || list.Factory[0].Name != "Classic Static" {
		t.Fatalf("Factory tier = %+v, want only Classic Static", list.Factory)
	}
	if len(list.User) != 2 || list.User[0].ID != first.ID || list.User[1].ID != second.ID {
		t.Fatalf("User tier = %+v, want insertion order [%s %s]", list.User, first.ID, second.ID)
	}
}

func TestListForGeneratorTypeAllowsCrossTierContentDuplicate(t *testing.T) {
	t.Parallel()

	params := noiseParams(8, 0.75)
	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Classic Static", "pixelated-noise", false, params),
	}}
	svc := newTestService(t, catalog)
	ctx := context.Background()

	if _, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "My Static",
		GeneratorType: "pixelated-noise",
		Parameters:    params,
	}); err != nil {
		t.Fatalf("Save() error = %v, want cross-tier duplicate to be permitted", err)
	}

	list, err := svc.ListForGeneratorType(ctx, "pixelated-noise")
	if err != nil {
		t.Fatalf("ListForGeneratorType() error = %v", err)
	}
	if len(list.Factory) != 1 || len(list.User) != 1 {
		t.Fatalf("tiers = %d factory / %d user, want 1/1", len(list.Factory), len(list.User))
	}
	if list.Factory[0].ContentHash != list.User[0].ContentHash {
		t.Fatal("expected both tiers to share the content hash")
	}
}

func TestEffectiveDefaultPrefersUserOverFactory(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Classic Static", "pixelated-noise", true, noiseParams(8, 0.75)),
	}}
	svc := newTestService(t, catalog)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "My Favorite",
		GeneratorType: "pixelated-noise",
		Parameters:    noiseParams(4, 0.5),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := svc.SetUserDefault(ctx, saved.ID); err != nil {
		t.Fatalf("SetUserDefault() error = %v", err)
	}

	effective, err := svc.EffectiveDefault(ctx, "pixelated-noise")
	if err != nil {
		t.Fatalf("EffectiveDefault() error = %v", err)
	}
	if effective.Source != domain.DefaultSourceUser {
		t.Fatalf("Source = %q, want %q", effective.Source, domain.DefaultSourceUser)
	}
	if effective.User == nil || effective.User.ID != saved.ID {
		t.Fatalf("User = %+v, want preset %s", effective.User, saved.ID)
	}
}

func TestEffectiveDefaultFallsBackToFactory(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Classic Static", "pixelated-noise", true, noiseParams(8, 0.75)),
		factoryPreset("Soft Grain", "pixelated-noise", false, noiseParams(2, 0.35)),
	}}
	svc := newTestService(t, catalog)

	effective, err := svc.EffectiveDefault(context.Background(), "pixelated-noise")
	if err != nil {
		t.Fatalf("EffectiveDefault() error = %v", err)
	}
	if effective.Source != domain.DefaultSourceFactory {
		t.Fatalf("Source = %q, want %q", effective.Source, domain.DefaultSourceFactory)
	}
	if effective.Factory == nil || effective.Factory.Name != "Classic Static" {
		t.Fatalf("Factory = %+v, want Classic Static", effective.Factory)
	}
}

func TestEffectiveDefaultNoneWhenNeitherTierHasOne(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Ember Drift", "particle-drift", false, domain.Params{"gravity": domain.Number(-0.02)}),
	}}
	svc := newTestService(t, catalog)

	effective, err := svc.EffectiveDefault(context.Background(), "particle-drift")
	if err != nil {
		t.Fatalf("EffectiveDefault() error = %v", err)
	}
	if effective.Source != domain.DefaultSourceNone {
		t.Fatalf("Source = %q, want %q", effective.Source, domain.DefaultSourceNone)
	}
	if effective.User != nil || effective.Factory != nil {
		t.Fatalf("effective = %+v, want no preset attached", effective)
	}
}

func TestClearUserDefaultRestoresFactoryPrecedence(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{presets: []domain.FactoryPreset{
		factoryPreset("Twin Ripples", "wave-interference", true, domain.Params{"sourceCount": domain.Number(2)}),
	}}
	svc := newTestService(t, catalog)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.NewUserPresetInput{
		Name:          "Custom Waves",
		GeneratorType: "wave-interference",
		Parameters:    domain.Params{"sourceCount": domain.Number(7)},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := svc.SetUserDefault(ctx, saved.ID); err != nil {
		t.Fatalf("SetUserDefault() error = %v", err)
	}
	if err := svc.ClearUserDefault(ctx, "wave-interference"); err != nil {
		t.Fatalf("ClearUserDefault() error = %v", err)
	}

	effective, err := svc.EffectiveDefault(ctx, "wave-interference")
	if err != nil {
		t.Fatalf("EffectiveDefault() error = %v", err)
	}
	if effective.Source != domain.DefaultSourceFactory {
		t.Fatalf("Source = %q, want %q after clearing user default", effective.Source, domain.DefaultSourceFactory)
	}
}
