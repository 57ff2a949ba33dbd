package presetctl

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumenfield/lumenfield/internal/api/httpapi"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
	"github.com/lumenfield/lumenfield/internal/preset/notify"
	"github.com/lumenfield/lumenfield/internal/preset/service"
	"github.com/lumenfield/lumenfield/internal/preset/storage/sqlite"
)

func newTestBackend(t *testing.T) (*httptest.Server, *service.Service) {
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
	svc := service.New(store, nil, notify.NewHub())
	srv := httptest.NewServer(httpapi.NewRouter(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

func runCommand(t *testing.T, addr string, args ...string) string {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--addr", addr))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("presetctl %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func savePreset(t *testing.T, svc *service.Service, name string, pixelSize float64) domain.UserPreset {
	t.Helper()
	preset, err := svc.Save(context.Background(), domain.NewUserPresetInput{
		Name:          name,
		GeneratorType: "pixelated-noise",
		Parameters:    domain.Params{"pixelSize": domain.Number(pixelSize)},
	})
	if err != nil {
		t.Fatalf("Save(%q) error = %v", name, err)
	}
	return preset
}

func TestListShowsUserPresets(t *testing.T) {
	t.Parallel()

	srv, svc := newTestBackend(t)
	savePreset(t, svc, "Cosmic Storm", 8)

	out := runCommand(t, srv.URL, "list")
	if !strings.Contains(out, "Cosmic Storm") {
		t.Fatalf("list output %q does not include the saved preset", out)
	}
	if !strings.Contains(out, "TIER") {
		t.Fatalf("list output %q missing header", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	source, sourceSvc := newTestBackend(t)
	savePreset(t, sourceSvc, "Traveler", 6)

	envelope := runCommand(t, source.URL, "export")
	if !strings.Contains(envelope, "Traveler") {
		t.Fatalf("export output %q missing preset", envelope)
	}

	dest, destSvc := newTestBackend(t)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(envelope))
	cmd.SetArgs([]string{"import", "-", "--addr", dest.URL})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("presetctl import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1 preset(s)") {
		t.Fatalf("import output = %q, want one imported preset", out.String())
	}

	list, err := destSvc.ListForGeneratorType(context.Background(), "pixelated-noise")
	if err != nil {
		t.Fatalf("ListForGeneratorType() error = %v", err)
	}
	if len(list.User) != 1 || list.User[0].Name != "Traveler" {
		t.Fatalf("destination presets = %+v, want Traveler", list.User)
	}
}

func TestDefaultLifecycleCommands(t *testing.T) {
	t.Parallel()

	srv, svc := newTestBackend(t)
	preset := savePreset(t, svc, "Favorite", 3)

	out := runCommand(t, srv.URL, "set-default", "pixelated-noise", preset.ID)
	if !strings.Contains(out, "Favorite") {
		t.Fatalf("set-default output = %q", out)
	}

	out = runCommand(t, srv.URL, "effective-default", "pixelated-noise")
	if !strings.Contains(out, "user") || !strings.Contains(out, "Favorite") {
		t.Fatalf("effective-default output = %q, want user default Favorite", out)
	}

	runCommand(t, srv.URL, "clear-default", "pixelated-noise")
	out = runCommand(t, srv.URL, "effective-default", "pixelated-noise")
	if !strings.Contains(out, "none") {
		t.Fatalf("effective-default output = %q after clear, want none", out)
	}
}

func TestLastActiveReportsNoneWhenUnset(t *testing.T) {
	t.Parallel()

	srv, _ := newTestBackend(t)
	out := runCommand(t, srv.URL, "last-active")
	if strings.TrimSpace(out) != "none" {
		t.Fatalf("last-active output = %q, want none", out)
	}
}

func TestCommandsSurfaceServerErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestBackend(t)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"set-default", "pixelated-noise", "no-such-id", "--addr", srv.URL})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown preset id")
	}
}
