// Package httpapi exposes the preset service over a local JSON API,
// plus a WebSocket change feed and the embedded factory catalog.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumenfield/lumenfield/internal/preset/service"
)

// NewRouter wires every preset route onto a chi router.
func NewRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{svc: svc}

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/presets", h.savePreset)
		r.Get("/presets", h.listPresets)
		r.Get("/presets/export", h.exportPresets)
		r.Post("/presets/import", h.importPresets)
		r.Get("/presets/last-active", h.lastActivePreset)
		r.Get("/presets/{id}", h.loadPreset)
		r.Patch("/presets/{id}", h.renamePreset)
		r.Delete("/presets/{id}", h.deletePreset)

		r.Put("/generators/{type}/default", h.setDefault)
		r.Delete("/generators/{type}/default", h.clearDefault)
		r.Get("/generators/{type}/default", h.effectiveDefault)

		r.Get("/changes", h.handleChanges)
		r.Get("/catalog/factory-presets.json", h.factoryCatalog)
	})

	return r
}

type handler struct {
	svc *service.Service
}
