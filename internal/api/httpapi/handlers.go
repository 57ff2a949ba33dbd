package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/preset/catalog"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// maxImportBytes bounds import payloads; envelopes are small JSON
// documents and anything larger is a client mistake.
const maxImportBytes = 4 << 20

type errorResponse struct {
	Code     apperrors.Code    `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Code:     apperrors.GetCode(err),
		Message:  err.Error(),
		Metadata: apperrors.GetMetadata(err),
	}
	respondJSON(w, apperrors.HTTPStatus(err), resp)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type savePresetRequest struct {
	Name          string         `json:"name"`
	GeneratorType string         `json:"generatorType"`
	Parameters    map[string]any `json:"parameters"`
	Description   string         `json:"description,omitempty"`
}

func (h *handler) savePreset(w http.ResponseWriter, r *http.Request) {
	var req savePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(apperrors.CodePresetParametersInvalid, "request body is not valid JSON", err))
		return
	}
	params, err := domain.ParamsOf(req.Parameters)
	if err != nil {
		respondError(w, err)
		return
	}

	preset, err := h.svc.Save(r.Context(), domain.NewUserPresetInput{
		Name:          req.Name,
		GeneratorType: req.GeneratorType,
		Parameters:    params,
		Description:   req.Description,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, preset)
}

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListForGeneratorType(r.Context(), r.URL.Query().Get("generatorType"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// loadPreset returns one preset and records it as last-active; use the
// list endpoint for passive reads.
func (h *handler) loadPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := h.svc.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

type renamePresetRequest struct {
	Name string `json:"name"`
}

func (h *handler) renamePreset(w http.ResponseWriter, r *http.Request) {
	var req renamePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(apperrors.CodePresetParametersInvalid, "request body is not valid JSON", err))
		return
	}
	preset, err := h.svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) exportPresets(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	envelope, err := h.svc.ExportSelection(r.Context(), ids)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="presets.json"`)
	respondJSON(w, http.StatusOK, envelope)
}

func (h *handler) importPresets(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		respondError(w, apperrors.Wrap(apperrors.CodeImportPayloadMalformed, "read import payload", err))
		return
	}
	summary, err := h.svc.ImportEnvelope(r.Context(), payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *handler) lastActivePreset(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.LastActivePresetID(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

type setDefaultRequest struct {
	ID string `json:"id"`
}

func (h *handler) setDefault(w http.ResponseWriter, r *http.Request) {
	var req setDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(apperrors.CodePresetParametersInvalid, "request body is not valid JSON", err))
		return
	}

	generatorType := chi.URLParam(r, "type")
	target, err := h.svc.Get(r.Context(), req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	if target.GeneratorType != generatorType {
		respondError(w, apperrors.Newf(apperrors.CodePresetNotFound,
			"preset %q belongs to generator %q, not %q", req.ID, target.GeneratorType, generatorType))
		return
	}

	preset, err := h.svc.SetUserDefault(r.Context(), req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

func (h *handler) clearDefault(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearUserDefault(r.Context(), chi.URLParam(r, "type")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) effectiveDefault(w http.ResponseWriter, r *http.Request) {
	effective, err := h.svc.EffectiveDefault(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, effective)
}

func (h *handler) factoryCatalog(w http.ResponseWriter, r *http.Request) {
	body, err := catalog.EmbeddedJSON()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
