package presetctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
	"github.com/lumenfield/lumenfield/internal/preset/service"
)

// client speaks the preset server's JSON API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(addr string) *client {
	return &client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) list(ctx context.Context, generatorType string) (domain.List, error) {
	path := "/api/presets"
	if generatorType != "" {
		path += "?generatorType=" + generatorType
	}
	var list domain.List
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

func (c *client) export(ctx context.Context, ids []string) (json.RawMessage, error) {
	path := "/api/presets/export"
	if len(ids) > 0 {
		path += "?ids=" + strings.Join(ids, ",")
	}
	var envelope json.RawMessage
	err := c.do(ctx, http.MethodGet, path, nil, &envelope)
	return envelope, err
}

func (c *client) importEnvelope(ctx context.Context, payload []byte) (service.ImportSummary, error) {
	var summary service.ImportSummary
	err := c.do(ctx, http.MethodPost, "/api/presets/import", json.RawMessage(payload), &summary)
	return summary, err
}

func (c *client) setDefault(ctx context.Context, generatorType, presetID string) (domain.UserPreset, error) {
	var preset domain.UserPreset
	err := c.do(ctx, http.MethodPut, "/api/generators/"+generatorType+"/default",
		map[string]string{"id": presetID}, &preset)
	return preset, err
}

func (c *client) clearDefault(ctx context.Context, generatorType string) error {
	return c.do(ctx, http.MethodDelete, "/api/generators/"+generatorType+"/default", nil, nil)
}

func (c *client) effectiveDefault(ctx context.Context, generatorType string) (domain.EffectiveDefault, error) {
	var effective domain.EffectiveDefault
	err := c.do(ctx, http.MethodGet, "/api/generators/"+generatorType+"/default", nil, &effective)
	return effective, err
}

func (c *client) lastActive(ctx context.Context) (string, error) {
	var out map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/presets/last-active", nil, &out); err != nil {
		return "", err
	}
	return out["id"], nil
}
