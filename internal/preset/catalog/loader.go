package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

const defaultFetchTimeout = 10 * time.Second

// Loader fetches the factory catalog from its fixed URL. It holds no
// cache: every call re-fetches, so curated updates appear on the next
// read without a restart.
type Loader struct {
	url    string
	client *http.Client
}

// NewLoader creates a Loader for the given catalog URL. A nil client gets
// a default with a bounded timeout.
func NewLoader(url string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Loader{url: url, client: client}
}

// Fetch returns the normalized factory tier. Any failure — no URL
// configured, transport error, bad status, malformed body — yields an
// empty list: user content must stay available without the catalog.
func (l *Loader) Fetch(ctx context.Context) []domain.FactoryPreset {
	if l == nil || l.url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		log.Printf("catalog: build request: %v", err)
		return nil
	}
	resp, err := l.client.Do(req)
	if err != nil {
		log.Printf("catalog: fetch %s: %v", l.url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("catalog: fetch %s: unexpected status %d", l.url, resp.StatusCode)
		return nil
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		log.Printf("catalog: decode %s: %v", l.url, err)
		return nil
	}
	return Normalize(doc)
}
