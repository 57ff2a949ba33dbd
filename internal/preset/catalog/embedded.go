package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The curated set ships with the server and is authored in YAML; the
// loader consumes the JSON rendition served at the catalog endpoint.
//
//go:embed catalog.yaml
var embeddedCatalog []byte

// Embedded parses the curated catalog document shipped with the binary.
func Embedded() (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(embeddedCatalog, &doc); err != nil {
		return Document{}, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return doc, nil
}

// EmbeddedJSON renders the curated catalog as the JSON document the
// loader fetches.
func EmbeddedJSON() ([]byte, error) {
	doc, err := Embedded()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode embedded catalog: %w", err)
	}
	return data, nil
}
