// Package errors provides structured, code-tagged error handling for the
// preset service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Preset validation errors
	CodePresetNameEmpty          Code = "PRESET_NAME_EMPTY"
	CodePresetGeneratorTypeEmpty Code = "PRESET_GENERATOR_TYPE_EMPTY"
	CodePresetParametersInvalid  Code = "PRESET_PARAMETERS_INVALID"

	// Preset collision errors
	CodePresetDuplicateContent Code = "PRESET_DUPLICATE_CONTENT"
	CodePresetDuplicateName    Code = "PRESET_DUPLICATE_NAME"

	// Storage errors
	CodePresetNotFound Code = "PRESET_NOT_FOUND"

	// Import/export errors
	CodeImportPayloadMalformed Code = "IMPORT_PAYLOAD_MALFORMED"

	// Catalog errors
	CodeCatalogUnavailable Code = "CATALOG_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes for API responses.
func (c Code) HTTPStatus() int {
	switch c {
	case CodePresetNameEmpty,
		CodePresetGeneratorTypeEmpty,
		CodePresetParametersInvalid,
		CodeImportPayloadMalformed:
		return http.StatusBadRequest
	case CodePresetDuplicateContent,
		CodePresetDuplicateName:
		return http.StatusConflict
	case CodePresetNotFound:
		return http.StatusNotFound
	case CodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
