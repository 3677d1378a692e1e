// Package schema publishes JSON schemas for configuration blocks so editors
// can validate YAML files through yaml-language-server.
package schema

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema converts a struct to an inline JSON schema, without $defs.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// WriteFile writes schemaJSON to path, creating parent directories.
func WriteFile(path string, schemaJSON string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(schemaJSON), 0644)
}

// LanguageServerHeader is the comment that points yaml-language-server at schemaName.
func LanguageServerHeader(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}
