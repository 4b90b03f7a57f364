// Package migrations embute o schema SQL das tabelas KV usadas pelo backend
// Postgres e pelo escutactl migrate.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var Files embed.FS

const schemaFile = "kv_schema.sql"

// Schema devolve o DDL idempotente das tabelas KV.
func Schema() (string, error) {
	b, err := Files.ReadFile(schemaFile)
	if err != nil {
		return "", fmt.Errorf("read embedded %s: %w", schemaFile, err)
	}
	return string(b), nil
}
