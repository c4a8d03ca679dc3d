// Package migrations contiene el esquema SQL versionado del back-office.
// Archivos: NNNN_descripcion.up.sql y NNNN_descripcion.down.sql.
package migrations

import "embed"

// FS migraciones embebidas en el binario.
//
//go:embed *.sql
var FS embed.FS
