package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/pkg/logger"
)

const migrationsSchemaSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// migrationLockID clave del advisory lock que evita dos migradores simultáneos.
const migrationLockID = 724_201_001

var migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration migración SQL versionada.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// MigrationStatus estado actual de las migraciones.
type MigrationStatus struct {
	CurrentVersion    int   `json:"current_version"`
	PendingMigrations []int `json:"pending_migrations"`
	TotalMigrations   int   `json:"total_migrations"`
	HasPendingChanges bool  `json:"has_pending_changes"`
}

// Beginner pool capaz de abrir transacciones (*pgxpool.Pool).
type Beginner interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrator aplica las migraciones embebidas, cada una en su propia transacción.
type Migrator struct {
	db         Beginner
	migrations []Migration
	log        *logger.Logger
}

// NewFSMigrator carga las migraciones de fsys (NNNN_descripcion.up.sql / .down.sql).
func NewFSMigrator(db Beginner, fsys fs.FS, log *logger.Logger) (*Migrator, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Migrator{db: db, migrations: migrations, log: log.Component("migrator")}, nil
}

// LoadMigrations lee y valida los pares up/down ordenados por versión.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	byVersion := map[int]*Migration{}
	for _, e := range entries {
		m := migrationFile.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", e.Name(), err)
		}
		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Description: m[2]}
			byVersion[version] = mig
		}
		if mig.Description != m[2] {
			return nil, fmt.Errorf("migración %d: descripciones distintas %q y %q", version, mig.Description, m[2])
		}
		if m[3] == "up" {
			mig.UpSQL = string(body)
		} else {
			mig.DownSQL = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.UpSQL == "" || mig.DownSQL == "" {
			return nil, fmt.Errorf("migración %d_%s incompleta: falta up o down", mig.Version, mig.Description)
		}
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Initialize crea la tabla schema_migrations si no existe.
func (m *Migrator) Initialize(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, migrationsSchemaSQL); err != nil {
		return fmt.Errorf("crear schema_migrations: %w", err)
	}
	return nil
}

// CurrentVersion última versión aplicada (0 si ninguna).
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.Initialize(ctx); err != nil {
		return 0, err
	}
	var v int
	if err := m.db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("leer versión actual: %w", err)
	}
	return v, nil
}

// Status versión actual y migraciones pendientes.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]int, 0)
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig.Version)
		}
	}
	return &MigrationStatus{
		CurrentVersion:    current,
		PendingMigrations: pending,
		TotalMigrations:   len(m.migrations),
		HasPendingChanges: len(pending) > 0,
	}, nil
}

// MigrateUp aplica las migraciones pendientes y devuelve cuántas aplicó.
func (m *Migrator) MigrateUp(ctx context.Context) (int, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		m.log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("aplicando migración")
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
				mig.Version, mig.Description)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migración %d_%s: %w", mig.Version, mig.Description, err)
		}
		applied++
	}
	return applied, nil
}

// MigrateDown revierte la última migración aplicada.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("no hay migraciones aplicadas")
	}
	for _, mig := range m.migrations {
		if mig.Version != current {
			continue
		}
		m.log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("revirtiendo migración")
		return m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.DownSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
			return err
		})
	}
	return fmt.Errorf("versión aplicada %d no existe en las migraciones embebidas", current)
}

func (m *Migrator) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
