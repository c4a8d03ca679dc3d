package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar, revertir o consultar las migraciones embebidas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplicar todas las migraciones pendientes",
		RunE:  migrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revertir la última migración aplicada",
		RunE:  migrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Mostrar versión actual y migraciones pendientes",
		RunE:  migrateStatus,
	})
	return cmd
}

func newMigrator(cmd *cobra.Command) (*postgres.Migrator, func(), error) {
	pool, _, log, err := connect(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	m, err := postgres.NewFSMigrator(pool, migrations.FS, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return m, pool.Close, nil
}

func migrateUp(cmd *cobra.Command, _ []string) error {
	m, closeFn, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := m.MigrateUp(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migraciones aplicadas: %d\n", n)
	return nil
}

func migrateDown(cmd *cobra.Command, _ []string) error {
	m, closeFn, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.MigrateDown(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "última migración revertida")
	return nil
}

func migrateStatus(cmd *cobra.Command, _ []string) error {
	m, closeFn, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "versión actual:  %d\n", st.CurrentVersion)
	fmt.Fprintf(out, "total:           %d\n", st.TotalMigrations)
	if !st.HasPendingChanges {
		fmt.Fprintln(out, "sin migraciones pendientes")
		return nil
	}
	fmt.Fprintf(out, "pendientes:      %v\n", st.PendingMigrations)
	return nil
}
