package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
)

const (
	kindFlag = "kind"
	keyFlag  = "key"
	roleFlag = "role"
)

var listFlags = map[string]cobraflags.Flag{
	kindFlag: &cobraflags.StringFlag{
		Name:  kindFlag,
		Value: "page",
		Usage: "Tipo de recurso: page o action",
	},
}

var setFlags = map[string]cobraflags.Flag{
	kindFlag: &cobraflags.StringFlag{
		Name:  kindFlag,
		Value: "page",
		Usage: "Tipo de recurso: page o action",
	},
	keyFlag: &cobraflags.StringFlag{
		Name:  keyFlag,
		Value: "",
		Usage: "Clave de la página o acción (obligatoria)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: "",
		Usage: "Rol mínimo; vacío: staff al crear, sin cambio al actualizar",
	},
}

func newPermissionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Administrar las reglas página/acción -> rol mínimo",
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Instalar el catálogo incorporado sin sobrescribir reglas existentes",
		RunE:  permissionsSeed,
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar las reglas configuradas",
		RunE:  permissionsList,
	}
	cobraflags.RegisterMap(listCmd, listFlags)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Crear o actualizar una regla",
		RunE:  permissionsSet,
	}
	cobraflags.RegisterMap(setCmd, setFlags)

	cmd.AddCommand(seedCmd, listCmd, setCmd)
	return cmd
}

func newRegistry(cmd *cobra.Command) (*appaccess.PermissionRegistry, func(), error) {
	pool, cfg, _, err := connect(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	reg, err := appaccess.NewPermissionRegistry(postgres.NewPermissionRepository(pool), appaccess.DefaultPolicy{
		Page:   cfg.Access.PageDefault,
		Action: cfg.Access.ActionDefault,
	})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return reg, pool.Close, nil
}

func parseKindFlag(raw string) (access.ResourceKind, error) {
	kind, ok := access.ParseKind(raw)
	if !ok {
		return "", fmt.Errorf("--%s debe ser page o action, recibido %q", kindFlag, raw)
	}
	return kind, nil
}

func permissionsSeed(cmd *cobra.Command, _ []string) error {
	reg, closeFn, err := newRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := reg.Seed(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reglas insertadas: %d (catálogo: %d)\n", n, len(access.Catalog()))
	return nil
}

func permissionsList(cmd *cobra.Command, _ []string) error {
	kind, err := parseKindFlag(listFlags[kindFlag].GetString())
	if err != nil {
		return err
	}
	reg, closeFn, err := newRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	rules, err := reg.List(cmd.Context(), kind)
	if err != nil {
		return err
	}
	return printRules(cmd.OutOrStdout(), rules)
}

func permissionsSet(cmd *cobra.Command, _ []string) error {
	kind, err := parseKindFlag(setFlags[kindFlag].GetString())
	if err != nil {
		return err
	}
	key := setFlags[keyFlag].GetString()
	if key == "" {
		return fmt.Errorf("--%s es obligatorio", keyFlag)
	}
	reg, closeFn, err := newRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	rule, created, err := reg.Upsert(cmd.Context(), kind, key, setFlags[roleFlag].GetString())
	if err != nil {
		return err
	}
	verb := "actualizada"
	if created {
		verb = "creada"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "regla %s: %s %s -> %s\n", verb, rule.Kind, rule.Key, rule.MinRole)
	return nil
}

func printRules(w io.Writer, rules []*entity.PermissionRule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tKEY\tMIN_ROLE\tLEVEL\tUPDATED_AT")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Kind, r.Key, r.MinRole, r.MinRole.Level(), r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
