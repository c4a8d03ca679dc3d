// backofficectl herramientas de operación: migraciones de esquema y reglas de acceso.
//
// Uso:
//
//	backofficectl migrate up|down|status
//	backofficectl permissions seed|list|set
//
// La conexión se toma de DATABASE_URL / DB_* (igual que el API) o de --database-url.
package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const databaseURLFlag = "database-url"

var rootFlags = map[string]cobraflags.Flag{
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "DSN de PostgreSQL; vacío usa DATABASE_URL o DB_*",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Operación del back-office: migraciones y reglas de acceso",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobraflags.RegisterMap(root, rootFlags)
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newPermissionsCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
