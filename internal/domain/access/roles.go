// Package access contiene la jerarquía de roles y el catálogo de páginas y acciones.
// Es lógica pura: no conoce la base de datos ni HTTP.
package access

import "strings"

// Role identificador de rol de un usuario del back-office.
type Role string

// Roles válidos, de menor a mayor privilegio.
const (
	RoleStaff             Role = "staff"
	RoleFinanceManager    Role = "finance_manager"
	RoleOperationsManager Role = "operations_manager"
	RoleMD                Role = "md"
	RoleAdmin             Role = "admin"
)

// LevelNone es el nivel de un rol desconocido: falla cualquier chequeo de nivel mínimo.
const LevelNone = 0

// LevelDenied es un nivel requerido que ningún rol alcanza (política "deny").
const LevelDenied = 1 << 30

var roleLevels = map[Role]int{
	RoleStaff:             1,
	RoleFinanceManager:    2,
	RoleOperationsManager: 3,
	RoleMD:                4,
	RoleAdmin:             5,
}

var ordered = []Role{RoleStaff, RoleFinanceManager, RoleOperationsManager, RoleMD, RoleAdmin}

// LevelOf devuelve el nivel del rol (insensible a mayúsculas). Desconocido -> LevelNone.
func LevelOf(role string) int {
	r, ok := ParseRole(role)
	if !ok {
		return LevelNone
	}
	return roleLevels[r]
}

// ParseRole normaliza y valida un rol.
func ParseRole(role string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	_, ok := roleLevels[r]
	return r, ok
}

// Level nivel del rol; LevelNone si no es válido.
func (r Role) Level() int {
	return LevelOf(string(r))
}

// Roles devuelve los roles en orden ascendente de privilegio.
func Roles() []Role {
	out := make([]Role, len(ordered))
	copy(out, ordered)
	return out
}

// RoleForLevel devuelve el rol con el nivel exacto indicado.
func RoleForLevel(level int) (Role, bool) {
	for _, r := range ordered {
		if roleLevels[r] == level {
			return r, true
		}
	}
	return "", false
}

// LowestRole rol por defecto de las reglas creadas sin min_role.
func LowestRole() Role { return RoleStaff }
