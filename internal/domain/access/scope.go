package access

import (
	"strings"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// Roles conocidos. Los globales ven y operan sobre todas las sucursales.
const (
	RoleSuperAdmin    = "SUPER_ADMIN"
	RoleManagement    = "MANAGEMENT"
	RoleBranchManager = "BRANCH_MANAGER"
	RoleCenterManager = "CENTER_MANAGER"
	RoleTechnician    = "TECHNICIAN"
	RoleAccountant    = "ACCOUNTANT"
)

var globalRoles = map[string]struct{}{
	RoleSuperAdmin: {},
	RoleManagement: {},
}

// SetGlobalRoles reemplaza la lista de roles con alcance global (config MAINTENANCE_GLOBAL_ROLES).
// Se llama una sola vez al arrancar.
func SetGlobalRoles(roles []string) {
	m := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r != "" {
			m[r] = struct{}{}
		}
	}
	if len(m) > 0 {
		globalRoles = m
	}
}

// IsGlobalScope es el único predicado de capacidad: ¿el rol opera sobre todas las sucursales?
func IsGlobalScope(role string) bool {
	_, ok := globalRoles[strings.ToUpper(role)]
	return ok
}

// Actor es el usuario que ejecuta la operación, ya autenticado por el colaborador.
type Actor struct {
	UserID   string
	BranchID string
	Role     string
}

// Scope devuelve el alcance de datos del actor.
func (a Actor) Scope() Scope {
	if IsGlobalScope(a.Role) {
		return GlobalScope()
	}
	return BranchScope(a.BranchID)
}

// Scope acota cada acceso a datos: una sucursal o todas.
type Scope struct {
	branchID string
	global   bool
}

// BranchScope limita a una sucursal.
func BranchScope(branchID string) Scope { return Scope{branchID: branchID} }

// GlobalScope no filtra por sucursal.
func GlobalScope() Scope { return Scope{global: true} }

// IsGlobal indica si el alcance cubre todas las sucursales.
func (s Scope) IsGlobal() bool { return s.global }

// BranchID devuelve la sucursal del alcance ("" si es global).
func (s Scope) BranchID() string { return s.branchID }

// Allows es true si el alcance es global o alguna de las sucursales es la del alcance.
func (s Scope) Allows(branchIDs ...string) bool {
	if s.global {
		return true
	}
	if s.branchID == "" {
		return false
	}
	for _, id := range branchIDs {
		if id == s.branchID {
			return true
		}
	}
	return false
}

// Require devuelve ErrForbidden si el alcance no cubre ninguna de las sucursales.
func (s Scope) Require(branchIDs ...string) error {
	if s.Allows(branchIDs...) {
		return nil
	}
	return domain.Forbidden("operación fuera del alcance de la sucursal")
}
