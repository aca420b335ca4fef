// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Roles known to the lead pipeline.
const (
	RoleManager    = "manager"
	RoleTelecaller = "telecaller"
)

// Scope is the caller context passed explicitly into every lead operation.
// ManagerID partitions all lead data; for a manager it equals CallerID.
type Scope struct {
	CallerID  uuid.UUID
	ManagerID uuid.UUID
	Role      string
}

// IsManager reports whether the caller acts as the scope's manager.
func (s Scope) IsManager() bool {
	return s.Role == RoleManager
}

// GetScope extracts the Scope placed on the context by AuthRequired.
func GetScope(c *gin.Context) (Scope, bool) {
	raw, ok := c.Get(ContextScopeKey)
	if !ok {
		return Scope{}, false
	}
	scope, ok := raw.(Scope)
	if !ok || scope.CallerID == uuid.Nil || scope.ManagerID == uuid.Nil {
		return Scope{}, false
	}
	return scope, true
}

// MustGetScope extracts the Scope from a Gin context.
// If it is missing, it aborts with 401 Unauthorized and returns false.
func MustGetScope(c *gin.Context) (Scope, bool) {
	scope, ok := GetScope(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return Scope{}, false
	}
	return scope, true
}

func scopeFromClaims(callerID uuid.UUID, role string, managerID *uuid.UUID) (Scope, bool) {
	switch role {
	case RoleManager:
		return Scope{CallerID: callerID, ManagerID: callerID, Role: role}, true
	case RoleTelecaller:
		if managerID == nil {
			return Scope{}, false
		}
		return Scope{CallerID: callerID, ManagerID: *managerID, Role: role}, true
	default:
		return Scope{}, false
	}
}
