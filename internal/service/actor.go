package service

import (
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as the services see it: the usuario UUID
// and the role from the token. Every capability and visibility decision is a
// function of these two values.
type Actor struct {
	ID  uuid.UUID
	Rol rbac.Rol
}
