package service

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors the handlers map to HTTP statuses. Services wrap or return
// these directly; repositories never see them.
var (
	ErrNoAutorizado = errors.New("no autorizado")
	ErrNoEncontrado = errors.New("no encontrado")
)

// ValidacionError carries one or more user-facing field messages joined into
// a single detail string, so the caller sees every missing field at once.
type ValidacionError struct {
	Mensajes []string
}

func (e *ValidacionError) Error() string {
	return strings.Join(e.Mensajes, ". ")
}

// NuevaValidacion builds a ValidacionError from the accumulated messages.
// Returns nil when there is nothing to report.
func NuevaValidacion(mensajes []string) error {
	if len(mensajes) == 0 {
		return nil
	}
	return &ValidacionError{Mensajes: mensajes}
}

// PermisoError names the update-payload fields the caller's role may not
// touch. The whole update is rejected; nothing is silently dropped.
type PermisoError struct {
	Campos []string
}

func (e *PermisoError) Error() string {
	return "No tienes permiso para modificar: " + strings.Join(e.Campos, ", ")
}

// EsTimeout reports whether the error chain is a request deadline expiry, so
// handlers can answer 504 instead of a generic backend failure.
func EsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
