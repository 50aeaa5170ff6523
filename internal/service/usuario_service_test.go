package service_test

import (
	"context"
	"testing"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsuariosSoloSuperusuario(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	svc := service.NewUsuarioService(usuarios)

	req := dto.CrearUsuarioRequest{
		Nombre:   "Nuevo Tecnico",
		Email:    "nuevo@taller.local",
		Password: "secreta123",
		Rol:      string(rbac.RolTecnico),
	}
	for _, rol := range []rbac.Rol{rbac.RolJefeTecnico, rbac.RolOficina, rbac.RolTecnico, rbac.Rol("desconocido")} {
		_, err := svc.Crear(context.Background(), rol, req)
		assert.ErrorIs(t, err, service.ErrNoAutorizado, "rol %s", rol)
		_, err = svc.Listar(context.Background(), rol, false)
		assert.ErrorIs(t, err, service.ErrNoAutorizado, "rol %s", rol)
	}

	res, err := svc.Crear(context.Background(), rbac.RolSuperusuario, req)
	require.NoError(t, err)
	assert.True(t, res.Activo)
	assert.NotEqual(t, "secreta123", usuarios.usuarios[mustID(t, res.ID)].PasswordHash)
}

func TestListarTecnicosFiltraInactivos(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	svc := service.NewUsuarioService(usuarios)

	activa := sembrarUsuario(t, usuarios, "laura@taller.local", "x", string(rbac.RolTecnico), true)
	sembrarUsuario(t, usuarios, "antiguo@taller.local", "x", string(rbac.RolTecnico), false)
	sembrarUsuario(t, usuarios, "gestor@taller.local", "x", string(rbac.RolOficina), true)

	soloActivos, err := svc.ListarTecnicos(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, soloActivos, 1)
	assert.Equal(t, activa.ID.String(), soloActivos[0].ID)

	// Filter dropdowns still need historical assignees.
	todos, err := svc.ListarTecnicos(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}
