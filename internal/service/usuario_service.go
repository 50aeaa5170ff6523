package service

import (
	"context"
	"errors"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrEmailDuplicado = errors.New("el email ya esta registrado")

// UsuarioService covers user administration (superusuario only; the router
// gates the routes, the service re-checks) plus the technician listings every
// role uses for pickers and filters.
type UsuarioService interface {
	Crear(ctx context.Context, rolActor rbac.Rol, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	Listar(ctx context.Context, rolActor rbac.Rol, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	Desactivar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID) error
	Reactivar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID) error
	// ListarTecnicos: soloActivos=true for assignment pickers, false for
	// filter dropdowns.
	ListarTecnicos(ctx context.Context, soloActivos bool) ([]dto.TecnicoResponse, error)
}

type usuarioService struct {
	usuarios repository.UsuarioRepository
}

func NewUsuarioService(usuarios repository.UsuarioRepository) UsuarioService {
	return &usuarioService{usuarios: usuarios}
}

func (s *usuarioService) Crear(ctx context.Context, rolActor rbac.Rol, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if rolActor != rbac.RolSuperusuario {
		return nil, ErrNoAutorizado
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.usuarios.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailDuplicado
		}
		return nil, err
	}
	return usuarioToResponse(u), nil
}

func (s *usuarioService) Listar(ctx context.Context, rolActor rbac.Rol, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	if rolActor != rbac.RolSuperusuario {
		return nil, ErrNoAutorizado
	}
	users, err := s.usuarios.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		out = append(out, *usuarioToResponse(&users[i]))
	}
	return out, nil
}

func (s *usuarioService) Actualizar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if rolActor != rbac.RolSuperusuario {
		return nil, ErrNoAutorizado
	}
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	if req.Nombre != "" {
		u.Nombre = req.Nombre
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Rol != "" {
		u.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if err := s.usuarios.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailDuplicado
		}
		return nil, err
	}
	return usuarioToResponse(u), nil
}

func (s *usuarioService) Desactivar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID) error {
	if rolActor != rbac.RolSuperusuario {
		return ErrNoAutorizado
	}
	return s.usuarios.SoftDelete(ctx, id)
}

func (s *usuarioService) Reactivar(ctx context.Context, rolActor rbac.Rol, id uuid.UUID) error {
	if rolActor != rbac.RolSuperusuario {
		return ErrNoAutorizado
	}
	return s.usuarios.Reactivar(ctx, id)
}

func (s *usuarioService) ListarTecnicos(ctx context.Context, soloActivos bool) ([]dto.TecnicoResponse, error) {
	tecnicos, err := s.usuarios.ListTecnicos(ctx, soloActivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TecnicoResponse, 0, len(tecnicos))
	for _, t := range tecnicos {
		out = append(out, dto.TecnicoResponse{
			ID:     t.ID.String(),
			Nombre: t.Nombre,
			Email:  t.Email,
			Activo: t.Activo,
		})
	}
	return out, nil
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	return &dto.UsuarioResponse{
		ID:     u.ID.String(),
		Nombre: u.Nombre,
		Email:  u.Email,
		Rol:    u.Rol,
		Activo: u.Activo,
	}
}
