package service

import (
	"context"
	"errors"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/middleware"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrCredenciales = errors.New("credenciales invalidas")

// AuthService issues and refreshes JWT sessions. Tokens carry the usuario
// UUID, display name and role; the role in the token is what every capability
// check downstream reads.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
	Perfil(ctx context.Context, userID uuid.UUID) (*dto.UsuarioResponse, error)
}

type authService struct {
	usuarios   repository.UsuarioRepository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(usuarios repository.UsuarioRepository, secret string, accessHours, refreshHours int) AuthService {
	return &authService{
		usuarios:   usuarios,
		secret:     secret,
		accessTTL:  time.Duration(accessHours) * time.Hour,
		refreshTTL: time.Duration(refreshHours) * time.Hour,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.usuarios.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrCredenciales
	}
	return s.emitir(u.ID, u.Nombre, u.Email, u.Rol, u.Activo)
}

// Refresh re-reads the user so tokens issued before a deactivation or role
// change cannot mint a fresh session with the stale profile.
func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrCredenciales
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrCredenciales
	}
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, err
	}
	if !u.Activo {
		return nil, ErrCredenciales
	}
	return s.emitir(u.ID, u.Nombre, u.Email, u.Rol, u.Activo)
}

func (s *authService) Perfil(ctx context.Context, userID uuid.UUID) (*dto.UsuarioResponse, error) {
	u, err := s.usuarios.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &dto.UsuarioResponse{
		ID:     u.ID.String(),
		Nombre: u.Nombre,
		Email:  u.Email,
		Rol:    u.Rol,
		Activo: u.Activo,
	}, nil
}

func (s *authService) emitir(id uuid.UUID, nombre, email, rol string, activo bool) (*dto.LoginResponse, error) {
	now := time.Now()

	access, err := s.firmar(id, nombre, rol, now, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.firmar(id, nombre, rol, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User: dto.UsuarioResponse{
			ID:     id.String(),
			Nombre: nombre,
			Email:  email,
			Rol:    rol,
			Activo: activo,
		},
	}, nil
}

func (s *authService) firmar(id uuid.UUID, nombre, rol string, now time.Time, ttl time.Duration) (string, error) {
	claims := middleware.JWTClaims{
		UserID: id.String(),
		Nombre: nombre,
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}
