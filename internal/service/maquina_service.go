package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaquinaService exposes the read-only machine catalog behind the picker.
type MaquinaService interface {
	Listar(ctx context.Context, filtro dto.MaquinaFilter) ([]dto.MaquinaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.MaquinaResponse, error)
}

type maquinaService struct {
	maquinas repository.MaquinaRepository
	max      int
}

func NewMaquinaService(maquinas repository.MaquinaRepository, max int) MaquinaService {
	return &maquinaService{maquinas: maquinas, max: max}
}

func (s *maquinaService) Listar(ctx context.Context, filtro dto.MaquinaFilter) ([]dto.MaquinaResponse, error) {
	maquinas, err := s.maquinas.List(ctx, strings.TrimSpace(filtro.Q), s.max)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaquinaResponse, 0, len(maquinas))
	for _, m := range maquinas {
		out = append(out, maquinaToResponse(&m))
	}
	return out, nil
}

func (s *maquinaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.MaquinaResponse, error) {
	m, err := s.maquinas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	resp := maquinaToResponse(m)
	return &resp, nil
}

func maquinaToResponse(m *model.Maquina) dto.MaquinaResponse {
	return dto.MaquinaResponse{
		ID:            m.ID.String(),
		NumeroInterno: m.NumeroInterno,
		NumeroSerie:   m.NumeroSerie,
		Modelo:        m.Modelo,
		Marca:         m.Marca,
		Ubicacion:     m.Ubicacion,
	}
}
