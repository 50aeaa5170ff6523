package repository

import (
	"context"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsultaVisitas mirrors ConsultaAverias for the visita listing: the service
// resolves every related-entity predicate into the ID sets below before the
// repository sees it.
type ConsultaVisitas struct {
	IDTecnico *uuid.UUID
	Estado    string
	Desde     *time.Time
	Hasta     *time.Time

	// EnAverias constrains id_averia (resolved avería-side filter).
	EnAverias []uuid.UUID

	// EnIDs is the union of all free-text match paths already resolved to
	// visita IDs. nil = no text filter active.
	EnIDs []uuid.UUID

	Limit int
}

type VisitaRepository interface {
	Create(ctx context.Context, v *model.Visita) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Visita, error)
	Update(ctx context.Context, v *model.Visita) error
	ListPorAveria(ctx context.Context, averiaID uuid.UUID) ([]model.Visita, error)
	List(ctx context.Context, q ConsultaVisitas) ([]model.Visita, error)
	BuscarIDsPorTexto(ctx context.Context, texto string) ([]uuid.UUID, error)
	BuscarIDsPorTecnicos(ctx context.Context, tecnicoIDs []uuid.UUID) ([]uuid.UUID, error)
	BuscarIDsPorAverias(ctx context.Context, averiaIDs []uuid.UUID) ([]uuid.UUID, error)
}

type visitaRepo struct{ db *gorm.DB }

func NewVisitaRepository(db *gorm.DB) VisitaRepository { return &visitaRepo{db: db} }

func (r *visitaRepo) Create(ctx context.Context, v *model.Visita) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Raw("SELECT nextval('visitas_codigo_seq')").Scan(&n).Error; err != nil {
			return err
		}
		v.Codigo = model.FormatearCodigoVisita(n)
		return tx.Create(v).Error
	})
}

func (r *visitaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Visita, error) {
	var v model.Visita
	err := r.db.WithContext(ctx).
		Preload("Averia").
		Preload("Averia.Maquina").
		Preload("Tecnico").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *visitaRepo) Update(ctx context.Context, v *model.Visita) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *visitaRepo) ListPorAveria(ctx context.Context, averiaID uuid.UUID) ([]model.Visita, error) {
	var visitas []model.Visita
	err := r.db.WithContext(ctx).
		Preload("Tecnico").
		Where("id_averia = ?", averiaID).
		Order("fecha_programada DESC").
		Find(&visitas).Error
	return visitas, err
}

func (r *visitaRepo) List(ctx context.Context, q ConsultaVisitas) ([]model.Visita, error) {
	var visitas []model.Visita

	query := r.db.WithContext(ctx).Model(&model.Visita{}).
		Preload("Averia").
		Preload("Averia.Maquina").
		Preload("Tecnico")

	if q.IDTecnico != nil {
		query = query.Where("id_tecnico = ?", *q.IDTecnico)
	}
	if q.Estado != "" {
		query = query.Where("estado = ?", q.Estado)
	}
	if q.Desde != nil {
		query = query.Where("fecha_visita >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		query = query.Where("fecha_visita <= ?", *q.Hasta)
	}
	if q.EnAverias != nil {
		query = query.Where("id_averia IN ?", q.EnAverias)
	}
	if q.EnIDs != nil {
		query = query.Where("id IN ?", q.EnIDs)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	err := query.Order("fecha_visita DESC").Limit(limit).Find(&visitas).Error
	return visitas, err
}

func (r *visitaRepo) BuscarIDsPorTexto(ctx context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	like := "%" + texto + "%"
	err := r.db.WithContext(ctx).Model(&model.Visita{}).
		Where("codigo ILIKE ? OR estado ILIKE ?", like, like).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *visitaRepo) BuscarIDsPorTecnicos(ctx context.Context, tecnicoIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(tecnicoIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Visita{}).
		Where("id_tecnico IN ?", tecnicoIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *visitaRepo) BuscarIDsPorAverias(ctx context.Context, averiaIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(averiaIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Visita{}).
		Where("id_averia IN ?", averiaIDs).
		Pluck("id", &ids).Error
	return ids, err
}
