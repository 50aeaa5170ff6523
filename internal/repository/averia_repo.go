package repository

import (
	"context"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsultaAverias is the normalized constraint set the avería service hands
// to the store. The service is responsible for visibility narrowing, urgency
// coercion, date boundaries and resolving related-entity text predicates into
// the ID sets below; the repository just translates constraints to SQL.
type ConsultaAverias struct {
	// VisibleTecnico narrows to averías assigned to this técnico. Applied
	// before (AND with) everything else.
	VisibleTecnico *uuid.UUID

	Estado     string
	Urgencia   *int
	IDTecnico  *uuid.UUID
	TipoAveria string
	Desde      *time.Time
	Hasta      *time.Time

	// EnMaquinas constrains id_maquina (resolved ubicación filter).
	// nil = unconstrained. The service short-circuits empty sets itself.
	EnMaquinas []uuid.UUID

	// Texto matches codigo, observaciones, persona_contacto, email_contacto
	// or tipo_averia; TextoMaquinas is the union path via machine location —
	// a row matches when ANY path matches.
	Texto         string
	TextoMaquinas []uuid.UUID

	Limit int
}

type AveriaRepository interface {
	Create(ctx context.Context, a *model.Averia) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Averia, error)
	List(ctx context.Context, q ConsultaAverias) ([]model.Averia, error)
	// Update applies a pre-authorized column map and bumps fecha_actualizacion.
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	ContarPorEstado(ctx context.Context, visibleTecnico *uuid.UUID) (dto.EstadisticasAverias, error)
	// Search-path primitives used by the visita search composition.
	BuscarIDsPorCodigo(ctx context.Context, texto string) ([]uuid.UUID, error)
	BuscarIDsPorMaquinas(ctx context.Context, maquinaIDs []uuid.UUID) ([]uuid.UUID, error)
	// ListAbiertas returns open averías eligible for new visits, optionally
	// narrowed to one técnico.
	ListAbiertas(ctx context.Context, tecnico *uuid.UUID) ([]model.Averia, error)
}

type averiaRepo struct{ db *gorm.DB }

func NewAveriaRepository(db *gorm.DB) AveriaRepository { return &averiaRepo{db: db} }

func (r *averiaRepo) Create(ctx context.Context, a *model.Averia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Raw("SELECT nextval('averias_codigo_seq')").Scan(&n).Error; err != nil {
			return err
		}
		a.Codigo = model.FormatearCodigoAveria(n)
		return tx.Create(a).Error
	})
}

func (r *averiaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Averia, error) {
	var a model.Averia
	err := r.db.WithContext(ctx).
		Preload("Maquina").
		Preload("Tecnico").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *averiaRepo) List(ctx context.Context, q ConsultaAverias) ([]model.Averia, error) {
	var averias []model.Averia

	query := r.db.WithContext(ctx).Model(&model.Averia{}).
		Preload("Maquina").
		Preload("Tecnico")

	if q.VisibleTecnico != nil {
		query = query.Where("id_tecnico_asignado = ?", *q.VisibleTecnico)
	}
	if q.Estado != "" {
		query = query.Where("estado = ?", q.Estado)
	}
	if q.Urgencia != nil {
		query = query.Where("urgencia = ?", *q.Urgencia)
	}
	if q.IDTecnico != nil {
		query = query.Where("id_tecnico_asignado = ?", *q.IDTecnico)
	}
	if q.TipoAveria != "" {
		query = query.Where("tipo_averia = ?", q.TipoAveria)
	}
	if q.Desde != nil {
		query = query.Where("fecha_creacion >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		query = query.Where("fecha_creacion <= ?", *q.Hasta)
	}
	if q.EnMaquinas != nil {
		query = query.Where("id_maquina IN ?", q.EnMaquinas)
	}

	if q.Texto != "" {
		like := "%" + q.Texto + "%"
		cond := r.db.Where(
			"codigo ILIKE ? OR observaciones ILIKE ? OR persona_contacto ILIKE ? OR email_contacto ILIKE ? OR tipo_averia ILIKE ?",
			like, like, like, like, like,
		)
		if len(q.TextoMaquinas) > 0 {
			cond = cond.Or("id_maquina IN ?", q.TextoMaquinas)
		}
		query = query.Where(cond)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	err := query.Order("fecha_creacion DESC").Limit(limit).Find(&averias).Error
	return averias, err
}

func (r *averiaRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["fecha_actualizacion"] = time.Now()
	res := r.db.WithContext(ctx).Model(&model.Averia{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *averiaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Averia{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *averiaRepo) ContarPorEstado(ctx context.Context, visibleTecnico *uuid.UUID) (dto.EstadisticasAverias, error) {
	var stats dto.EstadisticasAverias

	type fila struct {
		Estado string
		N      int64
	}
	var filas []fila

	query := r.db.WithContext(ctx).Model(&model.Averia{}).
		Select("estado, COUNT(*) AS n").
		Group("estado")
	if visibleTecnico != nil {
		query = query.Where("id_tecnico_asignado = ?", *visibleTecnico)
	}
	if err := query.Scan(&filas).Error; err != nil {
		return stats, err
	}

	for _, f := range filas {
		stats.Total += f.N
		switch f.Estado {
		case model.AveriaAbierta:
			stats.Abiertas = f.N
		case model.AveriaPendiente:
			stats.Pendientes = f.N
		case model.AveriaCerrada:
			stats.Cerradas = f.N
		}
	}
	return stats, nil
}

func (r *averiaRepo) BuscarIDsPorCodigo(ctx context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Averia{}).
		Where("codigo ILIKE ?", "%"+texto+"%").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *averiaRepo) BuscarIDsPorMaquinas(ctx context.Context, maquinaIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(maquinaIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Averia{}).
		Where("id_maquina IN ?", maquinaIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *averiaRepo) ListAbiertas(ctx context.Context, tecnico *uuid.UUID) ([]model.Averia, error) {
	var averias []model.Averia
	query := r.db.WithContext(ctx).
		Preload("Maquina").
		Preload("Tecnico").
		Where("estado = ?", model.AveriaAbierta)
	if tecnico != nil {
		query = query.Where("id_tecnico_asignado = ?", *tecnico)
	}
	err := query.Order("fecha_creacion DESC").Find(&averias).Error
	return averias, err
}
