package repository

import (
	"context"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaquinaRepository is read-only: machines are reference data seeded outside
// this service.
type MaquinaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Maquina, error)
	// List searches numero_interno, numero_serie, modelo, ubicacion and marca
	// with a case-insensitive substring match, ordered by numero_interno.
	List(ctx context.Context, q string, limit int) ([]model.Maquina, error)
	// BuscarIDsPorUbicacion resolves a location text predicate into machine
	// IDs — the first hop of the staged search composition.
	BuscarIDsPorUbicacion(ctx context.Context, texto string) ([]uuid.UUID, error)
}

type maquinaRepo struct{ db *gorm.DB }

func NewMaquinaRepository(db *gorm.DB) MaquinaRepository { return &maquinaRepo{db: db} }

func (r *maquinaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Maquina, error) {
	var m model.Maquina
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *maquinaRepo) List(ctx context.Context, q string, limit int) ([]model.Maquina, error) {
	var maquinas []model.Maquina
	query := r.db.WithContext(ctx).Order("numero_interno ASC").Limit(limit)
	if q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"numero_interno ILIKE ? OR numero_serie ILIKE ? OR modelo ILIKE ? OR ubicacion ILIKE ? OR marca ILIKE ?",
			like, like, like, like, like,
		)
	}
	err := query.Find(&maquinas).Error
	return maquinas, err
}

func (r *maquinaRepo) BuscarIDsPorUbicacion(ctx context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Maquina{}).
		Where("ubicacion ILIKE ?", "%"+texto+"%").
		Pluck("id", &ids).Error
	return ids, err
}
