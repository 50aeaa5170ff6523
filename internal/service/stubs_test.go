package service_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func contiene(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func mustID(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	if err != nil {
		t.Fatalf("uuid invalido %q: %v", raw, err)
	}
	return id
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) agregar(u *model.Usuario) *model.Usuario {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.agregar(u)
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if strings.EqualFold(u.Email, email) && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo || incluirInactivos {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListTecnicos(_ context.Context, soloActivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Rol != string(rbac.RolTecnico) {
			continue
		}
		if soloActivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}

func (r *stubUsuarioRepo) BuscarIDsTecnicosPorNombre(_ context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, u := range r.usuarios {
		if u.Rol == string(rbac.RolTecnico) && contiene(u.Nombre, texto) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Máquinas ─────────────────────────────────────────────────────────────────

type stubMaquinaRepo struct {
	maquinas map[uuid.UUID]*model.Maquina
}

func newStubMaquinaRepo() *stubMaquinaRepo {
	return &stubMaquinaRepo{maquinas: make(map[uuid.UUID]*model.Maquina)}
}

func (r *stubMaquinaRepo) agregar(m *model.Maquina) *model.Maquina {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.maquinas[m.ID] = m
	return m
}

func (r *stubMaquinaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Maquina, error) {
	m, ok := r.maquinas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMaquinaRepo) List(_ context.Context, q string, limit int) ([]model.Maquina, error) {
	var out []model.Maquina
	for _, m := range r.maquinas {
		if q == "" || contiene(m.NumeroInterno, q) || contiene(m.NumeroSerie, q) ||
			contiene(m.Modelo, q) || contiene(m.Ubicacion, q) || contiene(m.Marca, q) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroInterno < out[j].NumeroInterno })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubMaquinaRepo) BuscarIDsPorUbicacion(_ context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, m := range r.maquinas {
		if contiene(m.Ubicacion, texto) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

var _ repository.MaquinaRepository = (*stubMaquinaRepo)(nil)

// ── Averías ──────────────────────────────────────────────────────────────────

// stubAveriaRepo replays the store's listing semantics in memory so the
// composition logic in the service is exercised end to end.
type stubAveriaRepo struct {
	averias  map[uuid.UUID]*model.Averia
	seq      int64
	maquinas *stubMaquinaRepo
	usuarios *stubUsuarioRepo
}

func newStubAveriaRepo(maquinas *stubMaquinaRepo, usuarios *stubUsuarioRepo) *stubAveriaRepo {
	return &stubAveriaRepo{
		averias:  make(map[uuid.UUID]*model.Averia),
		maquinas: maquinas,
		usuarios: usuarios,
	}
}

func (r *stubAveriaRepo) Create(_ context.Context, a *model.Averia) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.seq++
	a.Codigo = model.FormatearCodigoAveria(r.seq)
	if a.FechaCreacion.IsZero() {
		a.FechaCreacion = time.Now()
	}
	r.averias[a.ID] = a
	return nil
}

func (r *stubAveriaRepo) cargar(a *model.Averia) *model.Averia {
	copia := *a
	if m, ok := r.maquinas.maquinas[a.IDMaquina]; ok {
		copia.Maquina = m
	}
	if a.IDTecnicoAsignado != nil {
		if u, ok := r.usuarios.usuarios[*a.IDTecnicoAsignado]; ok {
			copia.Tecnico = u
		}
	}
	return &copia
}

func (r *stubAveriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Averia, error) {
	a, ok := r.averias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.cargar(a), nil
}

func contieneID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (r *stubAveriaRepo) List(_ context.Context, q repository.ConsultaAverias) ([]model.Averia, error) {
	var out []model.Averia
	for _, a := range r.averias {
		if q.VisibleTecnico != nil && (a.IDTecnicoAsignado == nil || *a.IDTecnicoAsignado != *q.VisibleTecnico) {
			continue
		}
		if q.Estado != "" && a.Estado != q.Estado {
			continue
		}
		if q.Urgencia != nil && a.Urgencia != *q.Urgencia {
			continue
		}
		if q.IDTecnico != nil && (a.IDTecnicoAsignado == nil || *a.IDTecnicoAsignado != *q.IDTecnico) {
			continue
		}
		if q.TipoAveria != "" && a.TipoAveria != q.TipoAveria {
			continue
		}
		if q.Desde != nil && a.FechaCreacion.Before(*q.Desde) {
			continue
		}
		if q.Hasta != nil && a.FechaCreacion.After(*q.Hasta) {
			continue
		}
		if q.EnMaquinas != nil && !contieneID(q.EnMaquinas, a.IDMaquina) {
			continue
		}
		if q.Texto != "" {
			directo := contiene(a.Codigo, q.Texto) || contiene(a.Observaciones, q.Texto) ||
				contiene(a.PersonaContacto, q.Texto) || contiene(a.EmailContacto, q.Texto) ||
				contiene(a.TipoAveria, q.Texto)
			if !directo && !contieneID(q.TextoMaquinas, a.IDMaquina) {
				continue
			}
		}
		out = append(out, *r.cargar(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaCreacion.After(out[j].FechaCreacion) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *stubAveriaRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	a, ok := r.averias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range updates {
		switch col {
		case "estado":
			a.Estado = val.(string)
		case "urgencia":
			a.Urgencia = val.(int)
		case "medio_contacto":
			a.MedioContacto = val.(string)
		case "email_contacto":
			a.EmailContacto = val.(string)
		case "persona_contacto":
			a.PersonaContacto = val.(string)
		case "horario_solicitado":
			a.HorarioSolicitado = val.(string)
		case "estado_maquina":
			a.EstadoMaquina = val.(string)
		case "tipo_averia":
			a.TipoAveria = val.(string)
		case "observaciones":
			a.Observaciones = val.(string)
		case "id_maquina":
			a.IDMaquina = val.(uuid.UUID)
		case "id_tecnico_asignado":
			if val == nil {
				a.IDTecnicoAsignado = nil
			} else {
				id := val.(uuid.UUID)
				a.IDTecnicoAsignado = &id
			}
		case "fecha_actualizacion":
			a.FechaActualizacion = val.(time.Time)
		}
	}
	return nil
}

func (r *stubAveriaRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.averias[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.averias, id)
	return nil
}

func (r *stubAveriaRepo) ContarPorEstado(_ context.Context, visibleTecnico *uuid.UUID) (dto.EstadisticasAverias, error) {
	var stats dto.EstadisticasAverias
	for _, a := range r.averias {
		if visibleTecnico != nil && (a.IDTecnicoAsignado == nil || *a.IDTecnicoAsignado != *visibleTecnico) {
			continue
		}
		stats.Total++
		switch a.Estado {
		case model.AveriaAbierta:
			stats.Abiertas++
		case model.AveriaPendiente:
			stats.Pendientes++
		case model.AveriaCerrada:
			stats.Cerradas++
		}
	}
	return stats, nil
}

func (r *stubAveriaRepo) BuscarIDsPorCodigo(_ context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, a := range r.averias {
		if contiene(a.Codigo, texto) {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *stubAveriaRepo) BuscarIDsPorMaquinas(_ context.Context, maquinaIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(maquinaIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, a := range r.averias {
		if contieneID(maquinaIDs, a.IDMaquina) {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *stubAveriaRepo) ListAbiertas(_ context.Context, tecnico *uuid.UUID) ([]model.Averia, error) {
	var out []model.Averia
	for _, a := range r.averias {
		if a.Estado != model.AveriaAbierta {
			continue
		}
		if tecnico != nil && (a.IDTecnicoAsignado == nil || *a.IDTecnicoAsignado != *tecnico) {
			continue
		}
		out = append(out, *r.cargar(a))
	}
	return out, nil
}

var _ repository.AveriaRepository = (*stubAveriaRepo)(nil)

// ── Visitas ──────────────────────────────────────────────────────────────────

type stubVisitaRepo struct {
	visitas  map[uuid.UUID]*model.Visita
	seq      int64
	averias  *stubAveriaRepo
	usuarios *stubUsuarioRepo
}

func newStubVisitaRepo(averias *stubAveriaRepo, usuarios *stubUsuarioRepo) *stubVisitaRepo {
	return &stubVisitaRepo{
		visitas:  make(map[uuid.UUID]*model.Visita),
		averias:  averias,
		usuarios: usuarios,
	}
}

func (r *stubVisitaRepo) Create(_ context.Context, v *model.Visita) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.seq++
	v.Codigo = model.FormatearCodigoVisita(r.seq)
	r.visitas[v.ID] = v
	return nil
}

func (r *stubVisitaRepo) cargar(v *model.Visita) *model.Visita {
	copia := *v
	if a, ok := r.averias.averias[v.IDAveria]; ok {
		copia.Averia = r.averias.cargar(a)
	}
	if v.IDTecnico != nil {
		if u, ok := r.usuarios.usuarios[*v.IDTecnico]; ok {
			copia.Tecnico = u
		}
	}
	return &copia
}

func (r *stubVisitaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Visita, error) {
	v, ok := r.visitas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.cargar(v), nil
}

func (r *stubVisitaRepo) Update(_ context.Context, v *model.Visita) error {
	copia := *v
	copia.Averia = nil
	copia.Tecnico = nil
	r.visitas[v.ID] = &copia
	return nil
}

func (r *stubVisitaRepo) ListPorAveria(_ context.Context, averiaID uuid.UUID) ([]model.Visita, error) {
	var out []model.Visita
	for _, v := range r.visitas {
		if v.IDAveria == averiaID {
			out = append(out, *r.cargar(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaProgramada.After(out[j].FechaProgramada) })
	return out, nil
}

func (r *stubVisitaRepo) List(_ context.Context, q repository.ConsultaVisitas) ([]model.Visita, error) {
	var out []model.Visita
	for _, v := range r.visitas {
		if q.IDTecnico != nil && (v.IDTecnico == nil || *v.IDTecnico != *q.IDTecnico) {
			continue
		}
		if q.Estado != "" && v.Estado != q.Estado {
			continue
		}
		if q.Desde != nil && v.FechaVisita.Before(*q.Desde) {
			continue
		}
		if q.Hasta != nil && v.FechaVisita.After(*q.Hasta) {
			continue
		}
		if q.EnAverias != nil && !contieneID(q.EnAverias, v.IDAveria) {
			continue
		}
		if q.EnIDs != nil && !contieneID(q.EnIDs, v.ID) {
			continue
		}
		out = append(out, *r.cargar(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaVisita.After(out[j].FechaVisita) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *stubVisitaRepo) BuscarIDsPorTexto(_ context.Context, texto string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range r.visitas {
		if contiene(v.Codigo, texto) || contiene(v.Estado, texto) {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (r *stubVisitaRepo) BuscarIDsPorTecnicos(_ context.Context, tecnicoIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(tecnicoIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, v := range r.visitas {
		if v.IDTecnico != nil && contieneID(tecnicoIDs, *v.IDTecnico) {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (r *stubVisitaRepo) BuscarIDsPorAverias(_ context.Context, averiaIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(averiaIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, v := range r.visitas {
		if contieneID(averiaIDs, v.IDAveria) {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

var _ repository.VisitaRepository = (*stubVisitaRepo)(nil)
