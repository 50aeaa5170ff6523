package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	estadisticasTTL = 30 * time.Second
)

// AveriaService implements the avería lifecycle: creation with eager
// validation, visibility-aware listing with the filter/search composition,
// field-gated updates, assignment, deletion and dashboard counts.
type AveriaService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearAveriaRequest) (*dto.AveriaResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AveriaResponse, error)
	Listar(ctx context.Context, actor Actor, filtro dto.AveriaFilter) ([]dto.AveriaResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarAveriaRequest) (*dto.AveriaResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	AsignarTecnico(ctx context.Context, actor Actor, id uuid.UUID, req dto.AsignarTecnicoRequest) (*dto.AveriaResponse, error)
	Estadisticas(ctx context.Context, actor Actor) (*dto.EstadisticasAverias, error)
	// Notificar accepts and logs a notify request. Delivery is out of scope.
	Notificar(ctx context.Context, actor Actor, id uuid.UUID) error
}

type averiaService struct {
	averias  repository.AveriaRepository
	maquinas repository.MaquinaRepository
	usuarios repository.UsuarioRepository
	cache    *redis.Client
	listado  int
}

// NewAveriaService wires the avería service. cache may be nil; statistics
// then skip the cache layer entirely.
func NewAveriaService(
	averias repository.AveriaRepository,
	maquinas repository.MaquinaRepository,
	usuarios repository.UsuarioRepository,
	cache *redis.Client,
	listadoMax int,
) AveriaService {
	return &averiaService{
		averias:  averias,
		maquinas: maquinas,
		usuarios: usuarios,
		cache:    cache,
		listado:  listadoMax,
	}
}

// visibilidad resolves the mandatory narrowing for the actor. A técnico
// session without a usable id fails closed, never open.
func (s *averiaService) visibilidad(actor Actor) (*uuid.UUID, error) {
	if !rbac.Valida(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	if !rbac.VisibilidadRestringida(actor.Rol) {
		return nil, nil
	}
	if actor.ID == uuid.Nil {
		return nil, ErrNoAutorizado
	}
	id := actor.ID
	return &id, nil
}

func (s *averiaService) Crear(ctx context.Context, actor Actor, req dto.CrearAveriaRequest) (*dto.AveriaResponse, error) {
	if !rbac.PuedeCrearAveria(actor.Rol) {
		return nil, ErrNoAutorizado
	}

	// Collect every missing required field before answering, so the caller
	// fixes the form in one round trip.
	var faltan []string
	if strings.TrimSpace(req.IDMaquina) == "" {
		faltan = append(faltan, "Debes seleccionar una maquina")
	}
	if strings.TrimSpace(req.EmailContacto) == "" {
		faltan = append(faltan, "El email de contacto es obligatorio")
	}
	if strings.TrimSpace(req.PersonaContacto) == "" {
		faltan = append(faltan, "La persona de contacto es obligatoria")
	}
	if err := NuevaValidacion(faltan); err != nil {
		return nil, err
	}

	idMaquina, err := uuid.Parse(req.IDMaquina)
	if err != nil {
		return nil, NuevaValidacion([]string{"La maquina seleccionada no es valida"})
	}
	if _, err := s.maquinas.FindByID(ctx, idMaquina); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NuevaValidacion([]string{"La maquina seleccionada no existe"})
		}
		return nil, err
	}

	var idTecnico *uuid.UUID
	if strings.TrimSpace(req.IDTecnicoAsignado) != "" {
		id, err := tecnicoActivo(ctx, s.usuarios, req.IDTecnicoAsignado)
		if err != nil {
			return nil, err
		}
		idTecnico = id
	}

	a := &model.Averia{
		Estado:            model.AveriaAbierta,
		Urgencia:          req.Urgencia,
		MedioContacto:     req.MedioContacto,
		EmailContacto:     strings.TrimSpace(req.EmailContacto),
		PersonaContacto:   strings.TrimSpace(req.PersonaContacto),
		HorarioSolicitado: req.HorarioSolicitado,
		IDMaquina:         idMaquina,
		IDTecnicoAsignado: idTecnico,
		EstadoMaquina:     req.EstadoMaquina,
		TipoAveria:        req.TipoAveria,
		Observaciones:     req.Observaciones,
		CreadoPor:         actor.ID,
	}
	if a.Urgencia == 0 {
		a.Urgencia = model.UrgenciaMedia
	}
	if a.TipoAveria == "" {
		a.TipoAveria = model.TipoOtros
	}

	if err := s.averias.Create(ctx, a); err != nil {
		return nil, err
	}
	s.invalidarEstadisticas(ctx)
	return s.recargar(ctx, a.ID)
}

func (s *averiaService) ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AveriaResponse, error) {
	visible, err := s.visibilidad(actor)
	if err != nil {
		return nil, err
	}
	a, err := s.averias.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	// Out-of-scope records are indistinguishable from missing ones.
	if visible != nil && (a.IDTecnicoAsignado == nil || *a.IDTecnicoAsignado != *visible) {
		return nil, ErrNoEncontrado
	}
	resp := averiaToResponse(a)
	return &resp, nil
}

func (s *averiaService) Listar(ctx context.Context, actor Actor, filtro dto.AveriaFilter) ([]dto.AveriaResponse, error) {
	visible, err := s.visibilidad(actor)
	if err != nil {
		return nil, err
	}

	q := repository.ConsultaAverias{
		VisibleTecnico: visible,
		Estado:         filtro.Estado,
		TipoAveria:     filtro.TipoAveria,
		Limit:          s.listado,
	}

	if filtro.Urgencia != "" {
		n, err := strconv.Atoi(filtro.Urgencia)
		if err != nil || n < model.UrgenciaAlta || n > model.UrgenciaBaja {
			return nil, NuevaValidacion([]string{"Urgencia invalida"})
		}
		q.Urgencia = &n
	}
	if filtro.IDTecnicoAsignado != "" {
		id, err := uuid.Parse(filtro.IDTecnicoAsignado)
		if err != nil {
			return nil, NuevaValidacion([]string{"Tecnico invalido"})
		}
		q.IDTecnico = &id
	}
	q.Desde, q.Hasta, err = rangoFechas(filtro.FechaDesde, filtro.FechaHasta)
	if err != nil {
		return nil, err
	}

	if filtro.Ubicacion != "" {
		ids, err := s.maquinas.BuscarIDsPorUbicacion(ctx, filtro.Ubicacion)
		if err != nil {
			return nil, err
		}
		// A location matching no machine can match no avería either.
		if len(ids) == 0 {
			return []dto.AveriaResponse{}, nil
		}
		q.EnMaquinas = ids
	}

	if texto := strings.TrimSpace(filtro.Q); texto != "" {
		q.Texto = texto
		// Union path: averías whose machine location matches the term.
		maquinas, err := s.maquinas.BuscarIDsPorUbicacion(ctx, texto)
		if err != nil {
			return nil, err
		}
		q.TextoMaquinas = maquinas
	}

	averias, err := s.averias.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AveriaResponse, 0, len(averias))
	for i := range averias {
		out = append(out, averiaToResponse(&averias[i]))
	}
	return out, nil
}

func (s *averiaService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarAveriaRequest) (*dto.AveriaResponse, error) {
	if !rbac.PuedeEditarAveria(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	if _, err := s.averias.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	var prohibidos []string

	aplicar := func(campo rbac.Campo, columna string, valor interface{}) {
		if !rbac.PuedeEditarCampo(actor.Rol, campo) {
			prohibidos = append(prohibidos, string(campo))
			return
		}
		updates[columna] = valor
	}

	if req.Estado != nil {
		aplicar(rbac.CampoEstado, "estado", *req.Estado)
	}
	if req.Urgencia != nil {
		aplicar(rbac.CampoUrgencia, "urgencia", *req.Urgencia)
	}
	if req.MedioContacto != nil {
		aplicar(rbac.CampoMedioContacto, "medio_contacto", *req.MedioContacto)
	}
	if req.EmailContacto != nil {
		aplicar(rbac.CampoEmailContacto, "email_contacto", *req.EmailContacto)
	}
	if req.PersonaContacto != nil {
		aplicar(rbac.CampoPersonaContacto, "persona_contacto", *req.PersonaContacto)
	}
	if req.HorarioSolicitado != nil {
		aplicar(rbac.CampoHorarioSolicitado, "horario_solicitado", *req.HorarioSolicitado)
	}
	if req.EstadoMaquina != nil {
		aplicar(rbac.CampoEstadoMaquina, "estado_maquina", *req.EstadoMaquina)
	}
	if req.TipoAveria != nil {
		aplicar(rbac.CampoTipoAveria, "tipo_averia", *req.TipoAveria)
	}
	if req.Observaciones != nil {
		aplicar(rbac.CampoObservaciones, "observaciones", *req.Observaciones)
	}

	if req.IDMaquina != nil {
		if !rbac.PuedeEditarCampo(actor.Rol, rbac.CampoMaquina) {
			prohibidos = append(prohibidos, string(rbac.CampoMaquina))
		} else {
			idMaquina, err := uuid.Parse(*req.IDMaquina)
			if err != nil {
				return nil, NuevaValidacion([]string{"La maquina seleccionada no es valida"})
			}
			if _, err := s.maquinas.FindByID(ctx, idMaquina); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, NuevaValidacion([]string{"La maquina seleccionada no existe"})
				}
				return nil, err
			}
			updates["id_maquina"] = idMaquina
		}
	}

	if req.IDTecnicoAsignado != nil {
		// Assignment through the generic update obeys the same gate as the
		// dedicated endpoint.
		if !rbac.PuedeAsignarTecnico(actor.Rol) {
			prohibidos = append(prohibidos, string(rbac.CampoTecnicoAsignado))
		} else if strings.TrimSpace(*req.IDTecnicoAsignado) == "" {
			updates["id_tecnico_asignado"] = nil
		} else {
			idTecnico, err := tecnicoActivo(ctx, s.usuarios, *req.IDTecnicoAsignado)
			if err != nil {
				return nil, err
			}
			updates["id_tecnico_asignado"] = *idTecnico
		}
	}

	if len(prohibidos) > 0 {
		return nil, &PermisoError{Campos: prohibidos}
	}
	if len(updates) == 0 {
		return nil, NuevaValidacion([]string{"No hay campos que actualizar"})
	}

	if err := s.averias.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	s.invalidarEstadisticas(ctx)
	return s.recargar(ctx, id)
}

func (s *averiaService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !rbac.PuedeEliminarAveria(actor.Rol) {
		return ErrNoAutorizado
	}
	if err := s.averias.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoEncontrado
		}
		return err
	}
	s.invalidarEstadisticas(ctx)
	return nil
}

func (s *averiaService) AsignarTecnico(ctx context.Context, actor Actor, id uuid.UUID, req dto.AsignarTecnicoRequest) (*dto.AveriaResponse, error) {
	if !rbac.PuedeAsignarTecnico(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	a, err := s.averias.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}

	idTecnico, err := tecnicoActivo(ctx, s.usuarios, req.IDTecnico)
	if err != nil {
		return nil, err
	}
	// Reassigning the técnico already on the record is a no-op the caller
	// should know about, not a silent write.
	if a.IDTecnicoAsignado != nil && *a.IDTecnicoAsignado == *idTecnico {
		return nil, NuevaValidacion([]string{"El tecnico ya esta asignado a esta averia"})
	}

	if err := s.averias.Update(ctx, id, map[string]interface{}{"id_tecnico_asignado": *idTecnico}); err != nil {
		return nil, err
	}
	return s.recargar(ctx, id)
}

func (s *averiaService) Estadisticas(ctx context.Context, actor Actor) (*dto.EstadisticasAverias, error) {
	visible, err := s.visibilidad(actor)
	if err != nil {
		return nil, err
	}

	clave := "averias:estadisticas"
	if visible != nil {
		clave = fmt.Sprintf("averias:estadisticas:tecnico:%s", visible)
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, clave).Result(); err == nil {
			var stats dto.EstadisticasAverias
			if json.Unmarshal([]byte(raw), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.averias.ContarPorEstado(ctx, visible)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			// Best effort: a cache write failure never fails the request.
			if err := s.cache.Set(ctx, clave, raw, estadisticasTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("fallo al cachear estadisticas")
			}
		}
	}
	return &stats, nil
}

func (s *averiaService) Notificar(ctx context.Context, actor Actor, id uuid.UUID) error {
	a, err := s.averias.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoEncontrado
		}
		return err
	}
	log.Info().
		Str("averia", a.Codigo).
		Str("solicitado_por", actor.ID.String()).
		Msg("notificacion de averia solicitada")
	return nil
}

// tecnicoActivo resolves a raw técnico id and verifies it names an active
// user with the técnico role. Shared by avería assignment and visit creation.
func tecnicoActivo(ctx context.Context, usuarios repository.UsuarioRepository, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, NuevaValidacion([]string{"El tecnico seleccionado no es valido"})
	}
	u, err := usuarios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NuevaValidacion([]string{"El tecnico seleccionado no existe"})
		}
		return nil, err
	}
	if u.Rol != string(rbac.RolTecnico) || !u.Activo {
		return nil, NuevaValidacion([]string{"El tecnico seleccionado no esta disponible"})
	}
	return &id, nil
}

func (s *averiaService) recargar(ctx context.Context, id uuid.UUID) (*dto.AveriaResponse, error) {
	a, err := s.averias.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := averiaToResponse(a)
	return &resp, nil
}

func (s *averiaService) invalidarEstadisticas(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "averias:estadisticas*", 50).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
}

// rangoFechas parses YYYY-MM-DD bounds into inclusive day limits: desde at
// 00:00:00 and hasta at 23:59:59.
func rangoFechas(desde, hasta string) (*time.Time, *time.Time, error) {
	var d, h *time.Time
	if desde != "" {
		t, err := time.Parse("2006-01-02", desde)
		if err != nil {
			return nil, nil, NuevaValidacion([]string{"Fecha desde invalida"})
		}
		d = &t
	}
	if hasta != "" {
		t, err := time.Parse("2006-01-02", hasta)
		if err != nil {
			return nil, nil, NuevaValidacion([]string{"Fecha hasta invalida"})
		}
		fin := t.Add(24*time.Hour - time.Second)
		h = &fin
	}
	return d, h, nil
}

func averiaToResponse(a *model.Averia) dto.AveriaResponse {
	resp := dto.AveriaResponse{
		ID:                 a.ID.String(),
		Codigo:             a.Codigo,
		Estado:             a.Estado,
		Urgencia:           a.Urgencia,
		MedioContacto:      a.MedioContacto,
		EmailContacto:      a.EmailContacto,
		PersonaContacto:    a.PersonaContacto,
		HorarioSolicitado:  a.HorarioSolicitado,
		EstadoMaquina:      a.EstadoMaquina,
		TipoAveria:         a.TipoAveria,
		Observaciones:      a.Observaciones,
		CreadoPor:          a.CreadoPor.String(),
		FechaCreacion:      a.FechaCreacion,
		FechaActualizacion: a.FechaActualizacion,
	}
	if a.Maquina != nil {
		resp.Maquina = &dto.MaquinaResumen{
			ID:            a.Maquina.ID.String(),
			NumeroInterno: a.Maquina.NumeroInterno,
			NumeroSerie:   a.Maquina.NumeroSerie,
			Modelo:        a.Maquina.Modelo,
			Marca:         a.Maquina.Marca,
			Ubicacion:     a.Maquina.Ubicacion,
		}
	}
	if a.Tecnico != nil {
		resp.Tecnico = &dto.TecnicoResumen{
			ID:     a.Tecnico.ID.String(),
			Nombre: a.Tecnico.Nombre,
			Email:  a.Tecnico.Email,
		}
	}
	return resp
}
