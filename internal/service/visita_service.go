package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const advertenciaSinTecnico = "La averia no tiene tecnico asignado"

// VisitaService implements the visit lifecycle. Visit creation inherits the
// técnico from the parent avería for everyone except superusuario; listing
// runs the same filter/search composition as averías plus the multi-hop text
// paths through técnicos, averías and machine locations.
type VisitaService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearVisitaRequest) (*dto.CrearVisitaResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VisitaResponse, error)
	Listar(ctx context.Context, actor Actor, filtro dto.VisitaFilter) ([]dto.VisitaResponse, error)
	ListarPorAveria(ctx context.Context, actor Actor, averiaID uuid.UUID) ([]dto.VisitaResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarVisitaRequest) (*dto.VisitaResponse, error)
}

type visitaService struct {
	visitas  repository.VisitaRepository
	averias  repository.AveriaRepository
	maquinas repository.MaquinaRepository
	usuarios repository.UsuarioRepository
	listado  int
}

func NewVisitaService(
	visitas repository.VisitaRepository,
	averias repository.AveriaRepository,
	maquinas repository.MaquinaRepository,
	usuarios repository.UsuarioRepository,
	listadoMax int,
) VisitaService {
	return &visitaService{
		visitas:  visitas,
		averias:  averias,
		maquinas: maquinas,
		usuarios: usuarios,
		listado:  listadoMax,
	}
}

func (s *visitaService) Crear(ctx context.Context, actor Actor, req dto.CrearVisitaRequest) (*dto.CrearVisitaResponse, error) {
	if !rbac.PuedeCrearVisita(actor.Rol) {
		return nil, ErrNoAutorizado
	}

	var faltan []string
	if strings.TrimSpace(req.IDAveria) == "" {
		faltan = append(faltan, "Debes seleccionar una averia")
	}
	if req.FechaVisita == nil {
		faltan = append(faltan, "La fecha de la visita es obligatoria")
	}
	if actor.Rol != rbac.RolSuperusuario && strings.TrimSpace(req.IDTecnico) == "" {
		faltan = append(faltan, "Debes seleccionar un tecnico")
	}
	if err := NuevaValidacion(faltan); err != nil {
		return nil, err
	}

	idAveria, err := uuid.Parse(req.IDAveria)
	if err != nil {
		return nil, NuevaValidacion([]string{"La averia seleccionada no es valida"})
	}
	averia, err := s.averias.FindByID(ctx, idAveria)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NuevaValidacion([]string{"La averia seleccionada no existe"})
		}
		return nil, err
	}

	// Técnicos only log visits against their own averías.
	if rbac.VisibilidadRestringida(actor.Rol) {
		if actor.ID == uuid.Nil || averia.IDTecnicoAsignado == nil || *averia.IDTecnicoAsignado != actor.ID {
			return nil, ErrNoAutorizado
		}
	}

	var idTecnico *uuid.UUID
	var advertencia string
	switch {
	case averia.IDTecnicoAsignado != nil && actor.Rol != rbac.RolSuperusuario:
		// The avería's assignment wins; the form cannot divert the visit.
		idTecnico = averia.IDTecnicoAsignado
	case averia.IDTecnicoAsignado != nil:
		// Superusuario may override the inherited técnico.
		if strings.TrimSpace(req.IDTecnico) != "" {
			idTecnico, err = tecnicoActivo(ctx, s.usuarios, req.IDTecnico)
			if err != nil {
				return nil, err
			}
		} else {
			idTecnico = averia.IDTecnicoAsignado
		}
	case actor.Rol == rbac.RolSuperusuario:
		advertencia = advertenciaSinTecnico
		if strings.TrimSpace(req.IDTecnico) != "" {
			idTecnico, err = tecnicoActivo(ctx, s.usuarios, req.IDTecnico)
			if err != nil {
				return nil, err
			}
			advertencia = ""
		}
	default:
		return nil, NuevaValidacion([]string{advertenciaSinTecnico})
	}

	piezas, err := validarPiezas(req.Piezas)
	if err != nil {
		return nil, err
	}

	v := &model.Visita{
		IDAveria:            idAveria,
		IDTecnico:           idTecnico,
		FechaVisita:         *req.FechaVisita,
		FechaProgramada:     *req.FechaVisita,
		Estado:              req.Estado,
		ContadorColor:       req.ContadorColor,
		ContadorBN:          req.ContadorBN,
		ContadorEscaner:     req.ContadorEscaner,
		DescripcionSolucion: req.DescripcionSolucion,
		SolucionAplicada:    req.SolucionAplicada,
		EstadoFinalMaquina:  req.EstadoFinalMaquina,
		Mantenimiento:       req.Mantenimiento.Etiquetas(),
		FechaInicio:         req.FechaInicio,
		FechaFin:            req.FechaFin,
		Observaciones:       req.Observaciones,
		CreadoPor:           actor.ID,
	}
	if v.Estado == "" {
		v.Estado = model.VisitaPendiente
	}
	asignarPiezas(v, piezas)

	if err := s.visitas.Create(ctx, v); err != nil {
		return nil, err
	}
	recargada, err := s.visitas.FindByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CrearVisitaResponse{
		Visita:      visitaToResponse(recargada),
		Advertencia: advertencia,
	}, nil
}

func (s *visitaService) ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VisitaResponse, error) {
	if !rbac.Valida(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	v, err := s.visitas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	if err := s.comprobarVisibilidad(actor, v); err != nil {
		return nil, err
	}
	resp := visitaToResponse(v)
	return &resp, nil
}

func (s *visitaService) Listar(ctx context.Context, actor Actor, filtro dto.VisitaFilter) ([]dto.VisitaResponse, error) {
	if !rbac.Valida(actor.Rol) {
		return nil, ErrNoAutorizado
	}

	q := repository.ConsultaVisitas{
		Estado: filtro.Estado,
		Limit:  s.listado,
	}

	if filtro.IDTecnico != "" {
		id, err := uuid.Parse(filtro.IDTecnico)
		if err != nil {
			return nil, NuevaValidacion([]string{"Tecnico invalido"})
		}
		q.IDTecnico = &id
	}
	if rbac.VisibilidadRestringida(actor.Rol) {
		if actor.ID == uuid.Nil {
			return nil, ErrNoAutorizado
		}
		// Visibility wins over the user filter: a técnico asking for another
		// técnico's visits gets an empty page, not an escape hatch.
		if q.IDTecnico != nil && *q.IDTecnico != actor.ID {
			return []dto.VisitaResponse{}, nil
		}
		id := actor.ID
		q.IDTecnico = &id
	}

	var err error
	q.Desde, q.Hasta, err = rangoFechas(filtro.FechaDesde, filtro.FechaHasta)
	if err != nil {
		return nil, err
	}

	if filtro.Ubicacion != "" {
		enAverias, err := s.averiasPorUbicacion(ctx, filtro.Ubicacion)
		if err != nil {
			return nil, err
		}
		if len(enAverias) == 0 {
			return []dto.VisitaResponse{}, nil
		}
		q.EnAverias = enAverias
	}

	if texto := strings.TrimSpace(filtro.Q); texto != "" {
		ids, err := s.buscarIDsPorTexto(ctx, texto)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []dto.VisitaResponse{}, nil
		}
		q.EnIDs = ids
	}

	visitas, err := s.visitas.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VisitaResponse, 0, len(visitas))
	for i := range visitas {
		out = append(out, visitaToResponse(&visitas[i]))
	}
	return out, nil
}

func (s *visitaService) ListarPorAveria(ctx context.Context, actor Actor, averiaID uuid.UUID) ([]dto.VisitaResponse, error) {
	if !rbac.Valida(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	averia, err := s.averias.FindByID(ctx, averiaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	if rbac.VisibilidadRestringida(actor.Rol) {
		if actor.ID == uuid.Nil || averia.IDTecnicoAsignado == nil || *averia.IDTecnicoAsignado != actor.ID {
			return nil, ErrNoEncontrado
		}
	}

	visitas, err := s.visitas.ListPorAveria(ctx, averiaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VisitaResponse, 0, len(visitas))
	for i := range visitas {
		out = append(out, visitaToResponse(&visitas[i]))
	}
	return out, nil
}

func (s *visitaService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarVisitaRequest) (*dto.VisitaResponse, error) {
	if !rbac.Valida(actor.Rol) {
		return nil, ErrNoAutorizado
	}
	v, err := s.visitas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	if err := s.comprobarVisibilidad(actor, v); err != nil {
		return nil, err
	}

	piezas, err := validarPiezas(req.Piezas)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.IDTecnico) != "" {
		idTecnico, err := tecnicoActivo(ctx, s.usuarios, req.IDTecnico)
		if err != nil {
			return nil, err
		}
		v.IDTecnico = idTecnico
	}
	if req.FechaVisita != nil {
		v.FechaVisita = *req.FechaVisita
		v.FechaProgramada = *req.FechaVisita
	}
	if req.Estado != "" {
		v.Estado = req.Estado
	}
	v.ContadorColor = req.ContadorColor
	v.ContadorBN = req.ContadorBN
	v.ContadorEscaner = req.ContadorEscaner
	v.DescripcionSolucion = req.DescripcionSolucion
	v.SolucionAplicada = req.SolucionAplicada
	v.EstadoFinalMaquina = req.EstadoFinalMaquina
	v.Mantenimiento = req.Mantenimiento.Etiquetas()
	v.FechaInicio = req.FechaInicio
	v.FechaFin = req.FechaFin
	v.Observaciones = req.Observaciones
	asignarPiezas(v, piezas)

	if err := s.visitas.Update(ctx, v); err != nil {
		return nil, err
	}
	recargada, err := s.visitas.FindByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	resp := visitaToResponse(recargada)
	return &resp, nil
}

// comprobarVisibilidad hides out-of-scope visits from técnicos the same way
// out-of-scope averías are hidden: as not found.
func (s *visitaService) comprobarVisibilidad(actor Actor, v *model.Visita) error {
	if !rbac.VisibilidadRestringida(actor.Rol) {
		return nil
	}
	if actor.ID == uuid.Nil {
		return ErrNoAutorizado
	}
	if v.IDTecnico != nil && *v.IDTecnico == actor.ID {
		return nil
	}
	if v.Averia != nil && v.Averia.IDTecnicoAsignado != nil && *v.Averia.IDTecnicoAsignado == actor.ID {
		return nil
	}
	return ErrNoEncontrado
}

// averiasPorUbicacion resolves a location predicate through machines into
// avería IDs. An empty intermediate set stays empty.
func (s *visitaService) averiasPorUbicacion(ctx context.Context, texto string) ([]uuid.UUID, error) {
	maquinas, err := s.maquinas.BuscarIDsPorUbicacion(ctx, texto)
	if err != nil {
		return nil, err
	}
	if len(maquinas) == 0 {
		return nil, nil
	}
	return s.averias.BuscarIDsPorMaquinas(ctx, maquinas)
}

// buscarIDsPorTexto resolves the free-text term into visita IDs across the
// four independent match paths and unions the results.
func (s *visitaService) buscarIDsPorTexto(ctx context.Context, texto string) ([]uuid.UUID, error) {
	union := map[uuid.UUID]bool{}

	directas, err := s.visitas.BuscarIDsPorTexto(ctx, texto)
	if err != nil {
		return nil, err
	}
	for _, id := range directas {
		union[id] = true
	}

	tecnicos, err := s.usuarios.BuscarIDsTecnicosPorNombre(ctx, texto)
	if err != nil {
		return nil, err
	}
	porTecnico, err := s.visitas.BuscarIDsPorTecnicos(ctx, tecnicos)
	if err != nil {
		return nil, err
	}
	for _, id := range porTecnico {
		union[id] = true
	}

	averias, err := s.averias.BuscarIDsPorCodigo(ctx, texto)
	if err != nil {
		return nil, err
	}
	porAveria, err := s.visitas.BuscarIDsPorAverias(ctx, averias)
	if err != nil {
		return nil, err
	}
	for _, id := range porAveria {
		union[id] = true
	}

	averiasUbicacion, err := s.averiasPorUbicacion(ctx, texto)
	if err != nil {
		return nil, err
	}
	porUbicacion, err := s.visitas.BuscarIDsPorAverias(ctx, averiasUbicacion)
	if err != nil {
		return nil, err
	}
	for _, id := range porUbicacion {
		union[id] = true
	}

	ids := make([]uuid.UUID, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	return ids, nil
}

// validarPiezas rejects a piece condition given without the piece name.
func validarPiezas(piezas []dto.PiezaRequest) ([]dto.PiezaRequest, error) {
	var mensajes []string
	for i, p := range piezas {
		if strings.TrimSpace(p.Pieza) == "" && p.EstadoPieza != "" {
			mensajes = append(mensajes, fmt.Sprintf("El estado de la pieza %d requiere el nombre de la pieza", i+1))
		}
	}
	if err := NuevaValidacion(mensajes); err != nil {
		return nil, err
	}
	return piezas, nil
}

func asignarPiezas(v *model.Visita, piezas []dto.PiezaRequest) {
	v.Pieza1, v.EstadoPieza1 = "", ""
	v.Pieza2, v.EstadoPieza2 = "", ""
	v.Pieza3, v.EstadoPieza3 = "", ""
	for i, p := range piezas {
		switch i {
		case 0:
			v.Pieza1, v.EstadoPieza1 = p.Pieza, p.EstadoPieza
		case 1:
			v.Pieza2, v.EstadoPieza2 = p.Pieza, p.EstadoPieza
		case 2:
			v.Pieza3, v.EstadoPieza3 = p.Pieza, p.EstadoPieza
		}
	}
}

func visitaToResponse(v *model.Visita) dto.VisitaResponse {
	resp := dto.VisitaResponse{
		ID:                  v.ID.String(),
		Codigo:              v.Codigo,
		FechaVisita:         v.FechaVisita,
		FechaProgramada:     v.FechaProgramada,
		Estado:              v.Estado,
		ContadorColor:       v.ContadorColor,
		ContadorBN:          v.ContadorBN,
		ContadorEscaner:     v.ContadorEscaner,
		DescripcionSolucion: v.DescripcionSolucion,
		SolucionAplicada:    v.SolucionAplicada,
		EstadoFinalMaquina:  v.EstadoFinalMaquina,
		Piezas:              []dto.PiezaResponse{},
		Mantenimiento:       v.Mantenimiento,
		Checklist:           v.Mantenimiento.Checklist(),
		FechaInicio:         v.FechaInicio,
		FechaFin:            v.FechaFin,
		Observaciones:       v.Observaciones,
		CreadoPor:           v.CreadoPor.String(),
	}
	if resp.Mantenimiento == nil {
		resp.Mantenimiento = []string{}
	}
	for _, p := range [][2]string{
		{v.Pieza1, v.EstadoPieza1},
		{v.Pieza2, v.EstadoPieza2},
		{v.Pieza3, v.EstadoPieza3},
	} {
		if p[0] != "" {
			resp.Piezas = append(resp.Piezas, dto.PiezaResponse{Pieza: p[0], EstadoPieza: p[1]})
		}
	}
	if v.Averia != nil {
		resumen := &dto.AveriaResumen{
			ID:     v.Averia.ID.String(),
			Codigo: v.Averia.Codigo,
		}
		if v.Averia.Maquina != nil {
			resumen.Maquina = &dto.MaquinaResumen{
				ID:            v.Averia.Maquina.ID.String(),
				NumeroInterno: v.Averia.Maquina.NumeroInterno,
				NumeroSerie:   v.Averia.Maquina.NumeroSerie,
				Modelo:        v.Averia.Maquina.Modelo,
				Marca:         v.Averia.Maquina.Marca,
				Ubicacion:     v.Averia.Maquina.Ubicacion,
			}
		}
		resp.Averia = resumen
	}
	if v.Tecnico != nil {
		resp.Tecnico = &dto.TecnicoResumen{
			ID:     v.Tecnico.ID.String(),
			Nombre: v.Tecnico.Nombre,
			Email:  v.Tecnico.Email,
		}
	}
	return resp
}
