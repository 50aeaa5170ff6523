package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entorno bundles the in-memory repositories and the services under test.
type entorno struct {
	usuarios *stubUsuarioRepo
	maquinas *stubMaquinaRepo
	averias  *stubAveriaRepo
	visitas  *stubVisitaRepo

	averiaSvc service.AveriaService
	visitaSvc service.VisitaService
}

func nuevoEntorno() *entorno {
	usuarios := newStubUsuarioRepo()
	maquinas := newStubMaquinaRepo()
	averias := newStubAveriaRepo(maquinas, usuarios)
	visitas := newStubVisitaRepo(averias, usuarios)
	return &entorno{
		usuarios:  usuarios,
		maquinas:  maquinas,
		averias:   averias,
		visitas:   visitas,
		averiaSvc: service.NewAveriaService(averias, maquinas, usuarios, nil, 100),
		visitaSvc: service.NewVisitaService(visitas, averias, maquinas, usuarios, 100),
	}
}

func (e *entorno) crearTecnico(nombre string) *model.Usuario {
	return e.usuarios.agregar(&model.Usuario{
		Nombre: nombre,
		Email:  nombre + "@taller.local",
		Rol:    string(rbac.RolTecnico),
		Activo: true,
	})
}

func (e *entorno) crearMaquina(numeroInterno, ubicacion string) *model.Maquina {
	return e.maquinas.agregar(&model.Maquina{
		NumeroInterno: numeroInterno,
		Modelo:        "C7570",
		Marca:         "Konica Minolta",
		Ubicacion:     ubicacion,
	})
}

func (e *entorno) crearAveria(t *testing.T, maquina *model.Maquina, tecnico *model.Usuario, observaciones string) *model.Averia {
	t.Helper()
	a := &model.Averia{
		Estado:          model.AveriaAbierta,
		Urgencia:        model.UrgenciaMedia,
		EmailContacto:   "contacto@cliente.local",
		PersonaContacto: "Contacto",
		IDMaquina:       maquina.ID,
		TipoAveria:      model.TipoHardware,
		Observaciones:   observaciones,
		CreadoPor:       uuid.New(),
	}
	if tecnico != nil {
		a.IDTecnicoAsignado = &tecnico.ID
	}
	require.NoError(t, e.averias.Create(context.Background(), a))
	return a
}

func superusuario() service.Actor {
	return service.Actor{ID: uuid.New(), Rol: rbac.RolSuperusuario}
}

func jefe() service.Actor {
	return service.Actor{ID: uuid.New(), Rol: rbac.RolJefeTecnico}
}

func oficina() service.Actor {
	return service.Actor{ID: uuid.New(), Rol: rbac.RolOficina}
}

func comoTecnico(u *model.Usuario) service.Actor {
	return service.Actor{ID: u.ID, Rol: rbac.RolTecnico}
}

// ── Visibilidad ──────────────────────────────────────────────────────────────

func TestListarTecnicoSoloVeSusAverias(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	pedro := e.crearTecnico("Pedro")
	propia := e.crearAveria(t, m, laura, "atasco de papel")
	e.crearAveria(t, m, pedro, "pantalla rota")
	e.crearAveria(t, m, nil, "sin asignar")

	res, err := e.averiaSvc.Listar(context.Background(), comoTecnico(laura), dto.AveriaFilter{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, propia.Codigo, res[0].Codigo)
}

func TestListarTecnicoSinIDFallaCerrado(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.averiaSvc.Listar(context.Background(), service.Actor{Rol: rbac.RolTecnico}, dto.AveriaFilter{})
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestListarRolDesconocidoFallaCerrado(t *testing.T) {
	e := nuevoEntorno()
	actor := service.Actor{ID: uuid.New(), Rol: rbac.Rol("auditor")}
	_, err := e.averiaSvc.Listar(context.Background(), actor, dto.AveriaFilter{})
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestObtenerPorIDOcultaFueraDeAmbito(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	pedro := e.crearTecnico("Pedro")
	ajena := e.crearAveria(t, m, pedro, "tambor gastado")

	_, err := e.averiaSvc.ObtenerPorID(context.Background(), comoTecnico(laura), ajena.ID)
	assert.ErrorIs(t, err, service.ErrNoEncontrado)

	res, err := e.averiaSvc.ObtenerPorID(context.Background(), comoTecnico(pedro), ajena.ID)
	require.NoError(t, err)
	assert.Equal(t, ajena.Codigo, res.Codigo)
}

// ── Búsqueda y filtros ───────────────────────────────────────────────────────

func TestBuscarPorTextoEnObservaciones(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	objetivo := e.crearAveria(t, m, nil, "la pantalla no enciende")
	e.crearAveria(t, m, nil, "atasco de papel")

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Q: "pantalla"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, objetivo.Codigo, res[0].Codigo)
}

func TestBuscarPorCodigo(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	e.crearAveria(t, m, nil, "primera")
	segunda := e.crearAveria(t, m, nil, "segunda")
	require.Equal(t, "AVR-0002", segunda.Codigo)

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Q: "AVR-0002"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "segunda", res[0].Observaciones)
}

func TestBuscarTerminoVacioNoFiltra(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	e.crearAveria(t, m, nil, "una")
	e.crearAveria(t, m, nil, "otra")

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Q: "   "})
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestBuscarPorUbicacionDeMaquina(t *testing.T) {
	e := nuevoEntorno()
	madrid := e.crearMaquina("EQ-001", "Oficina Madrid")
	sevilla := e.crearMaquina("EQ-002", "Taller Sevilla")
	objetivo := e.crearAveria(t, madrid, nil, "sin relacion con el termino")
	e.crearAveria(t, sevilla, nil, "tampoco")

	// The term only matches through the machine location path.
	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Q: "Madrid"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, objetivo.Codigo, res[0].Codigo)
}

func TestFiltroUbicacionSinMaquinasDevuelveVacio(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	e.crearAveria(t, m, nil, "cualquiera")

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Ubicacion: "Nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestFiltroFechasIncluyeElDiaCompleto(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	dentro := e.crearAveria(t, m, nil, "dentro")
	e.averias.averias[dentro.ID].FechaCreacion = time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)
	fuera := e.crearAveria(t, m, nil, "fuera")
	e.averias.averias[fuera.ID].FechaCreacion = time.Date(2024, 1, 16, 0, 0, 1, 0, time.UTC)

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{
		FechaDesde: "2024-01-15",
		FechaHasta: "2024-01-15",
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "dentro", res[0].Observaciones)
}

func TestFiltroUrgenciaInvalida(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Urgencia: "muy alta"})
	var valErr *service.ValidacionError
	assert.True(t, errors.As(err, &valErr))

	_, err = e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Urgencia: "4"})
	assert.True(t, errors.As(err, &valErr))
}

func TestFiltroUrgenciaCoercion(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	alta := e.crearAveria(t, m, nil, "urgente")
	e.averias.averias[alta.ID].Urgencia = model.UrgenciaAlta
	e.crearAveria(t, m, nil, "normal")

	res, err := e.averiaSvc.Listar(context.Background(), superusuario(), dto.AveriaFilter{Urgencia: "1"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "urgente", res[0].Observaciones)
}

// ── Crear ────────────────────────────────────────────────────────────────────

func TestCrearAcumulaTodosLosFaltantes(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.averiaSvc.Crear(context.Background(), oficina(), dto.CrearAveriaRequest{})
	var valErr *service.ValidacionError
	require.True(t, errors.As(err, &valErr))
	assert.Len(t, valErr.Mensajes, 3)
	assert.Contains(t, err.Error(), "maquina")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "persona")
}

func TestCrearTecnicoNoPuede(t *testing.T) {
	e := nuevoEntorno()
	laura := e.crearTecnico("Laura")
	_, err := e.averiaSvc.Crear(context.Background(), comoTecnico(laura), dto.CrearAveriaRequest{})
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestCrearConTecnicoInactivo(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	laura.Activo = false

	_, err := e.averiaSvc.Crear(context.Background(), oficina(), dto.CrearAveriaRequest{
		IDMaquina:         m.ID.String(),
		EmailContacto:     "contacto@cliente.local",
		PersonaContacto:   "Contacto",
		IDTecnicoAsignado: laura.ID.String(),
	})
	var valErr *service.ValidacionError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "no esta disponible")
}

func TestCrearAplicaDefaults(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")

	res, err := e.averiaSvc.Crear(context.Background(), oficina(), dto.CrearAveriaRequest{
		IDMaquina:       m.ID.String(),
		EmailContacto:   "contacto@cliente.local",
		PersonaContacto: "Contacto",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AveriaAbierta, res.Estado)
	assert.Equal(t, model.UrgenciaMedia, res.Urgencia)
	assert.Equal(t, "AVR-0001", res.Codigo)
	assert.Nil(t, res.Tecnico)
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func TestActualizarOficinaCampoProhibido(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	a := e.crearAveria(t, m, nil, "original")

	tipo := model.TipoSoftware
	obs := "intento mixto"
	_, err := e.averiaSvc.Actualizar(context.Background(), oficina(), a.ID, dto.ActualizarAveriaRequest{
		TipoAveria:    &tipo,
		Observaciones: &obs,
	})
	var permErr *service.PermisoError
	require.True(t, errors.As(err, &permErr))
	assert.Contains(t, permErr.Campos, "tipo_averia")

	// The allowed field of the same request must not sneak through.
	actual, findErr := e.averias.FindByID(context.Background(), a.ID)
	require.NoError(t, findErr)
	assert.Equal(t, "original", actual.Observaciones)
	assert.Equal(t, model.TipoHardware, actual.TipoAveria)
}

func TestActualizarOficinaCamposPermitidos(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	a := e.crearAveria(t, m, nil, "original")

	estado := model.AveriaPendiente
	urgencia := model.UrgenciaAlta
	obs := "esperando piezas"
	res, err := e.averiaSvc.Actualizar(context.Background(), oficina(), a.ID, dto.ActualizarAveriaRequest{
		Estado:        &estado,
		Urgencia:      &urgencia,
		Observaciones: &obs,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AveriaPendiente, res.Estado)
	assert.Equal(t, model.UrgenciaAlta, res.Urgencia)
	assert.Equal(t, "esperando piezas", res.Observaciones)
}

func TestActualizarTecnicoNoPuede(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, laura, "suya")

	estado := model.AveriaCerrada
	_, err := e.averiaSvc.Actualizar(context.Background(), comoTecnico(laura), a.ID, dto.ActualizarAveriaRequest{Estado: &estado})
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestActualizarOficinaNoAsignaTecnico(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, nil, "sin asignar")

	idTecnico := laura.ID.String()
	_, err := e.averiaSvc.Actualizar(context.Background(), oficina(), a.ID, dto.ActualizarAveriaRequest{
		IDTecnicoAsignado: &idTecnico,
	})
	var permErr *service.PermisoError
	require.True(t, errors.As(err, &permErr))
	assert.Contains(t, permErr.Campos, "id_tecnico_asignado")
}

func TestActualizarJefeSoloAsigna(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, nil, "original")

	tipo := model.TipoSoftware
	estadoMaquina := "parada"
	_, err := e.averiaSvc.Actualizar(context.Background(), jefe(), a.ID, dto.ActualizarAveriaRequest{
		TipoAveria:    &tipo,
		EstadoMaquina: &estadoMaquina,
	})
	var permErr *service.PermisoError
	require.True(t, errors.As(err, &permErr))
	assert.Contains(t, permErr.Campos, "tipo_averia")
	assert.Contains(t, permErr.Campos, "estado_maquina")

	actual, findErr := e.averias.FindByID(context.Background(), a.ID)
	require.NoError(t, findErr)
	assert.Equal(t, model.TipoHardware, actual.TipoAveria)

	// Asignar sigue disponible tambien a traves de la actualizacion generica.
	idTecnico := laura.ID.String()
	res, err := e.averiaSvc.Actualizar(context.Background(), jefe(), a.ID, dto.ActualizarAveriaRequest{
		IDTecnicoAsignado: &idTecnico,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Tecnico)
	assert.Equal(t, "Laura", res.Tecnico.Nombre)
}

// ── Asignación y borrado ─────────────────────────────────────────────────────

func TestAsignarTecnico(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, nil, "sin asignar")

	res, err := e.averiaSvc.AsignarTecnico(context.Background(), jefe(), a.ID, dto.AsignarTecnicoRequest{IDTecnico: laura.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, res.Tecnico)
	assert.Equal(t, "Laura", res.Tecnico.Nombre)
}

func TestReasignarMismoTecnicoRechazado(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, laura, "asignada")

	_, err := e.averiaSvc.AsignarTecnico(context.Background(), superusuario(), a.ID, dto.AsignarTecnicoRequest{IDTecnico: laura.ID.String()})
	var valErr *service.ValidacionError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "ya esta asignado")
}

func TestAsignarOficinaProhibido(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	a := e.crearAveria(t, m, nil, "sin asignar")

	_, err := e.averiaSvc.AsignarTecnico(context.Background(), oficina(), a.ID, dto.AsignarTecnicoRequest{IDTecnico: laura.ID.String()})
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestEliminarSoloSuperusuario(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	a := e.crearAveria(t, m, nil, "a borrar")

	assert.ErrorIs(t, e.averiaSvc.Eliminar(context.Background(), jefe(), a.ID), service.ErrNoAutorizado)
	assert.ErrorIs(t, e.averiaSvc.Eliminar(context.Background(), oficina(), a.ID), service.ErrNoAutorizado)
	require.NoError(t, e.averiaSvc.Eliminar(context.Background(), superusuario(), a.ID))

	assert.ErrorIs(t, e.averiaSvc.Eliminar(context.Background(), superusuario(), a.ID), service.ErrNoEncontrado)
}

// ── Estadísticas ─────────────────────────────────────────────────────────────

func TestEstadisticasRespetanVisibilidad(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")
	pedro := e.crearTecnico("Pedro")
	propia := e.crearAveria(t, m, laura, "propia")
	e.averias.averias[propia.ID].Estado = model.AveriaPendiente
	e.crearAveria(t, m, pedro, "ajena")
	e.crearAveria(t, m, nil, "sin asignar")

	global, err := e.averiaSvc.Estadisticas(context.Background(), superusuario())
	require.NoError(t, err)
	assert.Equal(t, int64(3), global.Total)
	assert.Equal(t, int64(2), global.Abiertas)
	assert.Equal(t, int64(1), global.Pendientes)

	propias, err := e.averiaSvc.Estadisticas(context.Background(), comoTecnico(laura))
	require.NoError(t, err)
	assert.Equal(t, int64(1), propias.Total)
	assert.Equal(t, int64(1), propias.Pendientes)
}

// ── Flujo completo ───────────────────────────────────────────────────────────

func TestFlujoOficinaCreaJefeAsignaTecnicoVe(t *testing.T) {
	e := nuevoEntorno()
	m := e.crearMaquina("EQ-001", "Madrid")
	laura := e.crearTecnico("Laura")

	creada, err := e.averiaSvc.Crear(context.Background(), oficina(), dto.CrearAveriaRequest{
		IDMaquina:       m.ID.String(),
		EmailContacto:   "contacto@cliente.local",
		PersonaContacto: "Contacto",
		Observaciones:   "no imprime en color",
	})
	require.NoError(t, err)

	// El jefe la ve sin asignar; la técnico todavía no la ve.
	desdeJefe, err := e.averiaSvc.Listar(context.Background(), jefe(), dto.AveriaFilter{})
	require.NoError(t, err)
	require.Len(t, desdeJefe, 1)
	assert.Nil(t, desdeJefe[0].Tecnico)

	desdeTecnico, err := e.averiaSvc.Listar(context.Background(), comoTecnico(laura), dto.AveriaFilter{})
	require.NoError(t, err)
	assert.Empty(t, desdeTecnico)

	id, err := uuid.Parse(creada.ID)
	require.NoError(t, err)
	_, err = e.averiaSvc.AsignarTecnico(context.Background(), jefe(), id, dto.AsignarTecnicoRequest{IDTecnico: laura.ID.String()})
	require.NoError(t, err)

	desdeTecnico, err = e.averiaSvc.Listar(context.Background(), comoTecnico(laura), dto.AveriaFilter{})
	require.NoError(t, err)
	require.Len(t, desdeTecnico, 1)
	assert.Equal(t, creada.Codigo, desdeTecnico[0].Codigo)
}
