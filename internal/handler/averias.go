package handler

import (
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AveriasHandler struct {
	svc     service.AveriaService
	visitas service.VisitaService
}

func NewAveriasHandler(svc service.AveriaService, visitas service.VisitaService) *AveriasHandler {
	return &AveriasHandler{svc: svc, visitas: visitas}
}

func (h *AveriasHandler) Crear(c *gin.Context) {
	var req dto.CrearAveriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorDe(c), req)
	if err != nil {
		responderError(c, err, "Error al crear la averia")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AveriasHandler) Listar(c *gin.Context) {
	var filtro dto.AveriaFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actorDe(c), filtro)
	if err != nil {
		responderError(c, err, "Error al listar averias")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AveriasHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), actorDe(c), id)
	if err != nil {
		responderError(c, err, "Error al cargar la averia")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AveriasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarAveriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actorDe(c), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar la averia")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AveriasHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actorDe(c), id); err != nil {
		responderError(c, err, "Error al eliminar la averia")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AveriasHandler) AsignarTecnico(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AsignarTecnicoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsignarTecnico(c.Request.Context(), actorDe(c), id, req)
	if err != nil {
		responderError(c, err, "Error al asignar el tecnico")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AveriasHandler) Estadisticas(c *gin.Context) {
	resp, err := h.svc.Estadisticas(c.Request.Context(), actorDe(c))
	if err != nil {
		responderError(c, err, "Error al calcular estadisticas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AveriasHandler) Notificar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Notificar(c.Request.Context(), actorDe(c), id); err != nil {
		responderError(c, err, "Error al registrar la notificacion")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Notificacion registrada"})
}

// ListarVisitas serves the visit history of one avería for its detail page.
func (h *AveriasHandler) ListarVisitas(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.visitas.ListarPorAveria(c.Request.Context(), actorDe(c), id)
	if err != nil {
		responderError(c, err, "Error al listar las visitas de la averia")
		return
	}
	c.JSON(http.StatusOK, resp)
}
