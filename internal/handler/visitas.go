package handler

import (
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VisitasHandler struct{ svc service.VisitaService }

func NewVisitasHandler(svc service.VisitaService) *VisitasHandler {
	return &VisitasHandler{svc: svc}
}

func (h *VisitasHandler) Crear(c *gin.Context) {
	var req dto.CrearVisitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorDe(c), req)
	if err != nil {
		responderError(c, err, "Error al crear la visita")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VisitasHandler) Listar(c *gin.Context) {
	var filtro dto.VisitaFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actorDe(c), filtro)
	if err != nil {
		responderError(c, err, "Error al listar visitas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VisitasHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), actorDe(c), id)
	if err != nil {
		responderError(c, err, "Error al cargar la visita")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VisitasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarVisitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actorDe(c), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar la visita")
		return
	}
	c.JSON(http.StatusOK, resp)
}
