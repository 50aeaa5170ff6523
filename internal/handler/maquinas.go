package handler

import (
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaquinasHandler struct{ svc service.MaquinaService }

func NewMaquinasHandler(svc service.MaquinaService) *MaquinasHandler {
	return &MaquinasHandler{svc: svc}
}

func (h *MaquinasHandler) Listar(c *gin.Context) {
	var filtro dto.MaquinaFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		responderError(c, err, "Error al listar maquinas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaquinasHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al cargar la maquina")
		return
	}
	c.JSON(http.StatusOK, resp)
}
