package handler

import (
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsuariosHandler struct{ svc service.UsuarioService }

func NewUsuariosHandler(svc service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorDe(c).Rol, req)
	if err != nil {
		responderError(c, err, "Error al crear el usuario")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	incluirInactivos := c.Query("incluir_inactivos") == "true"
	resp, err := h.svc.Listar(c.Request.Context(), actorDe(c).Rol, incluirInactivos)
	if err != nil {
		responderError(c, err, "Error al listar usuarios")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actorDe(c).Rol, id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar el usuario")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), actorDe(c).Rol, id); err != nil {
		responderError(c, err, "Error al desactivar el usuario")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UsuariosHandler) Reactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), actorDe(c).Rol, id); err != nil {
		responderError(c, err, "Error al reactivar el usuario")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarTecnicos serves both the assignment picker (solo_activos=true) and
// the filter dropdowns (all técnicos, historical assignees included).
func (h *UsuariosHandler) ListarTecnicos(c *gin.Context) {
	soloActivos := c.DefaultQuery("solo_activos", "true") == "true"
	resp, err := h.svc.ListarTecnicos(c.Request.Context(), soloActivos)
	if err != nil {
		responderError(c, err, "Error al listar tecnicos")
		return
	}
	c.JSON(http.StatusOK, resp)
}
