package handler

import (
	"errors"
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/dto"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al iniciar sesion")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al renovar la sesion")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Perfil answers with the session user's current profile. A missing row
// means the profile went away after the token was issued; the client must
// log in again.
func (h *AuthHandler) Perfil(c *gin.Context) {
	actor := actorDe(c)
	resp, err := h.svc.Perfil(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoEncontrado) {
			c.JSON(http.StatusUnauthorized, apierror.New("Tu perfil ya no esta disponible, inicia sesion de nuevo"))
			return
		}
		responderError(c, err, "Error al cargar el perfil")
		return
	}
	c.JSON(http.StatusOK, resp)
}
