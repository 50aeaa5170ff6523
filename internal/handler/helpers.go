package handler

import (
	"errors"
	"net/http"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/apierror"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/middleware"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorDe builds the service-layer actor from the token claims. The auth
// middleware already guaranteed the id parses and the role is known.
func actorDe(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{ID: id, Rol: rbac.Rol(claims.Rol)}
}

// responderError maps service errors to the HTTP taxonomy. Anything not
// recognized is logged with the request id and answered with the generic
// fallback so internals never leak.
func responderError(c *gin.Context, err error, fallback string) {
	var valErr *service.ValidacionError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(valErr.Error()))
		return
	}
	var permErr *service.PermisoError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, apierror.New(permErr.Error()))
		return
	}
	switch {
	case errors.Is(err, service.ErrNoAutorizado):
		c.JSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.New("Credenciales invalidas"))
	case service.EsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, apierror.New("La peticion ha excedido el tiempo maximo"))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("error no clasificado")
		c.JSON(http.StatusInternalServerError, apierror.New(fallback))
	}
}
