package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/Domenick1991/bookit/internal/service/experiences"
	"github.com/gin-gonic/gin"
)

type ExperienceHandler struct {
	service experiences.ExperienceUseCase
}

func NewExperienceHandler(service experiences.ExperienceUseCase) *ExperienceHandler {
	return &ExperienceHandler{service: service}
}

func (h *ExperienceHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *ExperienceHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ExperienceHandler) get(c *gin.Context) {
	exp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experience id"})
		case errors.Is(err, domain.ErrExperienceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Experience not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}
	c.JSON(http.StatusOK, exp)
}
