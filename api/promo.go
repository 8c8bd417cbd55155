package api

import (
	"net/http"

	"github.com/Domenick1991/bookit/internal/service/promo"
	"github.com/gin-gonic/gin"
)

type PromoHandler struct {
	validator *promo.Validator
}

type validatePromoRequest struct {
	PromoCode string `json:"promo_code" binding:"required"`
}

type validatePromoResponse struct {
	Valid    bool    `json:"valid"`
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Type     string  `json:"type"`
}

type invalidPromoResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

type quoteRequest struct {
	Price     *float64 `json:"price" binding:"required,gte=0"`
	PromoCode string   `json:"promo_code"`
}

func NewPromoHandler(validator *promo.Validator) *PromoHandler {
	return &PromoHandler{validator: validator}
}

func (h *PromoHandler) Register(router *gin.RouterGroup) {
	router.POST("/validate", h.validate)
	router.POST("/quote", h.quote)
}

func (h *PromoHandler) validate(c *gin.Context) {
	var req validatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, invalidPromoResponse{Error: "promo_code is required"})
		return
	}

	d, err := h.validator.Validate(req.PromoCode)
	if err != nil {
		c.JSON(http.StatusNotFound, invalidPromoResponse{Error: "Invalid promo code"})
		return
	}
	c.JSON(http.StatusOK, validatePromoResponse{
		Valid:    true,
		Code:     d.Code,
		Discount: d.Value,
		Type:     string(d.Kind),
	})
}

func (h *PromoHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative number"})
		return
	}
	c.JSON(http.StatusOK, h.validator.Quote(*req.Price, req.PromoCode))
}
