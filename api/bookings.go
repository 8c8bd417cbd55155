package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/Domenick1991/bookit/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const (
	internalErrorMessage    = "An internal server error occurred."
	slotUnavailableMessage  = "This slot is no longer available or does not exist."
	invalidBookingIDMessage = "invalid booking id"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ExperienceID  string   `json:"experience_id"`
	SlotID        string   `json:"slot_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	PromoCode     string   `json:"promo_code"`
	FinalPrice    *float64 `json:"final_price"`
}

type bookingResponse struct {
	ID            string  `json:"id"`
	ExperienceID  string  `json:"experience_id"`
	SlotID        string  `json:"slot_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	PromoCode     string  `json:"promo_code,omitempty"`
	FinalPrice    float64 `json:"final_price"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

type createBookingResponse struct {
	Success bool            `json:"success"`
	Booking bookingResponse `json:"booking"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	created, err := h.service.ReserveSlot(c.Request.Context(), booking.ReserveSlotInput{
		ExperienceID:  req.ExperienceID,
		SlotID:        req.SlotID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PromoCode:     req.PromoCode,
		FinalPrice:    req.FinalPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSlotUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": slotUnavailableMessage})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}

	c.JSON(http.StatusCreated, createBookingResponse{Success: true, Booking: toBookingResponse(created)})
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidBookingIDMessage})
		case errors.Is(err, domain.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		ExperienceID:  b.ExperienceID,
		SlotID:        b.SlotID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		PromoCode:     b.PromoCode,
		FinalPrice:    b.FinalPrice,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}
