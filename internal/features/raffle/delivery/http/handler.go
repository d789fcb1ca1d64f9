package http

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/common/middleware"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/models/dto"
	"raffle-sales-backend/internal/features/raffle/service"
)

type RaffleHandler struct {
	service        service.SalesService
	defaultTTLDays int
	maxProofBytes  int64
	logger         zerolog.Logger
}

func NewRaffleHandler(svc service.SalesService, defaultTTLDays int, maxProofBytes int64, logger zerolog.Logger) *RaffleHandler {
	return &RaffleHandler{
		service:        svc,
		defaultTTLDays: defaultTTLDays,
		maxProofBytes:  maxProofBytes,
		logger:         logger,
	}
}

func (h *RaffleHandler) RegisterRoutes(router *gin.RouterGroup) {
	raffles := router.Group("/raffles/:raffle_id")
	{
		raffles.GET("/numbers", h.listNumbers)
		raffles.GET("/reservations", h.listReservations)
		raffles.POST("/reservations", h.reserve)
		raffles.POST("/availability", h.checkAvailability)
		raffles.POST("/payments", h.completePayment)

		selection := raffles.Group("/sellers/:seller_id/selection")
		selection.GET("", h.getSelection)
		selection.POST("", h.selectNumbers)
		selection.DELETE("", h.deselectNumbers)
	}

	router.POST("/fraud-reports", h.reportFraud)
}

// @title Raffle Sales API
// @version 1.0
// @description Number allocation, reservations and payments for raffle sellers

// @Summary List raffle numbers
// @Description Returns every number of the raffle with its effective status. Lapsed reservations are reported as available.
// @Tags numbers
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Success 200 {object} dto.PoolResponse
// @Failure 404 {object} middleware.ErrorResponse "Raffle not found"
// @Failure 503 {object} middleware.ErrorResponse "Storage unavailable"
// @Router /raffles/{raffle_id}/numbers [get]
func (h *RaffleHandler) listNumbers(c *gin.Context) {
	raffleID := c.Param("raffle_id")
	numbers, err := h.service.ListNumbers(c.Request.Context(), raffleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	summary := service.Summarize(numbers)
	c.JSON(http.StatusOK, dto.PoolResponse{
		RaffleID:  raffleID,
		Summary:   summary,
		Remaining: summary.Remaining(),
		Numbers:   numbers,
	})
}

// @Summary List reservation groups
// @Description Live reservations grouped by participant. Selecting any number of a group selects the whole group.
// @Tags reservations
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Success 200 {object} dto.ReservationGroupsResponse
// @Failure 404 {object} middleware.ErrorResponse "Raffle not found"
// @Router /raffles/{raffle_id}/reservations [get]
func (h *RaffleHandler) listReservations(c *gin.Context) {
	raffleID := c.Param("raffle_id")
	groups, err := h.service.ReservationGroups(c.Request.Context(), raffleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReservationGroupsResponse{RaffleID: raffleID, Groups: groups})
}

// @Summary Get a seller's selection
// @Tags selection
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param seller_id path string true "Seller ID"
// @Success 200 {object} service.SelectionView
// @Failure 400 {object} middleware.ErrorResponse "Seller not active in raffle"
// @Router /raffles/{raffle_id}/sellers/{seller_id}/selection [get]
func (h *RaffleHandler) getSelection(c *gin.Context) {
	view, err := h.service.CurrentSelection(c.Request.Context(), c.Param("raffle_id"), c.Param("seller_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Select numbers
// @Description Adds numbers to the seller's selection. A reserved number selects its whole reservation group. The request is rejected as a whole when it exceeds the seller's quota.
// @Tags selection
// @Accept json
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param seller_id path string true "Seller ID"
// @Param input body dto.SelectionRequest true "Numbers to select"
// @Success 200 {object} service.SelectionView
// @Failure 400 {object} middleware.ErrorResponse "Validation error"
// @Failure 409 {object} middleware.ErrorResponse "Number already sold"
// @Failure 422 {object} middleware.ErrorResponse "Quota exceeded"
// @Router /raffles/{raffle_id}/sellers/{seller_id}/selection [post]
func (h *RaffleHandler) selectNumbers(c *gin.Context) {
	var input dto.SelectionRequest
	if !h.bind(c, &input) {
		return
	}
	view, err := h.service.Select(c.Request.Context(), c.Param("raffle_id"), c.Param("seller_id"), input.Numbers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Deselect numbers
// @Description Removes numbers from the seller's selection. An empty body or list clears it. Never rejected by quota.
// @Tags selection
// @Accept json
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param seller_id path string true "Seller ID"
// @Param input body dto.SelectionRequest false "Numbers to remove"
// @Success 200 {object} service.SelectionView
// @Router /raffles/{raffle_id}/sellers/{seller_id}/selection [delete]
func (h *RaffleHandler) deselectNumbers(c *gin.Context) {
	var input dto.SelectionRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &input) {
		return
	}
	view, err := h.service.Deselect(c.Request.Context(), c.Param("raffle_id"), c.Param("seller_id"), input.Numbers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Reserve numbers
// @Description Holds numbers for a buyer for ttl_days. All numbers are reserved or none.
// @Tags reservations
// @Accept json
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param input body dto.ReserveRequest true "Reservation"
// @Success 201 {object} service.ReserveResult
// @Failure 400 {object} middleware.ErrorResponse "Validation error"
// @Failure 409 {object} middleware.ErrorResponse "Numbers no longer available"
// @Router /raffles/{raffle_id}/reservations [post]
func (h *RaffleHandler) reserve(c *gin.Context) {
	var input dto.ReserveRequest
	if !h.bind(c, &input) {
		return
	}
	ttl := input.TTLDays
	if ttl == 0 {
		ttl = h.defaultTTLDays
	}
	result, err := h.service.Reserve(c.Request.Context(), service.ReserveRequest{
		RaffleID: c.Param("raffle_id"),
		SellerID: input.SellerID,
		Numbers:  input.Numbers,
		Buyer:    input.Buyer,
		TTLDays:  ttl,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Check availability
// @Description Reports which of the requested numbers the seller can no longer take. Advisory; does not change state.
// @Tags payments
// @Accept json
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param input body dto.AvailabilityRequest true "Numbers to check"
// @Success 200 {object} service.AvailabilityResult "All numbers available"
// @Failure 409 {object} service.AvailabilityResult "Some numbers are taken"
// @Router /raffles/{raffle_id}/availability [post]
func (h *RaffleHandler) checkAvailability(c *gin.Context) {
	var input dto.AvailabilityRequest
	if !h.bind(c, &input) {
		return
	}
	result, err := h.service.CheckAvailability(c.Request.Context(), service.AvailabilityRequest{
		RaffleID:   c.Param("raffle_id"),
		SellerID:   input.SellerID,
		Numbers:    input.Numbers,
		BuyerPhone: input.BuyerPhone,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if !result.OK() {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// @Summary Complete payment
// @Description Sells the numbers to the buyer. Quota, availability and proof upload are checked before the single all-or-nothing commit. A reservation held by the same buyer (same phone) is honoured.
// @Tags payments
// @Accept multipart/form-data
// @Produce json
// @Param raffle_id path string true "Raffle ID"
// @Param seller_id formData string true "Seller ID"
// @Param numbers formData string true "Comma separated numbers, or the field repeated"
// @Param name formData string true "Buyer name"
// @Param phone formData string true "Buyer phone"
// @Param cedula formData string false "Buyer national ID"
// @Param address formData string false "Buyer address"
// @Param payment_method formData string true "Payment method"
// @Param proof formData file false "Proof of payment"
// @Success 201 {object} service.PaymentResult
// @Failure 400 {object} middleware.ErrorResponse "Validation error"
// @Failure 409 {object} middleware.ErrorResponse "Numbers no longer available; refresh and re-select"
// @Failure 422 {object} middleware.ErrorResponse "Quota exceeded"
// @Failure 503 {object} middleware.ErrorResponse "Storage failure; safe to retry"
// @Router /raffles/{raffle_id}/payments [post]
func (h *RaffleHandler) completePayment(c *gin.Context) {
	numbers, err := parseNumbers(c.PostFormArray("numbers"))
	if err != nil {
		h.fail(c, err)
		return
	}
	proof, err := h.readProof(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.CompletePayment(c.Request.Context(), service.PaymentRequest{
		RaffleID: c.Param("raffle_id"),
		SellerID: c.PostForm("seller_id"),
		Numbers:  numbers,
		Buyer: models.Buyer{
			Name:    c.PostForm("name"),
			Phone:   c.PostForm("phone"),
			Cedula:  c.PostForm("cedula"),
			Address: c.PostForm("address"),
		},
		PaymentMethod: c.PostForm("payment_method"),
		Proof:         proof,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Report fraud
// @Description Files a fraud report for a participant, raffle and seller. A second report for the same triple is skipped.
// @Tags fraud
// @Accept json
// @Produce json
// @Param input body dto.FraudReportRequest true "Report"
// @Success 201 {object} dto.FraudReportResponse "Created"
// @Success 200 {object} dto.FraudReportResponse "Already reported"
// @Failure 400 {object} middleware.ErrorResponse "Missing identifiers"
// @Failure 404 {object} middleware.ErrorResponse "Participant not in raffle"
// @Router /fraud-reports [post]
func (h *RaffleHandler) reportFraud(c *gin.Context) {
	var input dto.FraudReportRequest
	if !h.bind(c, &input) {
		return
	}
	outcome, err := h.service.ReportFraud(c.Request.Context(), service.FraudReportRequest{
		ParticipantID: input.ParticipantID,
		RaffleID:      input.RaffleID,
		SellerID:      input.SellerID,
		Message:       input.Message,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if outcome == models.ReportCreated {
		status = http.StatusCreated
	}
	c.JSON(status, dto.FraudReportResponse{Outcome: outcome})
}

func (h *RaffleHandler) readProof(c *gin.Context) (*service.ProofFile, error) {
	header, err := c.FormFile("proof")
	if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid proof upload")
	}
	if h.maxProofBytes > 0 && header.Size > h.maxProofBytes {
		return nil, errors.NewValidationError("proof", fmt.Sprintf("file exceeds %d bytes", h.maxProofBytes))
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid proof upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid proof upload")
	}
	return &service.ProofFile{Name: header.Filename, Data: data}, nil
}

func (h *RaffleHandler) bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *RaffleHandler) fail(c *gin.Context, err error) {
	middleware.SendError(c, err, h.logger)
}
