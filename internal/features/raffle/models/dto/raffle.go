package dto

import "raffle-sales-backend/internal/features/raffle/models"

// @Description Numbers to add to or remove from a seller's selection
type SelectionRequest struct {
	Numbers []int `json:"numbers" example:"4,5"`
}

// @Description Reservation request
type ReserveRequest struct {
	SellerID string       `json:"seller_id,omitempty" example:"seller-1"`
	Numbers  []int        `json:"numbers" example:"7,8"`
	Buyer    models.Buyer `json:"buyer"`
	// @Description Hold length in days; the server default applies when omitted
	TTLDays int `json:"ttl_days,omitempty" example:"5"`
}

// @Description Availability check request
type AvailabilityRequest struct {
	SellerID   string `json:"seller_id" example:"seller-1"`
	Numbers    []int  `json:"numbers" example:"1,2,3"`
	BuyerPhone string `json:"buyer_phone,omitempty" example:"04145551234"`
}

// @Description Fraud report request
type FraudReportRequest struct {
	ParticipantID string `json:"participant_id" example:"8f1c..."`
	RaffleID      string `json:"raffle_id" example:"raffle-1"`
	SellerID      string `json:"seller_id" example:"seller-1"`
	Message       string `json:"message" example:"Buyer claims the transfer was made twice"`
}

// @Description Raffle numbers with their effective status
type PoolResponse struct {
	RaffleID  string                `json:"raffle_id"`
	Summary   models.PoolSummary    `json:"summary"`
	Remaining int                   `json:"remaining"`
	Numbers   []models.RaffleNumber `json:"numbers"`
}

// @Description Live reservations grouped by participant
type ReservationGroupsResponse struct {
	RaffleID string                    `json:"raffle_id"`
	Groups   []models.ReservationGroup `json:"groups"`
}

// @Description Fraud report outcome
type FraudReportResponse struct {
	Outcome models.ReportOutcome `json:"outcome" example:"created" enums:"created,skipped"`
}
