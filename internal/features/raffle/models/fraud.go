package models

import "time"

type FraudReportState string

const FraudReportStatePending FraudReportState = "pending"

// FraudReport flags a disputed purchase. At most one exists per
// (ParticipantID, RaffleID, SellerID).
type FraudReport struct {
	ID            string           `json:"id"`
	ParticipantID string           `json:"participant_id"`
	RaffleID      string           `json:"raffle_id"`
	SellerID      string           `json:"seller_id"`
	Message       string           `json:"message"`
	State         FraudReportState `json:"state"`
	CreatedAt     time.Time        `json:"created_at"`
}

type ReportOutcome string

const (
	ReportCreated ReportOutcome = "created"
	ReportSkipped ReportOutcome = "skipped"
)
