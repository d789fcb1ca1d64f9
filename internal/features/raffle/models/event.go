package models

import "time"

type EventType string

const (
	EventNumbersReserved EventType = "numbers_reserved"
	EventNumbersSold     EventType = "numbers_sold"
	EventFraudReported   EventType = "fraud_reported"
)

// Event is a domain fact appended to the raffle event stream after a
// successful write.
type Event struct {
	Type          EventType `json:"type"`
	RaffleID      string    `json:"raffle_id"`
	SellerID      string    `json:"seller_id,omitempty"`
	ParticipantID string    `json:"participant_id,omitempty"`
	BuyerName     string    `json:"buyer_name,omitempty"`
	Numbers       []int     `json:"numbers,omitempty"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"at"`
}
