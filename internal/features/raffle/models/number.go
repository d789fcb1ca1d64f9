package models

import "time"

// NumberStatus is the stored state of a raffle number.
type NumberStatus string

const (
	NumberStatusAvailable NumberStatus = "available"
	NumberStatusReserved  NumberStatus = "reserved"
	NumberStatusSold      NumberStatus = "sold"
)

// Valid reports whether s is one of the known statuses.
func (s NumberStatus) Valid() bool {
	switch s {
	case NumberStatusAvailable, NumberStatusReserved, NumberStatusSold:
		return true
	}
	return false
}

// RaffleNumber is one ticket of a raffle. Exactly one row exists per
// (RaffleID, Number); rows are created at raffle setup and only mutated by
// reservations and sales.
type RaffleNumber struct {
	RaffleID             string       `json:"raffle_id"`
	Number               int          `json:"number"`
	Status               NumberStatus `json:"status"`
	SellerID             *string      `json:"seller_id,omitempty"`
	ParticipantID        *string      `json:"participant_id,omitempty"`
	BuyerName            string       `json:"buyer_name,omitempty"`
	BuyerPhone           string       `json:"buyer_phone,omitempty"`
	PaymentMethod        string       `json:"payment_method,omitempty"`
	PaymentProofURL      string       `json:"payment_proof_url,omitempty"`
	PaymentDate          *time.Time   `json:"payment_date,omitempty"`
	ReservationExpiresAt *time.Time   `json:"reservation_expires_at,omitempty"`
}

// ReservationExpired reports whether n is a reservation whose hold has
// lapsed at now.
func (n RaffleNumber) ReservationExpired(now time.Time) bool {
	return n.Status == NumberStatusReserved &&
		(n.ReservationExpiresAt == nil || !now.Before(*n.ReservationExpiresAt))
}

// EffectiveStatus is the status every read path must observe: an expired
// reservation reads as available even while storage still says reserved.
func (n RaffleNumber) EffectiveStatus(now time.Time) NumberStatus {
	if n.ReservationExpired(now) {
		return NumberStatusAvailable
	}
	return n.Status
}

// Effective returns a copy of n normalised to its effective status. Owner
// and reservation fields of a lapsed hold are cleared so that available rows
// never carry ownership.
func (n RaffleNumber) Effective(now time.Time) RaffleNumber {
	if !n.ReservationExpired(now) {
		return n
	}
	return RaffleNumber{
		RaffleID: n.RaffleID,
		Number:   n.Number,
		Status:   NumberStatusAvailable,
	}
}

// OwnedBy reports whether the number is linked to participantID.
func (n RaffleNumber) OwnedBy(participantID string) bool {
	return participantID != "" && n.ParticipantID != nil && *n.ParticipantID == participantID
}

// PoolSummary counts a raffle's numbers by effective status.
type PoolSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Sold      int `json:"sold"`
}

// Remaining is total - sold - live reservations.
func (s PoolSummary) Remaining() int {
	return s.Total - s.Sold - s.Reserved
}

// ReservationGroup is the set of numbers a single participant holds.
// Selecting any one of them selects the whole group.
type ReservationGroup struct {
	ParticipantID string    `json:"participant_id"`
	BuyerName     string    `json:"buyer_name"`
	BuyerPhone    string    `json:"buyer_phone"`
	SellerID      string    `json:"seller_id,omitempty"`
	Numbers       []int     `json:"numbers"`
	ExpiresAt     time.Time `json:"expires_at"`
}
