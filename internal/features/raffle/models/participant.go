package models

import "time"

// Buyer is the participant data supplied by a seller. Phone is the natural
// key within a raffle.
type Buyer struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Cedula  string `json:"cedula,omitempty" validate:"max=32"`
	Address string `json:"address,omitempty" validate:"max=255"`
}

// Participant is a buyer registered for one raffle.
type Participant struct {
	ID        string    `json:"id"`
	RaffleID  string    `json:"raffle_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Cedula    string    `json:"cedula,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerLink assigns a seller to a raffle with a cap on how many numbers
// they may have in flight at once.
type SellerLink struct {
	RaffleID string `json:"raffle_id"`
	SellerID string `json:"seller_id"`
	Active   bool   `json:"active"`
	CantMax  int    `json:"cant_max"`
}

// Hold describes a reservation write.
type Hold struct {
	ParticipantID string
	SellerID      string
	BuyerName     string
	BuyerPhone    string
	ExpiresAt     time.Time
}

// Sale describes the sold transition written by the payment commit.
type Sale struct {
	ParticipantID   string
	SellerID        string
	BuyerName       string
	BuyerPhone      string
	PaymentMethod   string
	PaymentProofURL string
	PaymentDate     time.Time
}
