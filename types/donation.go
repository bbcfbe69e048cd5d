package types

import "time"

// Donation is a pledge recorded from the public donation form.
type Donation struct {
	// ID is the unique identifier of the donation.
	ID int64 `json:"id"`

	// DonorName is the name given by the donor.
	DonorName string `json:"donorName" validate:"required"`

	// DonorEmail is where the receipt would be sent.
	DonorEmail string `json:"donorEmail" validate:"required,email"`

	// AmountCents is the pledged amount in US cents.
	AmountCents int64 `json:"-"`

	// Amount is the pledged amount in US dollars.
	Amount float64 `json:"amount" validate:"gt=0"`

	// Message is an optional note from the donor.
	Message string `json:"message"`

	// CreatedAt is when the donation was recorded.
	CreatedAt time.Time `json:"createdAt"`
}
