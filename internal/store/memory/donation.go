package memory

import (
	"context"

	"github.com/alumnet/apiserver/types"
)

// DonationRepository is the in-memory donation ledger.
type DonationRepository struct {
	db *DB
}

func NewDonationRepository(db *DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(_ context.Context, donation types.Donation) (types.Donation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	donation.ID = r.db.nextID()
	donation.CreatedAt = r.db.now()
	r.db.donations = append(r.db.donations, donation)
	return donation, nil
}

func (r *DonationRepository) List(_ context.Context) ([]types.Donation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]types.Donation, 0, len(r.db.donations))
	for i := len(r.db.donations) - 1; i >= 0; i-- {
		d := r.db.donations[i]
		d.Amount = float64(d.AmountCents) / 100
		out = append(out, d)
	}
	return out, nil
}
