package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alumnet/apiserver/types"
)

// DonationRepository handles persistence for donations.
type DonationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, donation types.Donation) (types.Donation, error) {
	donation.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO donations (donor_name, donor_email, amount_cents, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		donation.DonorName,
		donation.DonorEmail,
		donation.AmountCents,
		donation.Message,
		donation.CreatedAt,
	).Scan(&donation.ID); err != nil {
		return types.Donation{}, err
	}
	return donation, nil
}

// List returns donations newest first.
func (r *DonationRepository) List(ctx context.Context) ([]types.Donation, error) {
	const query = `
		SELECT id, donor_name, donor_email, amount_cents, message, created_at
		FROM donations
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	donations := []types.Donation{}
	for rows.Next() {
		var d types.Donation
		if err := rows.Scan(&d.ID, &d.DonorName, &d.DonorEmail, &d.AmountCents, &d.Message, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Amount = float64(d.AmountCents) / 100
		donations = append(donations, d)
	}
	return donations, rows.Err()
}
