package services

import (
	"context"
	"math"
	"strings"

	"github.com/alumnet/apiserver/types"
)

// maxDonationCents caps a single pledge at one million dollars.
const maxDonationCents = 100_000_000

// DonationRepository defines persistence operations for donations.
type DonationRepository interface {
	Create(ctx context.Context, donation types.Donation) (types.Donation, error)
	List(ctx context.Context) ([]types.Donation, error)
}

// DonationService encapsulates donation use-cases.
type DonationService struct {
	repo DonationRepository
}

func NewDonationService(repo DonationRepository) *DonationService {
	return &DonationService{repo: repo}
}

// Create records a pledge. Amounts are rounded to whole cents.
func (s *DonationService) Create(ctx context.Context, donation types.Donation) (types.Donation, error) {
	donation.DonorName = strings.TrimSpace(donation.DonorName)
	donation.DonorEmail = types.NormalizeEmail(donation.DonorEmail)
	donation.Message = strings.TrimSpace(donation.Message)
	if err := validateStruct(donation); err != nil {
		return types.Donation{}, err
	}

	cents := math.Round(donation.Amount * 100)
	if cents < 1 {
		return types.Donation{}, validationError("amount must be at least 0.01")
	}
	if cents > maxDonationCents {
		return types.Donation{}, validationError("amount must be at most 1000000")
	}
	donation.AmountCents = int64(cents)
	donation.Amount = cents / 100
	return s.repo.Create(ctx, donation)
}

// List returns every donation, newest first. Admin only.
func (s *DonationService) List(ctx context.Context, actor Actor) ([]types.Donation, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("Not authorized")
	}
	return s.repo.List(ctx)
}
