package services

import (
	"context"
	"testing"

	"github.com/alumnet/apiserver/internal/store/memory"
	"github.com/alumnet/apiserver/types"
)

func TestDonations(t *testing.T) {
	svc := NewDonationService(memory.NewDonationRepository(memory.New()))
	ctx := context.Background()

	d, err := svc.Create(ctx, types.Donation{DonorName: "Ann", DonorEmail: "Ann@Example.com", Amount: 25.499})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.AmountCents != 2550 || d.Amount != 25.5 || d.DonorEmail != "ann@example.com" {
		t.Fatalf("donation = %+v", d)
	}

	bad := []types.Donation{
		{DonorEmail: "a@example.com", Amount: 5},
		{DonorName: "A", DonorEmail: "nope", Amount: 5},
		{DonorName: "A", DonorEmail: "a@example.com", Amount: 0},
		{DonorName: "A", DonorEmail: "a@example.com", Amount: 0.001},
		{DonorName: "A", DonorEmail: "a@example.com", Amount: 5_000_000},
	}
	for i, in := range bad {
		_, err := svc.Create(ctx, in)
		if err == nil {
			t.Fatalf("input %d: expected error", i)
		}
		assertKind(t, err, ErrValidation)
	}

	_, err = svc.List(ctx, Actor{ID: 1, Role: types.RoleAlumni})
	assertKind(t, err, ErrForbidden)
	list, err := svc.List(ctx, Actor{ID: 1, Role: types.RoleAdmin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("donations = %d, want 1", len(list))
	}
}
