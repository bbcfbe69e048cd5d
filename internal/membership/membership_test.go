package membership

import (
	"errors"
	"reflect"
	"testing"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name     string
		members  []int64
		actor    int64
		capacity int
		want     []int64
		outcome  Outcome
		err      error
	}{
		{"add to empty", nil, 1, 2, []int64{1}, Added, nil},
		{"add below capacity", []int64{1}, 2, 2, []int64{1, 2}, Added, nil},
		{"reject at capacity", []int64{1, 2}, 3, 2, []int64{1, 2}, 0, ErrCapacityExceeded},
		{"remove present at capacity", []int64{1, 2}, 1, 2, []int64{2}, Removed, nil},
		{"remove keeps order", []int64{3, 1, 2}, 1, 5, []int64{3, 2}, Removed, nil},
		{"unlimited", []int64{1, 2, 3}, 4, Unlimited, []int64{1, 2, 3, 4}, Added, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome, err := Toggle(tt.members, tt.actor, tt.capacity)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if outcome != tt.outcome {
				t.Errorf("outcome = %v, want %v", outcome, tt.outcome)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("members = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	members := []int64{1, 2, 3}
	_, _, _ = Toggle(members, 2, 3)
	_, _, _ = Toggle(members[:2], 9, 3)
	if !reflect.DeepEqual(members, []int64{1, 2, 3}) {
		t.Fatalf("input mutated: %v", members)
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	members := []int64{4, 5}
	once, _, err := Toggle(members, 6, 10)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	twice, _, err := Toggle(once, 6, 10)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if !reflect.DeepEqual(twice, members) {
		t.Fatalf("got %v, want %v", twice, members)
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	got, err := Add([]int64{7}, 7, Unlimited)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
	if len(got) != 1 {
		t.Fatalf("collection changed: %v", got)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	members := []int64{1, 2}
	if got := Remove(members, 3); !reflect.DeepEqual(got, members) {
		t.Fatalf("got %v", got)
	}
}

func TestCapacityScenario(t *testing.T) {
	// capacity 1: A joins, B is rejected, A leaves, B joins.
	const a, b = int64(10), int64(20)
	rsvps, _, err := Toggle(nil, a, 1)
	if err != nil {
		t.Fatalf("A join: %v", err)
	}
	if _, _, err := Toggle(rsvps, b, 1); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("B join: err = %v", err)
	}
	rsvps, outcome, _ := Toggle(rsvps, a, 1)
	if outcome != Removed || len(rsvps) != 0 {
		t.Fatalf("A leave: %v %v", outcome, rsvps)
	}
	rsvps, _, err = Toggle(rsvps, b, 1)
	if err != nil || !reflect.DeepEqual(rsvps, []int64{b}) {
		t.Fatalf("B join after: %v %v", rsvps, err)
	}
}
