// Package membership implements the capacity-bounded toggle shared by event
// RSVPs, job applications and post likes. The functions are pure: callers
// provide atomicity by running them while holding a lock on the parent
// record.
package membership

import "errors"

var (
	// ErrCapacityExceeded is returned when adding to a full collection.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrAlreadyMember is returned by Add when the actor is already present.
	ErrAlreadyMember = errors.New("already a member")
)

// Unlimited disables the capacity check.
const Unlimited = 0

// Outcome describes what a toggle did.
type Outcome int

const (
	Added Outcome = iota + 1
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Contains reports whether id is in members.
func Contains(members []int64, id int64) bool {
	return indexOf(members, id) >= 0
}

// Toggle removes actor if present, otherwise appends it when the collection
// has room. A capacity of Unlimited (or any value < 1) never rejects.
// The input slice is never modified; on error it is returned unchanged.
func Toggle(members []int64, actor int64, capacity int) ([]int64, Outcome, error) {
	if Contains(members, actor) {
		return Remove(members, actor), Removed, nil
	}
	next, err := Add(members, actor, capacity)
	if err != nil {
		return members, 0, err
	}
	return next, Added, nil
}

// Add appends actor, failing if it is already present or the collection is full.
func Add(members []int64, actor int64, capacity int) ([]int64, error) {
	if Contains(members, actor) {
		return members, ErrAlreadyMember
	}
	if capacity > Unlimited && len(members) >= capacity {
		return members, ErrCapacityExceeded
	}
	next := make([]int64, len(members), len(members)+1)
	copy(next, members)
	return append(next, actor), nil
}

// Remove drops actor from members. Removing an absent actor is a no-op.
func Remove(members []int64, actor int64) []int64 {
	idx := indexOf(members, actor)
	if idx < 0 {
		return members
	}
	next := make([]int64, 0, len(members)-1)
	next = append(next, members[:idx]...)
	return append(next, members[idx+1:]...)
}

func indexOf(members []int64, id int64) int {
	for i, m := range members {
		if m == id {
			return i
		}
	}
	return -1
}
