package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestLikePatternEscapes(t *testing.T) {
	tests := map[string]string{
		"go":      "%go%",
		" 100% ":  `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !isUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Error("wrapped unique violation not detected")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation reported as unique")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique")
	}
}
