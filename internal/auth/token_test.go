package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/alumnet/apiserver/types"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(types.User{ID: 42, Role: types.RoleAlumni})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
	if claims.Role != types.RoleAlumni {
		t.Errorf("role = %q, want alumni", claims.Role)
	}
	if claims.ID == "" {
		t.Error("jti should be set")
	}
}

func TestUniqueTokenIDs(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	a, _ := m.Issue(types.User{ID: 1})
	b, _ := m.Issue(types.User{ID: 1})
	ca, _ := m.Parse(a)
	cb, _ := m.Parse(b)
	if ca.ID == cb.ID {
		t.Fatal("expected distinct token ids")
	}
}

func TestParseExpired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue(types.User{ID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, _ := NewManager("secret-a", time.Hour).Issue(types.User{ID: 1})
	if _, err := NewManager("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := NewManager("s", time.Hour).Parse("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v", err)
	}
}
