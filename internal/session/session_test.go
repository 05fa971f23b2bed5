package session

import (
	"errors"
	"testing"

	"github.com/julianstephens/roadplan/internal/models"
)

func TestDefaultDirectoryLookup(t *testing.T) {
	d := DefaultDirectory()

	tests := []struct {
		email   string
		want    models.Role
		wantErr bool
	}{
		{"prestador@teste.pt", models.RoleProvider, false},
		{"go@teste.pt", models.RoleOperationsManager, false},
		{"cco@teste.pt", models.RoleCoordination, false},
		{"GO@teste.pt", "", true},
		{" cco@teste.pt ", "", true},
		{"admin@teste.pt", models.RoleAdmin, false},
		{"someone@teste.pt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			u, err := d.Lookup(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownUser) {
				t.Errorf("expected ErrUnknownUser, got %v", err)
			}
			if u.Role != tt.want {
				t.Errorf("Role = %q, want %q", u.Role, tt.want)
			}
		})
	}

	if got := len(d.Users()); got != 4 {
		t.Errorf("Users() has %d entries, want 4", got)
	}
}

func TestResolve(t *testing.T) {
	d := DefaultDirectory()

	s, err := d.Resolve("")
	if err != nil || s.SignedIn {
		t.Errorf("empty e-mail should resolve to signed-out session, got %+v, %v", s, err)
	}
	if err := s.Require(OpList); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Require() error = %v, want ErrNotSignedIn", err)
	}

	s, err = d.Resolve("go@teste.pt")
	if err != nil || !s.SignedIn {
		t.Fatalf("Resolve() = %+v, %v", s, err)
	}
	if err := s.Require(OpApprove); err != nil {
		t.Errorf("operations manager cannot approve: %v", err)
	}
	if err := s.Require(OpSubmit); !errors.Is(err, ErrForbidden) {
		t.Errorf("Require(submit) error = %v, want ErrForbidden", err)
	}

	if _, err := d.Resolve("ghost@teste.pt"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Resolve() error = %v, want ErrUnknownUser", err)
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role models.Role
		op   Operation
		want bool
	}{
		{models.RoleProvider, OpSubmit, true},
		{models.RoleProvider, OpApprove, false},
		{models.RoleOperationsManager, OpReject, true},
		{models.RoleOperationsManager, OpWeekly, false},
		{models.RoleCoordination, OpToggleExternal, true},
		{models.RoleCoordination, OpApprove, false},
		{models.RoleAdmin, OpList, true},
		{models.RoleAdmin, OpSubmit, false},
		{models.Role("guest"), OpList, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.op), func(t *testing.T) {
			if got := Allowed(tt.role, tt.op); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.op, got, tt.want)
			}
		})
	}
}
