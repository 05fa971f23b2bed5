// Package session resolves who is signed in and which operations their
// role may use. The plan store itself never checks roles.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/roadplan/internal/models"
)

var (
	ErrUnknownUser = errors.New("unknown user")
	ErrNotSignedIn = errors.New("not signed in")
	ErrForbidden   = errors.New("operation not allowed for role")
)

type Operation string

const (
	OpSubmit         Operation = "submit"
	OpResubmit       Operation = "resubmit"
	OpApprove        Operation = "approve"
	OpReject         Operation = "reject"
	OpToggleExternal Operation = "toggle_external"
	OpCalendar       Operation = "calendar"
	OpWeekly         Operation = "weekly"
	OpList           Operation = "list"
	OpBlocked        Operation = "blocked"
)

var permissions = map[models.Role]map[Operation]bool{
	models.RoleProvider: {
		OpSubmit: true, OpResubmit: true, OpList: true, OpBlocked: true,
	},
	models.RoleOperationsManager: {
		OpApprove: true, OpReject: true, OpCalendar: true, OpList: true, OpBlocked: true,
	},
	models.RoleCoordination: {
		OpWeekly: true, OpToggleExternal: true, OpList: true, OpBlocked: true,
	},
	models.RoleAdmin: {
		OpList: true, OpBlocked: true,
	},
}

// Allowed reports whether role may perform op.
func Allowed(role models.Role, op Operation) bool {
	return permissions[role][op]
}

// Directory maps sign-in e-mails to users.
type Directory struct {
	users map[string]models.User
}

// DefaultDirectory holds the built-in accounts, one per role.
func DefaultDirectory() *Directory {
	return NewDirectory(
		models.User{Name: "Service Provider", Email: "prestador@teste.pt", Role: models.RoleProvider},
		models.User{Name: "Operations Manager", Email: "go@teste.pt", Role: models.RoleOperationsManager},
		models.User{Name: "Coordination Centre", Email: "cco@teste.pt", Role: models.RoleCoordination},
		models.User{Name: "Administrator", Email: "admin@teste.pt", Role: models.RoleAdmin},
	)
}

func NewDirectory(users ...models.User) *Directory {
	d := &Directory{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		d.users[u.Email] = u
	}
	return d
}

// Lookup finds the user whose e-mail matches exactly.
func (d *Directory) Lookup(email string) (models.User, error) {
	u, ok := d.users[email]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", ErrUnknownUser, email)
	}
	return u, nil
}

// Users lists the directory sorted by e-mail.
func (d *Directory) Users() []models.User {
	out := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// Session is the signed-in user, if any.
type Session struct {
	User     models.User
	SignedIn bool
}

// Resolve turns a stored session e-mail into a Session. An empty e-mail is a signed-out session.
func (d *Directory) Resolve(email string) (Session, error) {
	if strings.TrimSpace(email) == "" {
		return Session{}, nil
	}
	u, err := d.Lookup(email)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, SignedIn: true}, nil
}

// Require checks the session may perform op.
func (s Session) Require(op Operation) error {
	if !s.SignedIn {
		return fmt.Errorf("%w: run 'roadplan login' first", ErrNotSignedIn)
	}
	if !Allowed(s.User.Role, op) {
		return fmt.Errorf("%w: %s cannot %s", ErrForbidden, s.User.Role.Label(), strings.ReplaceAll(string(op), "_", " "))
	}
	return nil
}
