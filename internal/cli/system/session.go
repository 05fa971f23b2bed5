package system

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/roadplan/internal/cli"
)

// LoginCmd signs a user in. Without an e-mail it prompts for one.
type LoginCmd struct {
	Email string `arg:"" optional:"" help:"E-mail of the account to sign in as."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	email := c.Email
	if email == "" {
		var err error
		if email, err = promptEmail(ctx); err != nil {
			return err
		}
	}

	u, err := ctx.SignIn(email)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Signed in as %s (%s)\n", u.Email, u.Role.Label())
	return nil
}

func promptEmail(ctx *cli.Context) (string, error) {
	users := ctx.Users()
	options := make([]huh.Option[string], len(users))
	for i, u := range users {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", u.Email, u.Role.Label()), u.Email)
	}

	var email string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in as").
				Options(options...).
				Value(&email),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errors.New("login cancelled")
		}
		return "", err
	}
	return email, nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.SignOut(); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	if !s.SignedIn {
		ctx.Println("Not signed in. Run 'roadplan login' first.")
		return nil
	}
	ctx.Printf("%s <%s>\n", s.User.Name, s.User.Email)
	ctx.Printf("Role: %s\n", s.User.Role.Label())
	return nil
}

type UsersCmd struct{}

func (c *UsersCmd) Run(ctx *cli.Context) error {
	for _, u := range ctx.Users() {
		ctx.Printf("  %-24s %-20s %s\n", u.Email, u.Role.Label(), u.Name)
	}
	return nil
}
