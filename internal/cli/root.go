package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/backup"
	"github.com/julianstephens/roadplan/internal/lock"
	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/storage"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
	"github.com/julianstephens/roadplan/internal/validation"
)

type Context struct {
	Store     storage.Provider
	Directory *session.Directory
	Notifier  *notifier.Notifier
	ConfigDir string
	Out       io.Writer

	plans *planstore.Store
}

// Writer is where command output goes, stdout unless Out is set.
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Writer(), args...)
}

// Plans returns the plan store, loading it from storage on first use.
func (c *Context) Plans() (*planstore.Store, error) {
	if c.plans != nil {
		return c.plans, nil
	}
	s, err := planstore.Load(c.Store)
	if err != nil {
		return nil, err
	}
	c.plans = s
	return s, nil
}

func (c *Context) directory() *session.Directory {
	if c.Directory == nil {
		c.Directory = session.DefaultDirectory()
	}
	return c.Directory
}

// Session resolves the signed-in user from settings.
func (c *Context) Session() (session.Session, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return c.directory().Resolve(settings.SessionEmail)
}

// Require resolves the session and checks it may perform op.
func (c *Context) Require(op session.Operation) (session.Session, error) {
	s, err := c.Session()
	if err != nil {
		return session.Session{}, err
	}
	if err := s.Require(op); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

// SignIn stores email as the session user.
func (c *Context) SignIn(email string) (models.User, error) {
	u, err := c.directory().Lookup(email)
	if err != nil {
		return models.User{}, err
	}
	if err := c.setSessionEmail(u.Email); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (c *Context) SignOut() error {
	return c.setSessionEmail("")
}

func (c *Context) setSessionEmail(email string) error {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	settings.SessionEmail = email
	return c.Store.SaveSettings(settings)
}

func (c *Context) Users() []models.User {
	return c.directory().Users()
}

// Mutate runs fn while holding the instance lock.
func (c *Context) Mutate(fn func(*planstore.Store) error) error {
	return c.Exclusive(func() error {
		plans, err := c.Plans()
		if err != nil {
			return err
		}
		return fn(plans)
	})
}

// Exclusive runs fn while holding the data directory lock.
func (c *Context) Exclusive(fn func() error) error {
	l, err := lock.Acquire(c.lockDir())
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()
	return fn()
}

func (c *Context) lockDir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	return filepath.Dir(c.Store.GetConfigPath())
}

// Announce prints the outcome of a status change and publishes it.
// Publish failures are logged only.
func (c *Context) Announce(plan models.WorkPlan, actor string) {
	e := notifier.NewEvent(plan, actor)
	c.Printf("%s %s\n", color.GreenString("✓ %s", e.Title), e.Message)
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Notify(context.Background(), e); err != nil {
		logger.Debug("Some notifications were not delivered", "error", err)
	}
}

// Report prints a refused operation. Validation outcomes get their full report.
func (c *Context) Report(err error) {
	if res, ok := validation.AsResult(err); ok {
		c.Printf("%s\n", color.RedString("✗ %s", res.Title))
		c.Printf("%s", res.FormatReport())
		return
	}
	c.Printf("%s\n", color.RedString("✗ %v", err))
}

// PerformAutomaticBackup snapshots a sqlite database before a risky change.
// Other backends are skipped.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// StatusString renders a plan status in its colour.
func StatusString(s models.PlanStatus) string {
	switch s {
	case models.PlanStatusConfirmed:
		return color.GreenString(s.Label())
	case models.PlanStatusRejected:
		return color.RedString(s.Label())
	default:
		return color.YellowString(s.Label())
	}
}
