// Package clitest builds command contexts backed by a temporary sqlite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
)

// Setup returns an initialised context whose output is captured in the buffer.
func Setup(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "roadplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:     store,
		Directory: session.DefaultDirectory(),
		Notifier:  notifier.New(),
		ConfigDir: dir,
		Out:       &out,
	}
	return ctx, &out
}

// SignIn signs ctx in as email, failing the test on error.
func SignIn(t *testing.T, ctx *cli.Context, email string) {
	t.Helper()
	if _, err := ctx.SignIn(email); err != nil {
		t.Fatalf("failed to sign in as %s: %v", email, err)
	}
}

const (
	Provider    = "prestador@teste.pt"
	Manager     = "go@teste.pt"
	Coordinator = "cco@teste.pt"
	Admin       = "admin@teste.pt"
)
