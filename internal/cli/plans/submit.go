package plans

import (
	"fmt"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/plandoc"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
)

type SubmitCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML plan document to submit."`
}

func (c *SubmitCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpSubmit)
	if err != nil {
		return err
	}
	doc, err := loadDoc(ctx, c.File)
	if err != nil {
		return err
	}

	var plan models.WorkPlan
	err = ctx.Mutate(func(store *planstore.Store) error {
		draft := store.NewDraft(models.WorkPlan{SubmittedBy: s.User.Email})
		if err := plandoc.Fill(doc, draft); err != nil {
			return err
		}
		plan, err = draft.Submit()
		return err
	})
	if err != nil {
		return err
	}

	ctx.Announce(plan, s.User.Email)
	ctx.Printf("Plan id: %s\n", plan.ID)
	return nil
}

type ResubmitCmd struct {
	ID   string `arg:"" help:"Plan to edit and resubmit."`
	File string `arg:"" type:"existingfile" help:"YAML plan document with the updated plan."`
}

func (c *ResubmitCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpResubmit)
	if err != nil {
		return err
	}
	doc, err := loadDoc(ctx, c.File)
	if err != nil {
		return err
	}

	var plan models.WorkPlan
	err = ctx.Mutate(func(store *planstore.Store) error {
		draft, err := store.EditDraft(c.ID)
		if err != nil {
			return err
		}
		if owner := draft.Header().SubmittedBy; owner != s.User.Email {
			return fmt.Errorf("%w: plan was submitted by %s", session.ErrForbidden, owner)
		}
		if err := plandoc.Fill(doc, draft); err != nil {
			return err
		}
		plan, err = draft.Submit()
		return err
	})
	if err != nil {
		return fmt.Errorf("resubmitting %s: %w", c.ID, err)
	}

	ctx.Announce(plan, s.User.Email)
	return nil
}

// loadDoc reads a plan document, applying the configured full-day window.
func loadDoc(ctx *cli.Context, path string) (*plandoc.Document, error) {
	doc, err := plandoc.Load(path)
	if err != nil {
		return nil, err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	doc.SetFullDayWindow(settings.FullDayStart, settings.FullDayEnd)
	return doc, nil
}
