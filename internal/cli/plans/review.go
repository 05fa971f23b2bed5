package plans

import (
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
)

type ApproveCmd struct {
	ID string `arg:"" help:"Pending plan to approve."`
}

func (c *ApproveCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpApprove)
	if err != nil {
		return err
	}

	var plan models.WorkPlan
	err = ctx.Mutate(func(store *planstore.Store) error {
		plan, err = store.Approve(c.ID)
		return err
	})
	if err != nil {
		return err
	}

	ctx.Announce(plan, s.User.Email)
	return nil
}

type RejectCmd struct {
	ID      string `arg:"" help:"Pending plan to reject."`
	Comment string `short:"m" help:"Reason shown to the provider."`
}

func (c *RejectCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpReject)
	if err != nil {
		return err
	}

	var plan models.WorkPlan
	err = ctx.Mutate(func(store *planstore.Store) error {
		plan, err = store.Reject(c.ID, c.Comment)
		return err
	})
	if err != nil {
		return err
	}

	ctx.Announce(plan, s.User.Email)
	return nil
}

// ExternalCmd flips the "inserted into the external system" mark on a confirmed plan
type ExternalCmd struct {
	ID string `arg:"" help:"Confirmed plan to mark or unmark."`
}

func (c *ExternalCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpToggleExternal); err != nil {
		return err
	}

	var plan models.WorkPlan
	err := ctx.Mutate(func(store *planstore.Store) error {
		var err error
		plan, err = store.ToggleExternalSystem(c.ID)
		return err
	})
	if err != nil {
		return err
	}

	if plan.InExternalSystem {
		ctx.Printf("✓ %s marked as inserted in the external system\n", plan.Title())
	} else {
		ctx.Printf("✓ %s no longer marked as inserted in the external system\n", plan.Title())
	}
	return nil
}
