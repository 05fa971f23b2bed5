package dashboard

import (
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/utils"
)

// BlockedCmd lists the days taken by confirmed plans
type BlockedCmd struct {
	From string `help:"First day to show (YYYY-MM-DD)."`
	To   string `help:"Last day to show (YYYY-MM-DD)."`
}

func (c *BlockedCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpBlocked); err != nil {
		return err
	}
	from, to, err := c.bounds()
	if err != nil {
		return err
	}

	store, err := ctx.Plans()
	if err != nil {
		return err
	}

	var days []string
	for _, key := range store.BlockedDates().Sorted() {
		if (from != "" && key < from) || (to != "" && key > to) {
			continue
		}
		days = append(days, key)
	}

	if len(days) == 0 {
		ctx.Println("No blocked dates.")
		return nil
	}
	ctx.Printf("Blocked dates (%d):\n", len(days))
	for _, key := range days {
		ctx.Printf("  %s\n", utils.LabelForKey(key))
	}
	return nil
}

// bounds canonicalises the optional range flags.
func (c *BlockedCmd) bounds() (string, string, error) {
	var from, to string
	if c.From != "" {
		d, err := utils.ParseDay(c.From)
		if err != nil {
			return "", "", err
		}
		from = utils.DayKey(d)
	}
	if c.To != "" {
		d, err := utils.ParseDay(c.To)
		if err != nil {
			return "", "", err
		}
		to = utils.DayKey(d)
	}
	return from, to, nil
}
