// Package notifier tells interested parties when a plan changes status.
// Delivery is best effort: a failed publish is logged and never undoes the
// change that triggered it.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/models"
)

// Event describes one plan status change.
type Event struct {
	PlanID      string            `json:"plan_id"`
	Number      string            `json:"number"`
	Status      models.PlanStatus `json:"status"`
	Comment     string            `json:"comment,omitempty"`
	SubmittedBy string            `json:"submitted_by,omitempty"`
	Actor       string            `json:"actor,omitempty"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	At          time.Time         `json:"at"`
}

// NewEvent builds the event for a plan that has just reached its current status.
func NewEvent(plan models.WorkPlan, actor string) Event {
	title, message := Describe(plan.Status)
	at := plan.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		PlanID:      plan.ID,
		Number:      plan.Number,
		Status:      plan.Status,
		Comment:     plan.RejectionComment,
		SubmittedBy: plan.SubmittedBy,
		Actor:       actor,
		Title:       title,
		Message:     message,
		At:          at,
	}
}

// Describe returns the notification title and message for a status.
func Describe(status models.PlanStatus) (string, string) {
	switch status {
	case models.PlanStatusConfirmed:
		return "Plan approved!", "The plan was approved and its dates are now blocked in the calendar."
	case models.PlanStatusRejected:
		return "Plan rejected", "The plan was rejected. The provider has been notified."
	default:
		return "Plan submitted", "Work plan submitted successfully. Status: " + models.PlanStatusPending.Label()
	}
}

// Subject is the message subject for events of the given status.
func Subject(status models.PlanStatus) string {
	return fmt.Sprintf("%s.%s", constants.NotifySubjectPrefix, status)
}

// Publisher delivers events to one destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Notifier struct {
	publishers []Publisher
	timeout    time.Duration
}

// New returns a notifier fanning out to publishers. With none it only logs.
func New(publishers ...Publisher) *Notifier {
	if len(publishers) == 0 {
		publishers = []Publisher{LogPublisher{}}
	}
	return &Notifier{publishers: publishers, timeout: constants.NotifyTimeout}
}

// Notify publishes e everywhere, waiting at most the notify timeout per
// publisher. Failures are logged and joined into the returned error.
func (n *Notifier) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range n.publishers {
		pctx, cancel := context.WithTimeout(ctx, n.timeout)
		err := p.Publish(pctx, e)
		cancel()
		if err != nil {
			logger.Warn("notification failed", "publisher", p.Name(), "plan", e.PlanID, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		logger.Debug("notification sent", "publisher", p.Name(), "plan", e.PlanID, "status", e.Status)
	}
	return errors.Join(errs...)
}

func (n *Notifier) Close() error {
	var errs []error
	for _, p := range n.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes events to the application log.
type LogPublisher struct{}

func (LogPublisher) Name() string { return "log" }

func (LogPublisher) Publish(_ context.Context, e Event) error {
	logger.Info(e.Title, "plan", e.PlanID, "number", e.Number, "status", e.Status, "submitted_by", e.SubmittedBy, "comment", e.Comment)
	return nil
}

func (LogPublisher) Close() error { return nil }
