package storage

import (
	"errors"

	"github.com/julianstephens/roadplan/internal/models"
)

var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Plans
	// SavePlan writes the plan with its activities and daily details,
	// replacing any previous version, and appends to the status history
	// when the status changed.
	SavePlan(models.WorkPlan) error
	GetPlan(id string) (models.WorkPlan, error)
	GetAllPlans() ([]models.WorkPlan, error)
	GetPlanHistory(id string) ([]models.StatusChange, error)

	// Utils
	GetConfigPath() string
}
