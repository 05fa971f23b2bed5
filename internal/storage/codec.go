package storage

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/models"
)

// EncodeList serialises a tag list for a JSON column. nil becomes "[]".
func EncodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeList parses a JSON column back into a tag list. Empty lists decode to nil.
func DecodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// SettingsToMap flattens settings into the key/value rows of the settings table.
func SettingsToMap(s models.Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:     s.Timezone,
		constants.SettingFullDayStart: s.FullDayStart,
		constants.SettingFullDayEnd:   s.FullDayEnd,
		constants.SettingSessionEmail: s.SessionEmail,
	}
}

// ApplySetting sets the field named by key. Unknown keys are ignored.
func ApplySetting(s *models.Settings, key, value string) {
	switch key {
	case constants.SettingTimezone:
		s.Timezone = value
	case constants.SettingFullDayStart:
		s.FullDayStart = value
	case constants.SettingFullDayEnd:
		s.FullDayEnd = value
	case constants.SettingSessionEmail:
		s.SessionEmail = value
	}
}

// Assemble attaches activities and details, as loaded row by row, to their plans.
func Assemble(plans []models.WorkPlan, activities map[string][]models.Activity, details map[[2]string]map[string]models.DailyDetail) []models.WorkPlan {
	for i := range plans {
		acts := activities[plans[i].ID]
		for j := range acts {
			if d, ok := details[[2]string{plans[i].ID, acts[j].ID}]; ok {
				acts[j].DailyDetails = d
			}
		}
		plans[i].Activities = acts
	}
	return plans
}
