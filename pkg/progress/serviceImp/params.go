package serviceImp

import (
	"fmt"
	"strings"
	"time"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/progress/service"
)

// mergeParameters folds the legacy single triple (when any part of it is
// set) and the list into one list, then checks every entry.
func mergeParameters(in service.RecordInput, now time.Time) ([]entities.ProgressParameter, error) {
	var all []service.ParameterInput
	if in.ParameterName != "" || in.ParameterValue != "" || in.ParameterUnit != "" {
		all = append(all, service.ParameterInput{Name: in.ParameterName, Value: in.ParameterValue, Unit: in.ParameterUnit})
	}
	all = append(all, in.Parameters...)
	return buildParameters(all, now)
}

func buildParameters(list []service.ParameterInput, now time.Time) ([]entities.ProgressParameter, error) {
	out := make([]entities.ProgressParameter, 0, len(list))
	for i, p := range list {
		name, value, unit := strings.TrimSpace(p.Name), strings.TrimSpace(p.Value), strings.TrimSpace(p.Unit)
		var missing []string
		if name == "" {
			missing = append(missing, "name")
		}
		if value == "" {
			missing = append(missing, "value")
		}
		if unit == "" {
			missing = append(missing, "unit")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("parameter %d: %s required: %w", i, strings.Join(missing, ", "), apperr.ErrInvalidParameters)
		}
		at := now
		if p.RecordedAt != nil && !p.RecordedAt.IsZero() {
			at = *p.RecordedAt
		}
		out = append(out, entities.ProgressParameter{Name: name, Value: value, Unit: unit, RecordedAt: at})
	}
	return out, nil
}

func cleanURLs(list []string) []string {
	out := []string{}
	for _, u := range list {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
