package report

import (
	"strings"
	"time"

	"campus_care_backend/internal/common"
)

const dateLayout = "2006-01-02"

// ParseFilter reads YYYY-MM-DD or RFC 3339 bounds. A date-only end covers the whole day.
func ParseFilter(q ExportQuery) (Filter, error) {
	f := Filter{Department: strings.TrimSpace(q.Department)}

	if raw := strings.TrimSpace(q.StartDate); raw != "" {
		t, _, err := parseBound(raw)
		if err != nil {
			return Filter{}, common.ValidationFailure("startDate", "Expected YYYY-MM-DD or RFC 3339")
		}
		f.Start = &t
	}
	if raw := strings.TrimSpace(q.EndDate); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			return Filter{}, common.ValidationFailure("endDate", "Expected YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.End = &t
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return Filter{}, common.ValidationFailure("endDate", "End date must not be before start date")
	}
	return f, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
