// Package domain holds the complaint vocabulary shared by the classifier
// client and the complaint lifecycle.
package domain

import "strings"

// Category of damaged facility.
type Category string

const (
	CategoryChair     Category = "Chair"
	CategoryBench     Category = "Bench"
	CategoryProjector Category = "Projector"
	CategorySocket    Category = "Socket"
	CategoryPipe      Category = "Pipe"
	CategoryOther     Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryChair, CategoryBench, CategoryProjector, CategorySocket, CategoryPipe, CategoryOther}

// Priority of a complaint. Only the classifier or an admin sets it.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Severity of the reported damage.
type Severity string

const (
	SeverityMinor     Severity = "Minor"
	SeverityModerate  Severity = "Moderate"
	SeveritySevere    Severity = "Severe"
	SeverityHazardous Severity = "Hazardous"
)

var Severities = []Severity{SeverityMinor, SeverityModerate, SeveritySevere, SeverityHazardous}

// Status of a complaint in its lifecycle.
type Status string

const (
	StatusSubmitted  Status = "Submitted"
	StatusInProgress Status = "In-Progress"
	StatusResolved   Status = "Resolved"
)

var Statuses = []Status{StatusSubmitted, StatusInProgress, StatusResolved}

// Defaults applied when neither the user nor the classifier supplies a value.
const (
	DefaultCategory = CategoryOther
	DefaultPriority = PriorityMedium
	DefaultSeverity = SeverityModerate
)

func (c Category) Valid() bool { return contains(Categories, c) }
func (p Priority) Valid() bool { return contains(Priorities, p) }
func (s Severity) Valid() bool { return contains(Severities, s) }
func (s Status) Valid() bool   { return contains(Statuses, s) }

// ParseCategory matches raw case-insensitively. ok is false for unknown values.
func ParseCategory(raw string) (Category, bool) { return parse(Categories, raw) }
func ParsePriority(raw string) (Priority, bool) { return parse(Priorities, raw) }
func ParseSeverity(raw string) (Severity, bool) { return parse(Severities, raw) }
func ParseStatus(raw string) (Status, bool)     { return parse(Statuses, raw) }

func contains[T ~string](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func parse[T ~string](set []T, raw string) (T, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range set {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	var zero T
	return zero, false
}

// OneOf renders a set as a validator oneof parameter list.
func OneOf[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}
