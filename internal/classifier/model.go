package classifier

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"campus_care_backend/internal/domain"
)

// Classifier infers category, priority, severity and duplicate status for an image.
// Implementations never fail: transport problems yield the fallback prediction.
type Classifier interface {
	Classify(ctx context.Context, in Input) *Prediction
}

// Input is one classification request.
type Input struct {
	Image          []byte
	Note           string
	ExistingImages []string
}

// DuplicateMatch is the classifier's verdict against the candidate set.
type DuplicateMatch struct {
	IsDuplicate        bool    `json:"is_duplicate"`
	SimilarityScore    float64 `json:"similarity_score"`
	SimilarComplaintID *string `json:"similar_complaint_id"`
}

// UnmarshalJSON accepts the matched id as a string or a number.
func (d *DuplicateMatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsDuplicate        bool            `json:"is_duplicate"`
		SimilarityScore    float64         `json:"similarity_score"`
		SimilarComplaintID json.RawMessage `json:"similar_complaint_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.IsDuplicate = raw.IsDuplicate
	d.SimilarityScore = raw.SimilarityScore
	d.SimilarComplaintID = nil

	id := strings.TrimSpace(string(raw.SimilarComplaintID))
	if id == "" || id == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.SimilarComplaintID, &s); err == nil {
		d.SimilarComplaintID = &s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.SimilarComplaintID, &n); err != nil {
		return err
	}
	s = n.String()
	d.SimilarComplaintID = &s
	return nil
}

// Prediction is the normalized classifier output.
type Prediction struct {
	Category    domain.Category `json:"category"`
	Priority    domain.Priority `json:"priority"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
	Duplicate   DuplicateMatch  `json:"duplicate"`
	// Fallback is set when the prediction was substituted after an upstream failure.
	Fallback bool `json:"-"`
}

// DefaultDescription is used by the fallback when the user left no note.
const DefaultDescription = "Damage reported"

// FallbackPrediction is returned whenever the ML service cannot answer.
func FallbackPrediction(note string) *Prediction {
	desc := strings.TrimSpace(note)
	if desc == "" {
		desc = DefaultDescription
	}
	return &Prediction{
		Category:    domain.DefaultCategory,
		Priority:    domain.DefaultPriority,
		Severity:    domain.DefaultSeverity,
		Description: desc,
		Duplicate:   DuplicateMatch{},
		Fallback:    true,
	}
}

// wirePrediction mirrors the ML service response before enum normalization.
type wirePrediction struct {
	Category    string         `json:"category"`
	Priority    string         `json:"priority"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	Duplicate   DuplicateMatch `json:"duplicate"`
}

// normalize maps free-form classifier strings onto the enums. Unknown or empty
// values become the zero value so callers apply their own defaults.
func (w wirePrediction) normalize() *Prediction {
	p := &Prediction{Description: w.Description, Duplicate: w.Duplicate}
	if c, ok := domain.ParseCategory(w.Category); ok {
		p.Category = c
	}
	if pr, ok := domain.ParsePriority(w.Priority); ok {
		p.Priority = pr
	}
	if s, ok := domain.ParseSeverity(w.Severity); ok {
		p.Severity = s
	}
	return p
}

// MatchLabel renders the matched id for logs.
func (d DuplicateMatch) MatchLabel() string {
	if d.SimilarComplaintID == nil {
		return ""
	}
	return *d.SimilarComplaintID
}

// ScoreLabel renders the similarity score with two decimals.
func (d DuplicateMatch) ScoreLabel() string {
	return strconv.FormatFloat(d.SimilarityScore, 'f', 2, 64)
}
