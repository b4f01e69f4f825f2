package review

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("review not found")
	ErrEmptyQuery        = errors.New("query is required")
	ErrInvalidSubmission = errors.New("submission needs an image or document text")
	ErrEmptyQuestion     = errors.New("question is required")
)

// Parse modes reported on a Result.
const (
	ParseModeJSON      = "json"
	ParseModeExtracted = "extracted"
	ParseModeRegex     = "regex"
)

const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

type CategoryScore struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

type Violation struct {
	RuleID      string `json:"ruleId"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// UnmarshalJSON принимает как объект, так и простую строку-описание.
func (v *Violation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Violation{Description: s}
		return nil
	}
	var raw struct {
		RuleID      string `json:"ruleId"`
		Rule        string `json:"rule"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Message     string `json:"message"`
		Issue       string `json:"issue"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = Violation{
		RuleID:      firstNonEmpty(raw.RuleID, raw.Rule),
		Severity:    raw.Severity,
		Description: firstNonEmpty(raw.Description, raw.Message, raw.Issue),
	}
	return nil
}

type Warning struct {
	Description string `json:"description"`
}

func (w *Warning) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		w.Description = s
		return nil
	}
	var raw struct {
		Description string `json:"description"`
		Message     string `json:"message"`
		Text        string `json:"text"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	w.Description = firstNonEmpty(raw.Description, raw.Message, raw.Text)
	return nil
}

// Result is the normalized compliance verdict.
type Result struct {
	ComplianceScore float64                  `json:"complianceScore"`
	Grade           string                   `json:"grade"`
	Status          string                   `json:"status"`
	PassOrFail      string                   `json:"passOrFail"`
	CategoryScores  map[string]CategoryScore `json:"categoryScores"`
	Violations      []Violation              `json:"violations"`
	Warnings        []Warning                `json:"warnings"`
	Recommendations []string                 `json:"recommendations"`
	Summary         string                   `json:"summary"`
	ParseMode       string                   `json:"parseMode"`
	Partial         bool                     `json:"partial"`
}

func (r Result) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Query is a raw agent request as sent by the front-end.
type Query struct {
	AgentID string
	BrandID string
	Text    string
}

// Answer is what Ask returns. Result is set only for review-mode replies.
type Answer struct {
	Response string
	Result   *Result
	Cached   bool
	Mode     string
}

// Submission is a structured design upload.
type Submission struct {
	BrandID      string `json:"brandId"`
	DesignType   string `json:"designType"`
	SubmittedBy  string `json:"submittedBy"`
	Notes        string `json:"notes"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	ImageBase64  string `json:"imageBase64"`
	DocumentText string `json:"documentText"`
}

// Review: сохранённый результат проверки макета.
type Review struct {
	ID          uuid.UUID `json:"id"`
	BrandID     string    `json:"brandId"`
	DesignType  string    `json:"designType"`
	SubmittedBy string    `json:"submittedBy"`
	Notes       string    `json:"notes"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	Model       string    `json:"model"`
	Result      Result    `json:"result"`
	RawResponse string    `json:"rawResponse"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository: порт для сохранения/чтения проверок.
type Repository interface {
	Create(ctx context.Context, r Review) (Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (Review, error)
	// brandID == "" lists all brands
	List(ctx context.Context, brandID string, limit, offset int) ([]Review, error)
}

// Cache stores raw model replies by request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
