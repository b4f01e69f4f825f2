package brand

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
)

var (
	ErrBrandNotFound  = errors.New("brand rules not found")
	ErrInvalidBrandID = errors.New("invalid brand id")
)

// Rules mirrors brand-rules.json. Only the fields the prompt needs are typed;
// the full document is kept in Raw for the guidelines panel.
type Rules struct {
	BrandID       string        `json:"brandId"`
	BrandName     string        `json:"brandName"`
	Logo          Logo          `json:"logo"`
	Colors        Colors        `json:"colors"`
	Typography    Typography    `json:"typography"`
	Accessibility Accessibility `json:"accessibility"`

	Raw json.RawMessage `json:"-"`
}

var reMeasure = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Measure is a numeric brand setting that files write as 16, "16" or "16px".
// Values without a number decode as zero and are treated as unset.
type Measure float64

func (m *Measure) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*m = Measure(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*m = 0
		return nil
	}
	f, _ = strconv.ParseFloat(reMeasure.FindString(s), 64)
	*m = Measure(f)
	return nil
}

type Rule struct {
	RuleID      string   `json:"ruleId"`
	Name        string   `json:"name"`
	Requirement string   `json:"requirement"`
	MinValue    *Measure `json:"minValue,omitempty"`
}

type Logo struct {
	Rules        []Rule   `json:"rules"`
	Prohibitions []string `json:"prohibitions"`
}

type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type ProhibitedColor struct {
	Hex    string `json:"hex"`
	Reason string `json:"reason"`
}

type Colors struct {
	Palette struct {
		Primary   []Swatch `json:"primary"`
		Secondary []Swatch `json:"secondary"`
		Accent    []Swatch `json:"accent"`
	} `json:"palette"`
	ProhibitedColors []ProhibitedColor `json:"prohibitedColors"`
}

type Typography struct {
	Fonts struct {
		Primary struct {
			Family    string   `json:"family"`
			Fallbacks []string `json:"fallbacks"`
		} `json:"primary"`
	} `json:"fonts"`
	Scale struct {
		Body struct {
			Size *Measure `json:"size"`
		} `json:"body"`
	} `json:"scale"`
	Rules []Rule `json:"rules"`
}

type Accessibility struct {
	Standard string `json:"standard"`
	Rules    []Rule `json:"rules"`
}

// Category is one weighted scoring bucket of the rubric.
type Category struct {
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Rubric mirrors scoring-rubric.json.
type Rubric struct {
	Categories   map[string]Category `json:"categories"`
	GradingScale struct {
		PassThreshold *float64 `json:"passThreshold"`
	} `json:"gradingScale"`
}

// Data is everything needed to build a brand prompt and grade a result.
type Data struct {
	Rules  Rules
	Rubric Rubric
	Scale  GradingScale
}

// Repository: порт чтения брендовых правил.
type Repository interface {
	Load(ctx context.Context, brandID string) (Data, error)
	RawRules(ctx context.Context, brandID string) ([]byte, error)
}
