package review

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/artem13815/brandreview/pkg/brand"
	"github.com/artem13815/brandreview/pkg/llm"
	"github.com/artem13815/brandreview/pkg/nlp"
)

// DefaultMaxScores are used when the model omits a category's maxScore.
var DefaultMaxScores = map[string]float64{
	nlp.CategoryLogo:          25,
	nlp.CategoryColors:        25,
	nlp.CategoryTypography:    20,
	nlp.CategoryAccessibility: 20,
	nlp.CategoryLayout:        10,
}

// resultSchema accepts the loose shapes models actually produce; decoding tightens them.
const resultSchema = `{
  "type": "object",
  "required": ["complianceScore"],
  "properties": {
    "complianceScore": {"type": ["number", "string"], "pattern": "[0-9]"},
    "grade": {"type": ["string", "null"]},
    "status": {"type": ["string", "null"]},
    "passOrFail": {"type": ["string", "null"]},
    "categoryScores": {"type": ["object", "null"]},
    "violations": {"type": ["array", "null"], "items": {"type": ["object", "string"]}},
    "warnings": {"type": ["array", "null"], "items": {"type": ["object", "string"]}},
    "recommendations": {"type": ["array", "null"], "items": {"type": ["object", "string"]}},
    "summary": {"type": ["string", "null"]}
  }
}`

var compiledSchema = mustSchema(resultSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("review: bad result schema: %v", err))
	}
	return schema
}

var reNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseResult turns a model reply into a normalized Result. It never fails on
// malformed content; only an empty reply is an error.
func ParseResult(raw string, scale brand.GradingScale) (Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{}, llm.ErrEmptyResponse
	}
	body := stripFences(text)

	if res, ok := decodeStrict(body); ok {
		res.ParseMode = ParseModeJSON
		return normalize(res, scale, true), nil
	}
	if res, ok := decodeEmbedded(body); ok {
		res.ParseMode = ParseModeExtracted
		return normalize(res, scale, true), nil
	}

	res, scoreFound := extractFallback(body)
	res.ParseMode = ParseModeRegex
	res.Partial = true
	return normalize(res, scale, scoreFound), nil
}

// stripFences removes a Markdown code fence; a missing closing fence is tolerated.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "`")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeEmbedded finds the first JSON object inside prose that passes the
// result schema. Text after the object is ignored, braces in it included.
func decodeEmbedded(s string) (Result, bool) {
	for off := 0; off < len(s); {
		i := strings.IndexByte(s[off:], '{')
		if i < 0 {
			break
		}
		start := off + i
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&obj); err == nil {
			if res, ok := decodeStrict(string(obj)); ok {
				return res, true
			}
		}
		off = start + 1
	}
	return Result{}, false
}

// decodeStrict succeeds only for a JSON object that passes the result schema.
func decodeStrict(s string) (Result, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return Result{}, false
	}
	vr, err := compiledSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil || !vr.Valid() {
		return Result{}, false
	}
	var w wireResult
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return Result{}, false
	}
	return w.result(), true
}

type wireResult struct {
	ComplianceScore flexNumber              `json:"complianceScore"`
	Grade           string                  `json:"grade"`
	Status          string                  `json:"status"`
	PassOrFail      string                  `json:"passOrFail"`
	CategoryScores  map[string]flexCategory `json:"categoryScores"`
	Violations      []Violation             `json:"violations"`
	Warnings        []Warning               `json:"warnings"`
	Recommendations []flexText              `json:"recommendations"`
	Summary         string                  `json:"summary"`
}

func (w wireResult) result() Result {
	r := Result{
		ComplianceScore: float64(w.ComplianceScore),
		Grade:           w.Grade,
		Status:          w.Status,
		PassOrFail:      w.PassOrFail,
		CategoryScores:  make(map[string]CategoryScore, len(w.CategoryScores)),
		Violations:      w.Violations,
		Warnings:        w.Warnings,
		Summary:         w.Summary,
	}
	for name, c := range w.CategoryScores {
		r.CategoryScores[categoryKey(name)] = CategoryScore(c)
	}
	for _, t := range w.Recommendations {
		r.Recommendations = append(r.Recommendations, string(t))
	}
	return r
}

// flexNumber accepts 85, "85", "85%" and "85/100".
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// null and other shapes decode as zero
		*n = 0
		return nil
	}
	f, _ = firstNumber(s)
	*n = flexNumber(f)
	return nil
}

// flexCategory accepts {"score":20,"maxScore":25}, 20 and "20/25".
type flexCategory CategoryScore

func (c *flexCategory) UnmarshalJSON(b []byte) error {
	var obj struct {
		Score    flexNumber `json:"score"`
		MaxScore flexNumber `json:"maxScore"`
		Max      flexNumber `json:"max"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		maxScore := float64(obj.MaxScore)
		if maxScore == 0 {
			maxScore = float64(obj.Max)
		}
		*c = flexCategory{Score: float64(obj.Score), MaxScore: maxScore}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		nums := reNumber.FindAllString(s, 2)
		var out flexCategory
		if len(nums) > 0 {
			out.Score, _ = strconv.ParseFloat(nums[0], 64)
		}
		if len(nums) > 1 && strings.Contains(s, "/") {
			out.MaxScore, _ = strconv.ParseFloat(nums[1], 64)
		}
		*c = out
		return nil
	}
	var f flexNumber
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*c = flexCategory{Score: float64(f)}
	return nil
}

// flexText accepts a string or an object with a text-like field.
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = flexText(s)
		return nil
	}
	var obj struct {
		Description    string `json:"description"`
		Recommendation string `json:"recommendation"`
		Text           string `json:"text"`
		Action         string `json:"action"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = flexText(firstNonEmpty(obj.Description, obj.Recommendation, obj.Text, obj.Action))
	return nil
}

func firstNumber(s string) (float64, bool) {
	m := reNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	return f, err == nil
}

func categoryKey(name string) string {
	if c, ok := nlp.CanonicalCategory(name); ok {
		return c
	}
	return strings.ReplaceAll(nlp.Normalize(name), " ", "_")
}

// normalize clamps numbers and fills every derived field. When scoreKnown is
// false the verdict is held at NEEDS_REVISION instead of being derived from 0.
func normalize(r Result, scale brand.GradingScale, scoreKnown bool) Result {
	r.ComplianceScore = clamp(r.ComplianceScore, 0, 100)
	if math.IsNaN(r.ComplianceScore) {
		r.ComplianceScore = 0
	}

	if r.CategoryScores == nil {
		r.CategoryScores = map[string]CategoryScore{}
	}
	for name, c := range r.CategoryScores {
		if c.MaxScore <= 0 {
			c.MaxScore = DefaultMaxScores[name]
		}
		if c.MaxScore > 0 {
			c.Score = clamp(c.Score, 0, c.MaxScore)
		} else {
			c.Score = math.Max(c.Score, 0)
		}
		r.CategoryScores[name] = c
	}

	violations := make([]Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		v.Description = strings.TrimSpace(v.Description)
		if v.Description == "" {
			continue
		}
		v.RuleID = strings.TrimSpace(v.RuleID)
		v.Severity = normalizeSeverity(v.Severity)
		violations = append(violations, v)
	}
	r.Violations = violations

	warnings := make([]Warning, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		if d := strings.TrimSpace(w.Description); d != "" {
			warnings = append(warnings, Warning{Description: d})
		}
	}
	r.Warnings = warnings

	recs := make([]string, 0, len(r.Recommendations))
	for _, s := range r.Recommendations {
		if s = strings.TrimSpace(s); s != "" {
			recs = append(recs, s)
		}
	}
	r.Recommendations = recs
	r.Summary = strings.TrimSpace(r.Summary)

	r.Grade = strings.ToUpper(strings.TrimSpace(r.Grade))
	if !scale.HasGrade(r.Grade) {
		r.Grade = scale.GradeFor(r.ComplianceScore)
	}
	r.Status = normalizeStatus(r.Status)
	switch {
	case r.Status == "" && scoreKnown:
		r.Status = scale.StatusFor(r.ComplianceScore, r.HasCritical())
	case r.Status == "":
		r.Status = brand.StatusNeedsRevision
	case r.HasCritical() && (r.Status == brand.StatusApproved || r.Status == brand.StatusApprovedWithNotes):
		// a critical violation never approves, whatever the model wrote
		r.Status = brand.StatusNeedsRevision
	}
	r.PassOrFail = strings.ToUpper(strings.TrimSpace(r.PassOrFail))
	if r.PassOrFail != "PASS" && r.PassOrFail != "FAIL" {
		r.PassOrFail = scale.Passed(r.ComplianceScore)
	}
	return r
}

func normalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SeverityCritical, "high", "severe", "blocker":
		return SeverityCritical
	case SeverityMinor, "low":
		return SeverityMinor
	default:
		return SeverityMajor
	}
}

func normalizeStatus(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case brand.StatusApproved, brand.StatusApprovedWithNotes, brand.StatusNeedsRevision, brand.StatusRejected:
		return s
	}
	return ""
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(math.Max(f, lo), hi)
}
