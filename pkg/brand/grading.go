package brand

import "sort"

const DefaultPassThreshold = 70

// Review statuses returned by the model and derived from the score.
const (
	StatusApproved          = "APPROVED"
	StatusApprovedWithNotes = "APPROVED_WITH_NOTES"
	StatusNeedsRevision     = "NEEDS_REVISION"
	StatusRejected          = "REJECTED"
)

// Grade is one band of the shared grading scale.
type Grade struct {
	Grade    string  `json:"grade"`
	MinScore float64 `json:"minScore"`
	Label    string  `json:"label,omitempty"`
}

// GradingScale mirrors shared/grading-scale.json.
type GradingScale struct {
	Threshold *float64 `json:"passThreshold"`
	Grades    []Grade  `json:"grades"`
}

var defaultGrades = []Grade{
	{Grade: "A", MinScore: 90, Label: "Excellent"},
	{Grade: "B", MinScore: 80, Label: "Good"},
	{Grade: "C", MinScore: 70, Label: "Acceptable"},
	{Grade: "D", MinScore: 60, Label: "Poor"},
	{Grade: "F", MinScore: 0, Label: "Failing"},
}

func (s GradingScale) PassThreshold() float64 {
	if s.Threshold != nil {
		return *s.Threshold
	}
	return DefaultPassThreshold
}

// GradeFor returns the letter of the highest band whose minimum the score reaches.
func (s GradingScale) GradeFor(score float64) string {
	grades := s.Grades
	if len(grades) == 0 {
		grades = defaultGrades
	}
	sorted := make([]Grade, len(grades))
	copy(sorted, grades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })
	for _, g := range sorted {
		if score >= g.MinScore {
			return g.Grade
		}
	}
	return sorted[len(sorted)-1].Grade
}

// HasGrade reports whether g is one of the scale's letters.
func (s GradingScale) HasGrade(g string) bool {
	grades := s.Grades
	if len(grades) == 0 {
		grades = defaultGrades
	}
	for _, x := range grades {
		if x.Grade == g {
			return true
		}
	}
	return false
}

// StatusFor maps a score onto the four review statuses. A critical violation
// caps the outcome at NEEDS_REVISION.
func (s GradingScale) StatusFor(score float64, hasCritical bool) string {
	pass := s.PassThreshold()
	var status string
	switch {
	case score >= 90:
		status = StatusApproved
	case score >= pass:
		status = StatusApprovedWithNotes
	case score >= pass-20:
		status = StatusNeedsRevision
	default:
		status = StatusRejected
	}
	if hasCritical && (status == StatusApproved || status == StatusApprovedWithNotes) {
		return StatusNeedsRevision
	}
	return status
}

// Passed reports PASS/FAIL against the threshold.
func (s GradingScale) Passed(score float64) string {
	if score >= s.PassThreshold() {
		return "PASS"
	}
	return "FAIL"
}

// PassThreshold resolves the effective threshold: rubric first, then the shared scale.
func (d *Data) PassThreshold() float64 {
	if d == nil {
		return DefaultPassThreshold
	}
	if d.Rubric.GradingScale.PassThreshold != nil {
		return *d.Rubric.GradingScale.PassThreshold
	}
	return d.Scale.PassThreshold()
}

// EffectiveScale is the shared scale with the rubric's threshold applied.
func (d *Data) EffectiveScale() GradingScale {
	if d == nil {
		return GradingScale{}
	}
	s := d.Scale
	pt := d.PassThreshold()
	s.Threshold = &pt
	return s
}
