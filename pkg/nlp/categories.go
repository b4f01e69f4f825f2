package nlp

// Scoring categories as they appear in rubrics and results.
const (
	CategoryLogo          = "logo"
	CategoryColors        = "colors"
	CategoryTypography    = "typography"
	CategoryAccessibility = "accessibility"
	CategoryLayout        = "layout"
)

// Section headings found in free-text model replies.
const (
	HeadingNone            = ""
	HeadingViolations      = "violations"
	HeadingWarnings        = "warnings"
	HeadingRecommendations = "recommendations"
	HeadingSummary         = "summary"
)

var categoryAliases = map[string][]string{
	CategoryLogo:          {"logo", "logo usage", "logos", "logo placement", "brand mark"},
	CategoryColors:        {"colors", "color", "colours", "colour", "color palette", "colour palette", "color usage", "palette"},
	CategoryTypography:    {"typography", "fonts", "font", "type", "typeface"},
	CategoryAccessibility: {"accessibility", "a11y", "contrast", "wcag"},
	CategoryLayout:        {"layout", "composition", "layout composition", "spacing", "layout and composition"},
}

var headingAliases = map[string][]string{
	HeadingViolations:      {"violations", "violation", "critical violations", "critical issues", "issues", "major violations"},
	HeadingWarnings:        {"warnings", "warning", "minor issues", "concerns"},
	HeadingRecommendations: {"recommendations", "recommendation", "suggestions", "next steps", "improvements"},
	HeadingSummary:         {"summary", "overall", "overall assessment", "conclusion"},
}

var (
	categoryIndex = invert(categoryAliases)
	headingIndex  = invert(headingAliases)
)

func invert(m map[string][]string) map[string]string {
	out := make(map[string]string)
	for canon, aliases := range m {
		for _, a := range aliases {
			out[Normalize(a)] = canon
		}
	}
	return out
}

// CanonicalCategory maps a free-form label ("Colour Palette", "Fonts") onto a
// scoring category. ok is false for unknown labels.
func CanonicalCategory(label string) (string, bool) {
	c, ok := categoryIndex[Normalize(label)]
	return c, ok
}

// HeadingKind classifies a section heading line of a model reply.
func HeadingKind(label string) string {
	return headingIndex[Normalize(label)]
}
