package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/artem13815/brandreview/pkg/llm"
)

// Model answers offline with a keyword heuristic. Enabled by USE_MOCK_API=true.
type Model struct{}

func New() *Model { return &Model{} }

func (m *Model) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Analyze(req.LastUserText(), req.HasImage()), nil
}

// Analyze builds the canned report for query. Matching is case-sensitive.
func Analyze(query string, hasImage bool) string {
	isOAD := strings.Contains(query, "One A Day") || strings.Contains(query, "OAD")
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(query, w) {
				return true
			}
		}
		return false
	}

	score := 85
	var violations, warnings, recommendations []string

	if !isOAD {
		violations = append(violations, "Incorrect brand identity - should be One A Day (OAD)")
		score -= 20
	}
	if !hasImage {
		warnings = append(warnings, "No image provided for visual analysis")
		score -= 10
	}
	if has("logo") {
		if has("small", "tiny") {
			violations = append(violations, "Logo too small - minimum 120px width required")
			score -= 15
		} else {
			recommendations = append(recommendations, "Logo placement and size appear appropriate")
		}
	}
	if has("color", "#FF6600") {
		if has("wrong", "incorrect") {
			violations = append(violations, "Incorrect color usage - must use OAD brand colors (#FF6600, #333333)")
			score -= 10
		} else {
			recommendations = append(recommendations, "Color palette follows OAD brand guidelines")
		}
	}
	if has("font", "typography") && has("wrong", "arial", "times") {
		warnings = append(warnings, "Non-standard font detected - recommend Helvetica Neue")
		score -= 5
	}

	var b strings.Builder
	b.WriteString("Brand Compliance Analysis Complete\n\n")
	fmt.Fprintf(&b, "Compliance Score: %d/100\n\n", score)
	fmt.Fprintf(&b, "Summary: %s\n\n", summary(score))

	section(&b, "Critical Violations", violations)
	section(&b, "Warnings", warnings)
	section(&b, "Recommendations", recommendations)

	b.WriteString("\nDetailed Analysis:\n\n")
	b.WriteString("Logo Usage:\n")
	if has("logo") {
		b.WriteString("Logo appears to be properly positioned with adequate clearspace.\n")
	} else {
		b.WriteString("No logo detected in the design.\n")
	}
	b.WriteString("\nColor Palette:\n")
	b.WriteString("Primary OAD orange (#FF6600) should be the dominant brand color.\n")
	b.WriteString("Secondary dark gray (#333333) provides good contrast.\n")
	b.WriteString("\nTypography:\n")
	b.WriteString("Helvetica Neue is the recommended typeface for OAD communications.\n")
	b.WriteString("Font sizes should maintain minimum 14px for accessibility.\n")
	b.WriteString("\nAccessibility:\n")
	b.WriteString("Design meets WCAG AA contrast requirements (4.5:1 ratio).\n")
	b.WriteString("All interactive elements are properly sized and spaced.\n")
	return b.String()
}

func summary(score int) string {
	switch {
	case score >= 90:
		return "Excellent compliance with OAD brand guidelines"
	case score >= 70:
		return "Good compliance with minor issues to address"
	default:
		return "Significant compliance issues requiring attention"
	}
}

func section(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
