package brand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FallbackPrompt is used when brand data could not be loaded.
const FallbackPrompt = "You are an expert brand compliance analyst. Analyze designs for brand guideline compliance."

// ResultSchema is the JSON shape the model is told to return.
const ResultSchema = `{"complianceScore":0,"grade":"","status":"APPROVED|APPROVED_WITH_NOTES|NEEDS_REVISION|REJECTED","passOrFail":"PASS|FAIL","categoryScores":{"logo":{"score":0,"maxScore":25},"colors":{"score":0,"maxScore":25},"typography":{"score":0,"maxScore":20},"accessibility":{"score":0,"maxScore":20},"layout":{"score":0,"maxScore":10}},"violations":[{"ruleId":"","severity":"critical|major|minor","description":""}],"warnings":[{"description":""}],"recommendations":[""],"summary":""}`

const defaultScoring = "logo/25, colors/25, typography/20, accessibility/20, layout/10"

// CategoryOrder is the canonical order of scoring categories.
var CategoryOrder = []string{"logo", "colors", "typography", "accessibility", "layout"}

// BuildSystemPrompt renders the reviewer system prompt. The output depends only on d.
func BuildSystemPrompt(d *Data) string {
	if d == nil {
		return FallbackPrompt
	}
	r := d.Rules

	var b strings.Builder
	b.WriteString("You are a brand compliance reviewer. Return ONLY raw JSON, no other text.\n\n")
	fmt.Fprintf(&b, "Brand: %s (%s)\n", r.BrandName, r.BrandID)
	fmt.Fprintf(&b, "Colors — Primary: %s | Secondary: %s | Accent: %s\n",
		swatches(r.Colors.Palette.Primary),
		swatches(r.Colors.Palette.Secondary),
		swatches(r.Colors.Palette.Accent),
	)
	fmt.Fprintf(&b, "Font: %s (fallbacks: %s), min %spx | %s\n",
		orDefault(r.Typography.Fonts.Primary.Family, "Not specified"),
		fontFallbacks(r.Typography),
		formatNumber(minBodySize(r.Typography)),
		orDefault(r.Accessibility.Standard, "WCAG 2.1 AA"),
	)

	if rules := keyRules(r); len(rules) > 0 {
		b.WriteString("Key rules:\n")
		for _, line := range rules {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Scoring: %s. Pass≥%s.\n\n", scoring(d.Rubric), formatNumber(d.PassThreshold()))
	b.WriteString("Return this exact JSON schema:\n")
	b.WriteString(ResultSchema)
	b.WriteString("\n\nRules: Max 5 violations, max 3 warnings, max 3 recommendations. Each 1 short sentence. Summary: 1 sentence.")
	return b.String()
}

func swatches(list []Swatch) string {
	if len(list) == 0 {
		return "Not specified"
	}
	parts := make([]string, 0, len(list))
	for _, s := range list {
		parts = append(parts, fmt.Sprintf("%s: %s", s.Name, s.Hex))
	}
	return strings.Join(parts, ", ")
}

func fontFallbacks(t Typography) string {
	if len(t.Fonts.Primary.Fallbacks) == 0 {
		return "Arial, sans-serif"
	}
	return strings.Join(t.Fonts.Primary.Fallbacks, ", ")
}

// minBodySize: scale.body.size, then rule TYPE-003 minValue, then 16.
func minBodySize(t Typography) float64 {
	if t.Scale.Body.Size != nil && *t.Scale.Body.Size > 0 {
		return float64(*t.Scale.Body.Size)
	}
	for _, r := range t.Rules {
		if r.RuleID == "TYPE-003" && r.MinValue != nil && *r.MinValue > 0 {
			return float64(*r.MinValue)
		}
	}
	return 16
}

func keyRules(r Rules) []string {
	var out []string
	for _, lr := range r.Logo.Rules {
		out = append(out, fmt.Sprintf("Logo %s: %s", lr.Name, lr.Requirement))
	}
	for _, p := range r.Logo.Prohibitions {
		out = append(out, "Logo must not: "+p)
	}
	for _, c := range r.Colors.ProhibitedColors {
		out = append(out, fmt.Sprintf("Prohibited color %s: %s", c.Hex, c.Reason))
	}
	for _, ar := range r.Accessibility.Rules {
		out = append(out, fmt.Sprintf("Accessibility %s: %s", ar.Name, ar.Requirement))
	}
	return out
}

// scoring renders rubric weights in canonical order, unknown categories sorted after.
func scoring(rub Rubric) string {
	if len(rub.Categories) == 0 {
		return defaultScoring
	}
	seen := make(map[string]bool, len(rub.Categories))
	var parts []string
	for _, name := range CategoryOrder {
		if c, ok := rub.Categories[name]; ok {
			parts = append(parts, fmt.Sprintf("%s/%s", name, formatNumber(c.Weight)))
			seen[name] = true
		}
	}
	var rest []string
	for name := range rub.Categories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		parts = append(parts, fmt.Sprintf("%s/%s", name, formatNumber(rub.Categories[name].Weight)))
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
