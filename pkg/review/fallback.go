package review

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/artem13815/brandreview/pkg/nlp"
)

var (
	reScorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)compliance[\s_]*score\W{0,6}(\d{1,3}(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bscore\s*[:=]\s*(\d{1,3}(?:\.\d+)?)`),
		regexp.MustCompile(`\b(\d{1,3}(?:\.\d+)?)\s*/\s*100\b`),
	}
	reCategoryLine = regexp.MustCompile(`^([A-Za-z][A-Za-z &/]{1,40}?)\s*:\s*(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)
	reCategoryJSON = regexp.MustCompile(`"(\w+)"\s*:\s*\{\s*"score"\s*:\s*(\d+(?:\.\d+)?)\s*(?:,\s*"maxScore"\s*:\s*(\d+(?:\.\d+)?))?`)
	reBullet       = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
	reSeverityTag  = regexp.MustCompile(`(?i)^(?:\[(critical|major|minor)\]\s*[:\-–]?|\(?(critical|major|minor)\)?\s*[:\-–])\s*`)
	reRuleID       = regexp.MustCompile(`^\(?([A-Z][A-Z0-9]*-\d+)\)?\s*[:\-–]?\s*`)
	reJSONString   = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	reJSONDesc     = regexp.MustCompile(`"description"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	reMarkup       = regexp.MustCompile("^#+\\s*|\\*+|`+")
)

// extractFallback recovers what it can from free text or truncated JSON.
// scoreFound reports whether an overall score was present.
func extractFallback(text string) (Result, bool) {
	var r Result
	score, scoreFound := extractScore(text)
	r.ComplianceScore = score
	r.CategoryScores = extractCategories(text)

	extractSections(text, &r)
	if len(r.Violations) == 0 && len(r.Warnings) == 0 && strings.Contains(text, `"violations"`) {
		extractTruncatedJSON(text, &r)
	}
	if r.Summary == "" {
		r.Summary = jsonStringField(text, "summary")
	}
	if strings.Contains(text, "{") {
		r.Status = jsonStringField(text, "status")
		r.Grade = jsonStringField(text, "grade")
		r.PassOrFail = jsonStringField(text, "passOrFail")
	}
	if r.Summary == "" && !strings.HasPrefix(text, "{") {
		r.Summary = firstLine(text)
	}
	return r, scoreFound
}

func extractScore(text string) (float64, bool) {
	for _, re := range reScorePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func extractCategories(text string) map[string]CategoryScore {
	out := map[string]CategoryScore{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(reMarkup.ReplaceAllString(line, ""))
		line = reBullet.ReplaceAllString(line, "")
		m := reCategoryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, ok := nlp.CanonicalCategory(m[1])
		if !ok {
			continue
		}
		score, _ := strconv.ParseFloat(m[2], 64)
		maxScore, _ := strconv.ParseFloat(m[3], 64)
		out[name] = CategoryScore{Score: score, MaxScore: maxScore}
	}
	for _, m := range reCategoryJSON.FindAllStringSubmatch(text, -1) {
		name, ok := nlp.CanonicalCategory(m[1])
		if !ok {
			continue
		}
		if _, seen := out[name]; seen {
			continue
		}
		score, _ := strconv.ParseFloat(m[2], 64)
		var maxScore float64
		if m[3] != "" {
			maxScore, _ = strconv.ParseFloat(m[3], 64)
		}
		out[name] = CategoryScore{Score: score, MaxScore: maxScore}
	}
	return out
}

// extractSections walks "Heading:" blocks and collects their bullet items.
func extractSections(text string, r *Result) {
	section := nlp.HeadingNone
	critical := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		isBullet := reBullet.MatchString(line)
		if !isBullet {
			label, rest, hasColon := strings.Cut(reMarkup.ReplaceAllString(line, ""), ":")
			kind := nlp.HeadingKind(label)
			switch {
			case kind != nlp.HeadingNone:
				section = kind
				critical = strings.Contains(strings.ToLower(label), "critical")
				rest = strings.TrimSpace(rest)
				if rest != "" && !isNone(rest) {
					addItem(r, section, rest, critical)
				}
				continue
			case hasColon && strings.TrimSpace(rest) == "":
				// unrelated heading ends the current section
				section = nlp.HeadingNone
				continue
			case strings.HasPrefix(line, "#"):
				section = nlp.HeadingNone
				continue
			}
			if section == nlp.HeadingSummary && r.Summary == "" {
				r.Summary = strings.TrimSpace(reMarkup.ReplaceAllString(line, ""))
			}
			continue
		}
		if section == nlp.HeadingNone || section == nlp.HeadingSummary {
			continue
		}
		item := strings.TrimSpace(reMarkup.ReplaceAllString(reBullet.ReplaceAllString(line, ""), ""))
		if item == "" || isNone(item) {
			continue
		}
		addItem(r, section, item, critical)
	}
}

func addItem(r *Result, section, item string, critical bool) {
	switch section {
	case nlp.HeadingViolations:
		v := Violation{Severity: SeverityMajor}
		if critical {
			v.Severity = SeverityCritical
		}
		if m := reSeverityTag.FindStringSubmatch(item); m != nil {
			v.Severity = strings.ToLower(m[1] + m[2])
			item = item[len(m[0]):]
		}
		if m := reRuleID.FindStringSubmatch(item); m != nil {
			v.RuleID = m[1]
			item = item[len(m[0]):]
		}
		v.Description = strings.TrimSpace(item)
		r.Violations = append(r.Violations, v)
	case nlp.HeadingWarnings:
		r.Warnings = append(r.Warnings, Warning{Description: item})
	case nlp.HeadingRecommendations:
		r.Recommendations = append(r.Recommendations, item)
	case nlp.HeadingSummary:
		if r.Summary == "" {
			r.Summary = item
		}
	}
}

// extractTruncatedJSON pulls list items out of a cut-off JSON reply.
func extractTruncatedJSON(text string, r *Result) {
	vi := strings.Index(text, `"violations"`)
	wi := strings.Index(text, `"warnings"`)
	ri := strings.Index(text, `"recommendations"`)
	si := strings.Index(text, `"summary"`)

	segment := func(from int, ends ...int) string {
		if from < 0 {
			return ""
		}
		to := len(text)
		for _, e := range ends {
			if e > from && e < to {
				to = e
			}
		}
		return text[from:to]
	}

	for _, obj := range strings.Split(segment(vi, wi, ri, si), "{")[1:] {
		desc := jsonStringField(obj, "description")
		if desc == "" {
			continue
		}
		r.Violations = append(r.Violations, Violation{
			RuleID:      jsonStringField(obj, "ruleId"),
			Severity:    jsonStringField(obj, "severity"),
			Description: desc,
		})
	}
	for _, m := range reJSONDesc.FindAllStringSubmatch(segment(wi, vi, ri, si), -1) {
		r.Warnings = append(r.Warnings, Warning{Description: unquoteJSON(m[1])})
	}
	recs := segment(ri, vi, wi, si)
	i := strings.Index(recs, "[")
	if i < 0 {
		return
	}
	re := reJSONString
	if strings.Contains(recs, `"description"`) {
		re = reJSONDesc
	}
	for _, m := range re.FindAllStringSubmatch(recs[i:], -1) {
		r.Recommendations = append(r.Recommendations, unquoteJSON(m[1]))
	}
}

// jsonStringField returns the first string value written under key, or "".
func jsonStringField(text, key string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	if m := re.FindStringSubmatch(text); m != nil {
		return unquoteJSON(m[1])
	}
	return ""
}

func unquoteJSON(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(reMarkup.ReplaceAllString(line, ""))
		if line != "" {
			return line
		}
	}
	return ""
}

func isNone(s string) bool {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(s), ".")) {
	case "none", "n/a", "none found", "no violations", "no warnings":
		return true
	}
	return false
}
