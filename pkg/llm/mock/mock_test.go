package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/brandreview/pkg/llm"
)

func TestAnalyze(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		hasImage bool
		score    string
		contains []string
	}{
		{
			name:     "clean OAD image",
			query:    "Review this One A Day banner",
			hasImage: true,
			score:    "Compliance Score: 85/100",
			contains: []string{"Good compliance with minor issues to address"},
		},
		{
			name:     "other brand without image",
			query:    "review my poster",
			score:    "Compliance Score: 55/100",
			contains: []string{"Critical Violations:\n- Incorrect brand identity", "Warnings:\n- No image provided"},
		},
		{
			name:     "tiny logo and wrong colour",
			query:    "OAD ad, the logo is tiny and the color is wrong",
			hasImage: true,
			score:    "Compliance Score: 60/100",
			contains: []string{"- Logo too small - minimum 120px width required", "- Incorrect color usage"},
		},
		{
			name:     "arial typography",
			query:    "OAD flyer with arial font",
			hasImage: true,
			score:    "Compliance Score: 80/100",
			contains: []string{"- Non-standard font detected - recommend Helvetica Neue"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Analyze(tc.query, tc.hasImage)
			assert.Contains(t, out, tc.score)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestModel_Complete(t *testing.T) {
	m := New()
	out, err := m.Complete(context.Background(), llm.Request{Messages: []llm.Message{
		llm.TextMessage(llm.RoleSystem, "sys"),
		llm.VisionMessage("One A Day logo check", "data:image/png;base64,AAAA", "high"),
	}})
	require.NoError(t, err)
	assert.Contains(t, out, "Compliance Score: 85/100")
	assert.Contains(t, out, "Recommendations:\n- Logo placement and size appear appropriate")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Complete(ctx, llm.Request{})
	assert.Error(t, err)
}
