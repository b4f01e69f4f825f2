package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	api "github.com/artem13815/brandreview/api/http"
	"github.com/artem13815/brandreview/api/http/handlers"
	"github.com/artem13815/brandreview/pkg/brand"
	"github.com/artem13815/brandreview/pkg/health"
	"github.com/artem13815/brandreview/pkg/llm"
	"github.com/artem13815/brandreview/pkg/llm/mock"
	"github.com/artem13815/brandreview/pkg/repository/memory"
	"github.com/artem13815/brandreview/pkg/review"
	"github.com/artem13815/brandreview/pkg/security/jwt"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

type failingModel struct{ err error }

func (m failingModel) Complete(context.Context, llm.Request) (string, error) { return "", m.err }

type downChecker struct{}

func (downChecker) Name() string                    { return "postgres" }
func (downChecker) Check(ctx context.Context) error { return errors.New("connection refused") }

type countingChecker struct{ calls *atomic.Int32 }

func (countingChecker) Name() string { return "redis" }

func (c countingChecker) Check(context.Context) error {
	c.calls.Add(1)
	return nil
}

type setup struct {
	model    llm.ChatModel
	checkers []health.Checker
	authMW   fiber.Handler
}

func newApp(t *testing.T, s setup) *fiber.App {
	t.Helper()
	log := zaptest.NewLogger(t)
	if s.model == nil {
		s.model = mock.New()
	}
	brands := brand.NewFileRepository(filepath.Join("..", "..", "brand-data"))
	svc := review.NewService(brands, s.model, memory.NewReviewRepo(), nil, log, "mock", "OAD")

	app := fiber.New(fiber.Config{BodyLimit: 50 << 20})
	app.Use(api.RequestLogger(log))
	api.Register(app, api.Handlers{
		Health: handlers.NewHealthHandler(health.NewService(s.checkers...), handlers.ConfigFlags{
			FoundryEndpoint:       true,
			AzureOpenAIConfigured: true,
		}),
		Agent:       handlers.NewAgentHandler(svc, log),
		Brand:       handlers.NewBrandHandler(brands, log),
		Attachments: handlers.NewAttachmentHandler(log),
		Reviews:     handlers.NewReviewHandler(svc, log),
	}, s.authMW)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, path string, v any) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	app := newApp(t, setup{})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, map[string]any{
		"foundryEndpoint":       true,
		"agentId":               false,
		"azureOpenaiConfigured": true,
	}, body["config"])

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestReady_DependencyDown(t *testing.T) {
	var calls atomic.Int32
	app := newApp(t, setup{checkers: []health.Checker{downChecker{}, countingChecker{calls: &calls}}})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, "postgres: connection refused", body["details"])
	assert.Equal(t, map[string]any{"postgres": "connection refused", "redis": "ok"}, body["checks"])
	assert.Equal(t, int32(1), calls.Load())
}

func TestFoundryAgent_Review(t *testing.T) {
	app := newApp(t, setup{})

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{
		"agentId": "asst_1",
		"query":   "Analyze this One A Day banner " + pixel,
	}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "asst_1", body["agentId"])
	assert.Equal(t, review.ModeReview, body["mode"])
	assert.Equal(t, false, body["cached"])
	assert.Contains(t, body["response"], "Compliance Score: 85/100")

	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(85), result["complianceScore"])
	assert.Equal(t, review.ParseModeRegex, result["parseMode"])
}

func TestFoundryAgent_Chat(t *testing.T) {
	app := newApp(t, setup{})

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{
		"agentId": "asst_1",
		"query":   "What is the primary brand color?",
	}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, review.ModeChat, body["mode"])
	assert.NotContains(t, body, "result")
	assert.NotEmpty(t, body["response"])
}

func TestFoundryAgent_Errors(t *testing.T) {
	app := newApp(t, setup{})
	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{"agentId": "a"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "query is required", body["error"])

	app = newApp(t, setup{model: failingModel{err: llm.ErrInvalidAPIKey}})
	status, body = do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{"query": pixel}))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to call Foundry agent", body["error"])
	assert.Equal(t, "Invalid API key. Please check your AZURE_OPENAI_API_KEY.", body["message"])
	assert.NotEmpty(t, body["timestamp"])

	app = newApp(t, setup{model: failingModel{err: errors.New("dial tcp: refused")}})
	_, body = do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{"query": "hi"}))
	assert.Equal(t, "Azure OpenAI call failed: dial tcp: refused", body["message"])

	app = newApp(t, setup{})
	status, _ = do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{
		"brandId": "../x",
		"query":   "Analyze " + pixel,
	}))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBrandRules(t *testing.T) {
	app := newApp(t, setup{})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/brand-rules/OAD", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OAD", body["brandId"])

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/brand-rules/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Brand rules not found", body["error"])

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/brand-rules/bad.id", nil))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestParseEmail(t *testing.T) {
	app := newApp(t, setup{})
	eml := strings.Join([]string{
		"From: Jordan Lee <jordan@example.com>",
		"Subject: Banner",
		"Date: Tue, 03 Mar 2026 10:15:00 +0100",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/plain",
		"",
		"see attached",
		"--b",
		`Content-Type: image/png; name="logo.png"`,
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="logo.png"`,
		"",
		"iVBORw0KGgoAAAANSUhEUg==",
		"--b--",
		"",
	}, "\r\n")

	status, body := do(t, app, multipartRequest(t, "/api/parse-email", "email", "banner.eml", []byte(eml)))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Banner", body["emailSubject"])
	assert.Contains(t, body["emailFrom"], "jordan@example.com")
	images, ok := body["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)
	assert.Equal(t, "logo.png", images[0].(map[string]any)["filename"])

	status, body = do(t, app, multipartRequest(t, "/api/parse-email", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No email file provided", body["error"])
}

func TestParsePDF(t *testing.T) {
	app := newApp(t, setup{})

	status, body := do(t, app, multipartRequest(t, "/api/parse-pdf", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No PDF file provided", body["error"])

	status, body = do(t, app, multipartRequest(t, "/api/parse-pdf", "pdf", "flyer.pdf", []byte("GIF89a not a pdf")))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to process PDF", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestReviews_Flow(t *testing.T) {
	app := newApp(t, setup{})

	status, created := do(t, app, jsonRequest(http.MethodPost, "/api/v1/reviews", review.Submission{
		DesignType:  "banner",
		FileName:    "banner.png",
		ImageBase64: pixel,
	}))
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "OAD", created["brandId"])
	assert.Equal(t, "mock", created["model"])

	status, got := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/"+id, nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, got["id"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reviews?limit=5", nil))
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)

	status, answer := do(t, app, jsonRequest(http.MethodPost, "/api/v1/reviews/"+id+"/chat", map[string]string{
		"question": "How do I fix the logo?",
	}))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, answer["reviewId"])
	assert.NotEmpty(t, answer["answer"])
}

func TestReviews_Errors(t *testing.T) {
	app := newApp(t, setup{})

	status, _ := do(t, app, jsonRequest(http.MethodPost, "/api/v1/reviews", review.Submission{FileName: "empty"}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/v1/reviews", review.Submission{
		FileName:    "flyer.pdf",
		MimeType:    "application/pdf",
		ImageBase64: "JVBERi0xLjQK",
	}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "documentText")

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/7b0e6a4e-3f5e-4d8a-9a55-6f4f9f0d2c11", nil))
	assert.Equal(t, http.StatusNotFound, status)

	app = newApp(t, setup{model: failingModel{err: llm.ErrRateLimited}})
	status, body = do(t, app, jsonRequest(http.MethodPost, "/api/v1/reviews", review.Submission{ImageBase64: pixel}))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", body["details"])
}

func TestReviews_RequireToken(t *testing.T) {
	app := newApp(t, setup{authMW: jwt.NewAuthMiddleware("s3cret", "brand-review")})

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := jwt.NewGenerator("s3cret", "brand-review", time.Minute).Generate("reviewer-1", "Sam")
	require.NoError(t, err)
	req := jsonRequest(http.MethodPost, "/api/v1/reviews", review.Submission{ImageBase64: pixel})
	req.Header.Set("Authorization", "Bearer "+token)
	status, body := do(t, app, req)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Sam", body["submittedBy"])

	// the agent proxy stays public
	status, _ = do(t, app, jsonRequest(http.MethodPost, "/api/foundry-agent", map[string]string{"query": "hi"}))
	assert.Equal(t, http.StatusOK, status)
}
