package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/brandreview/pkg/brand"
	"github.com/artem13815/brandreview/pkg/llm"
	"github.com/artem13815/brandreview/pkg/metrics"
)

// Request modes.
const (
	ModeReview = "review"
	ModeChat   = "chat"
)

// ChatSystemPrompt is used for every text-only exchange.
const ChatSystemPrompt = "You are a concise brand compliance assistant. Keep replies focused and actionable. Use short bullet points when listing multiple items. Avoid long introductions or repetition."

const (
	reviewMaxTokens   = 800
	reviewTemperature = 0.15
	chatMaxTokens     = 500
	chatTemperature   = 0.3
	imageDetail       = "high"
	maxDocumentChars  = 12000
)

// UseCase: сценарии проверки макетов на соответствие бренду.
type UseCase interface {
	Ask(ctx context.Context, q Query) (Answer, error)
	Review(ctx context.Context, sub Submission) (Review, error)
	Get(ctx context.Context, id uuid.UUID) (Review, error)
	List(ctx context.Context, brandID string, limit, offset int) ([]Review, error)
	FollowUp(ctx context.Context, id uuid.UUID, question string) (string, error)
}

type service struct {
	brands         brand.Repository
	model          llm.ChatModel
	repo           Repository
	cache          Cache
	log            *zap.Logger
	modelName      string
	defaultBrandID string
}

// NewService wires the review flow. cache may be nil.
func NewService(brands brand.Repository, model llm.ChatModel, repo Repository, cache Cache, log *zap.Logger, modelName, defaultBrandID string) UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultBrandID == "" {
		defaultBrandID = "OAD"
	}
	return &service{
		brands:         brands,
		model:          model,
		repo:           repo,
		cache:          cache,
		log:            log,
		modelName:      modelName,
		defaultBrandID: defaultBrandID,
	}
}

func (s *service) Ask(ctx context.Context, q Query) (Answer, error) {
	if strings.TrimSpace(q.Text) == "" {
		return Answer{}, ErrEmptyQuery
	}
	img, ok := DetectImage(q.Text)
	if !ok {
		raw, err := s.chat(ctx, q.Text)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Response: raw, Mode: ModeChat}, nil
	}

	brandID := s.brandID(q.BrandID)
	if !brand.ValidID(brandID) {
		return Answer{}, brand.ErrInvalidBrandID
	}
	out, err := s.review(ctx, brandID, StripImage(q.Text), &img)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Response: out.raw, Result: &out.result, Cached: out.cached, Mode: ModeReview}, nil
}

func (s *service) Review(ctx context.Context, sub Submission) (Review, error) {
	sub.ImageBase64 = strings.TrimSpace(sub.ImageBase64)
	sub.DocumentText = strings.TrimSpace(sub.DocumentText)
	if sub.ImageBase64 == "" && sub.DocumentText == "" {
		return Review{}, ErrInvalidSubmission
	}
	brandID := s.brandID(sub.BrandID)
	if !brand.ValidID(brandID) {
		return Review{}, brand.ErrInvalidBrandID
	}

	var img *Image
	if sub.ImageBase64 != "" {
		// accept either a bare payload or a full data URL
		found, ok := DetectImage(sub.ImageBase64)
		switch {
		case ok:
			img = &found
		case strings.HasPrefix(sub.ImageBase64, "data:"):
			return Review{}, fmt.Errorf("%w: data URL is not an image, send documents as documentText", ErrInvalidSubmission)
		case sub.MimeType != "" && !strings.HasPrefix(sub.MimeType, "image/"):
			return Review{}, fmt.Errorf("%w: %s is not an image, send documents as documentText", ErrInvalidSubmission, sub.MimeType)
		default:
			mime := sub.MimeType
			if mime == "" {
				mime = "image/png"
			}
			img = &Image{
				DataURL:  "data:" + mime + ";base64," + sub.ImageBase64,
				MimeType: mime,
				Base64:   sub.ImageBase64,
			}
		}
		sub.MimeType = img.MimeType
	}

	out, err := s.review(ctx, brandID, submissionPrompt(sub), img)
	if err != nil {
		return Review{}, err
	}

	rv := Review{
		ID:          uuid.New(),
		BrandID:     brandID,
		DesignType:  sub.DesignType,
		SubmittedBy: sub.SubmittedBy,
		Notes:       sub.Notes,
		FileName:    sub.FileName,
		MimeType:    sub.MimeType,
		Model:       s.modelName,
		Result:      out.result,
		RawResponse: out.raw,
		CreatedAt:   time.Now().UTC(),
	}
	saved, err := s.repo.Create(ctx, rv)
	if err != nil {
		return Review{}, fmt.Errorf("save review: %w", err)
	}
	s.log.Info("review stored",
		zap.String("review_id", saved.ID.String()),
		zap.String("brand_id", brandID),
		zap.Float64("score", saved.Result.ComplianceScore),
		zap.String("status", saved.Result.Status),
		zap.String("parse_mode", saved.Result.ParseMode),
	)
	return saved, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, brandID string, limit, offset int) ([]Review, error) {
	return s.repo.List(ctx, brandID, limit, offset)
}

func (s *service) FollowUp(ctx context.Context, id uuid.UUID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.chat(ctx, followUpPrompt(rv, question))
}

type reviewOutcome struct {
	raw    string
	result Result
	cached bool
}

func (s *service) review(ctx context.Context, brandID, userText string, img *Image) (reviewOutcome, error) {
	data, prompt := s.systemPrompt(ctx, brandID)

	var user llm.Message
	if img != nil {
		user = llm.VisionMessage(userText, img.DataURL, imageDetail)
	} else {
		user = llm.TextMessage(llm.RoleUser, userText)
	}

	key := cacheKey(brandID, prompt, userText, img)
	raw, cached := s.cacheGet(ctx, key)
	if !cached {
		var err error
		raw, err = s.call(ctx, ModeReview, llm.Request{
			Messages:    []llm.Message{llm.TextMessage(llm.RoleSystem, prompt), user},
			MaxTokens:   reviewMaxTokens,
			Temperature: reviewTemperature,
		})
		if err != nil {
			return reviewOutcome{}, err
		}
	}

	res, err := ParseResult(raw, data.EffectiveScale())
	if err != nil {
		return reviewOutcome{}, err
	}
	metrics.ResultParses.WithLabelValues(res.ParseMode).Inc()
	if res.Partial {
		s.log.Warn("model reply was not valid JSON, used text fallback",
			zap.String("brand_id", brandID),
			zap.Float64("score", res.ComplianceScore),
		)
	}
	if !cached {
		s.cachePut(ctx, key, raw)
	}
	return reviewOutcome{raw: raw, result: res, cached: cached}, nil
}

func (s *service) chat(ctx context.Context, text string) (string, error) {
	return s.call(ctx, ModeChat, llm.Request{
		Messages: []llm.Message{
			llm.TextMessage(llm.RoleSystem, ChatSystemPrompt),
			llm.TextMessage(llm.RoleUser, text),
		},
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
}

func (s *service) call(ctx context.Context, mode string, req llm.Request) (string, error) {
	start := time.Now()
	raw, err := s.model.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.ModelLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
	if err != nil {
		metrics.ModelCalls.WithLabelValues(mode, outcome(err)).Inc()
		s.log.Error("model call failed", zap.String("mode", mode), zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", err
	}
	metrics.ModelCalls.WithLabelValues(mode, "ok").Inc()
	s.log.Info("model call",
		zap.String("mode", mode),
		zap.Bool("image", req.HasImage()),
		zap.Duration("elapsed", elapsed),
		zap.Int("reply_chars", len(raw)),
	)
	return raw, nil
}

// systemPrompt loads brand data; a load failure degrades to the generic prompt.
func (s *service) systemPrompt(ctx context.Context, brandID string) (*brand.Data, string) {
	d, err := s.brands.Load(ctx, brandID)
	if err != nil {
		s.log.Warn("brand data unavailable, using fallback prompt", zap.String("brand_id", brandID), zap.Error(err))
		return nil, brand.BuildSystemPrompt(nil)
	}
	return &d, brand.BuildSystemPrompt(&d)
}

func (s *service) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	v, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", zap.Error(err))
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return "", false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return v, true
}

func (s *service) cachePut(ctx context.Context, key, raw string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.log.Warn("cache set failed", zap.Error(err))
	}
}

func (s *service) brandID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.defaultBrandID
}

func cacheKey(brandID, prompt, userText string, img *Image) string {
	h := sha256.New()
	for _, part := range []string{brandID, prompt, userText} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if img != nil {
		h.Write([]byte(img.DataURL))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, llm.ErrInvalidAPIKey):
		return "invalid_key"
	case errors.Is(err, llm.ErrDeploymentNotFound):
		return "deployment_not_found"
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}

func submissionPrompt(sub Submission) string {
	var b strings.Builder
	designType := sub.DesignType
	if designType == "" {
		designType = "design"
	}
	fmt.Fprintf(&b, "Review this %s for brand compliance.\n", designType)
	if sub.FileName != "" {
		fmt.Fprintf(&b, "File: %s\n", sub.FileName)
	}
	if sub.SubmittedBy != "" {
		fmt.Fprintf(&b, "Submitted by: %s\n", sub.SubmittedBy)
	}
	if sub.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", sub.Notes)
	}
	if sub.ImageBase64 != "" {
		b.WriteString(ImagePlaceholder + "\n")
	}
	if sub.DocumentText != "" {
		text := sub.DocumentText
		if r := []rune(text); len(r) > maxDocumentChars {
			text = string(r[:maxDocumentChars])
		}
		b.WriteString("Document text:\n<<<\n")
		b.WriteString(text)
		b.WriteString("\n>>>\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func followUpPrompt(rv Review, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Context: a %s for brand %s was reviewed.\n", orDesign(rv.DesignType), rv.BrandID)
	fmt.Fprintf(&b, "Compliance Score: %s/100 (grade %s, %s)\n",
		formatScore(rv.Result.ComplianceScore), rv.Result.Grade, rv.Result.Status)
	if rv.Result.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", rv.Result.Summary)
	}
	if len(rv.Result.Violations) > 0 {
		b.WriteString("Violations:\n")
		for _, v := range rv.Result.Violations {
			if v.RuleID != "" {
				fmt.Fprintf(&b, "- [%s] %s: %s\n", v.Severity, v.RuleID, v.Description)
			} else {
				fmt.Fprintf(&b, "- [%s] %s\n", v.Severity, v.Description)
			}
		}
	}
	if len(rv.Result.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, r := range rv.Result.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}

func orDesign(s string) string {
	if s == "" {
		return "design"
	}
	return s
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
