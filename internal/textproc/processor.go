package textproc

import (
	"context"
	"strings"
	"time"

	"github.com/textcore/aicore/internal/ai"
	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/internal/cache"
	"github.com/textcore/aicore/internal/cachekey"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/resilience"
	"github.com/textcore/aicore/internal/sanitize"
	"github.com/textcore/aicore/internal/validate"
	"github.com/textcore/aicore/pkg/logger"
)

// fallbackTTL bounds how long a degraded (fallback) response stays
// cached, independent of the operation's normal TTL, so the service
// doesn't keep serving a stale "unavailable" message long after
// recovery.
const fallbackTTL = 30 * time.Second

var allowedOperations = map[config.Operation]bool{
	config.OpSummarize: true,
	config.OpSentiment: true,
	config.OpKeyPoints: true,
	config.OpQuestions: true,
	config.OpQA:        true,
}

// Processor is the Text Processor (C7): the end-to-end pipeline over
// every other internal package.
type Processor struct {
	cfg          config.RuntimeConfig
	keys         *cachekey.Generator
	cache        *cache.TieredCache
	sanitizer    *sanitize.Sanitizer
	validator    *validate.Validator
	orchestrator *resilience.Orchestrator
	client       ai.Client
	log          logger.Logger
}

// New constructs a Processor from its already-built dependencies. The
// caller owns wiring RuntimeConfig into each dependency's own
// constructor; Processor only reads RuntimeConfig for per-call
// decisions (resilience params, max text length, AI model options).
func New(cfg config.RuntimeConfig, keys *cachekey.Generator, c *cache.TieredCache, s *sanitize.Sanitizer, v *validate.Validator, o *resilience.Orchestrator, client ai.Client, log logger.Logger) *Processor {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Processor{cfg: cfg, keys: keys, cache: c, sanitizer: s, validator: v, orchestrator: o, client: client, log: log}
}

// Process runs the full pipeline for one request (spec.md §4.7).
func (p *Processor) Process(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	if err := p.validateInput(req); err != nil {
		return Response{}, err
	}

	sanitized := p.sanitizer.Clean(req.Text)
	question := req.Question
	if req.Operation == config.OpQA {
		question = p.sanitizer.Clean(question)
	}
	key := p.keys.Key(sanitized, req.Operation, req.Options.ToMap(), question)

	if raw, hit := p.cache.Get(ctx, key); hit {
		if entry, err := decodeCachedEntry(raw); err == nil {
			resp := entry.toResponse(req.Operation)
			resp.CacheHit = true
			resp.Metadata.ServiceStatus = "normal"
			resp.Metadata.FallbackUsed = false
			resp.ProcessingTimeMs = elapsedMs(start)
			return resp, nil
		}
		p.log.Warn("failed to decode cached entry, treating as miss", logger.F("key", key))
	}

	prompt := buildPrompt(Request{Text: sanitized, Operation: req.Operation, Options: req.Options, Question: question})
	params := p.cfg.ResilienceFor(req.Operation)

	var result modelResult
	callErr := p.orchestrator.Run(ctx, string(req.Operation), params, p.cfg.Resilience.ResilienceEnabled, func(attemptCtx context.Context) error {
		resp, err := p.client.GenerateResponse(attemptCtx, prompt, ai.Options{
			Model:       p.cfg.AI.Model,
			Temperature: p.cfg.AI.Temperature,
			MaxTokens:   p.cfg.AI.MaxTokens,
		})
		if err != nil {
			return err
		}
		parsed, err := parseModelOutput(req.Operation, resp.Content)
		if err != nil {
			return err
		}
		if err := validateParsed(p.validator, req.Operation, parsed); err != nil {
			return err
		}
		result = parsed
		return nil
	})

	if callErr != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		if apperrors.Is(callErr, apperrors.KindServiceUnavailable) {
			resp := p.fallback(ctx, key, req.Operation)
			resp.ProcessingTimeMs = elapsedMs(start)
			return resp, nil
		}
		return Response{}, callErr
	}

	wordCount := countWords(req.Text)
	entry := result.toCachedEntry(wordCount)
	if data, err := encodeCachedEntry(entry); err == nil {
		if err := p.cache.Set(ctx, key, data, req.Operation); err != nil {
			p.log.Warn("failed to store cache entry", logger.F("key", key), logger.F("error", err.Error()))
		}
	}

	resp := entry.toResponse(req.Operation)
	resp.CacheHit = false
	resp.Metadata.ServiceStatus = "normal"
	resp.Metadata.FallbackUsed = false
	resp.ProcessingTimeMs = elapsedMs(start)
	return resp, nil
}

// fallback is entered when the resilience call exhausts retries, the
// circuit is open, or any uncaught availability failure occurs
// (spec.md §4.7). It prefers a stale cached value over the fixed
// default. A reused cached value is returned as is; the fixed default
// is stored under a short TTL.
func (p *Processor) fallback(ctx context.Context, key string, op config.Operation) Response {
	if raw, hit := p.cache.Get(ctx, key); hit {
		if entry, err := decodeCachedEntry(raw); err == nil {
			resp := entry.toResponse(op)
			resp.CacheHit = true
			resp.Metadata.ServiceStatus = "degraded"
			resp.Metadata.FallbackUsed = true
			return resp
		}
	}

	resp := defaultFallback(op)
	entry := cachedEntry{Result: resp.Result, Sentiment: resp.Sentiment, KeyPoints: resp.KeyPoints, Questions: resp.Questions}
	if data, err := encodeCachedEntry(entry); err == nil {
		if err := p.cache.SetWithTTL(ctx, key, data, fallbackTTL); err != nil {
			p.log.Warn("failed to store fallback entry", logger.F("key", key), logger.F("error", err.Error()))
		}
	}
	return resp
}

func (p *Processor) validateInput(req Request) error {
	if !allowedOperations[req.Operation] {
		return apperrors.New("textproc.validate_input", apperrors.KindValidation, "unsupported operation").
			WithContext("operation", string(req.Operation))
	}
	maxLen := p.cfg.Cache.AI.MaxTextLength
	trimmed := strings.TrimSpace(req.Text)
	if trimmed == "" {
		return apperrors.New("textproc.validate_input", apperrors.KindValidation, "text is empty after trim")
	}
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return apperrors.New("textproc.validate_input", apperrors.KindValidation, "text exceeds max_text_length").
			WithContext("max_text_length", maxLen)
	}
	if req.Operation == config.OpQA && strings.TrimSpace(req.Question) == "" {
		return apperrors.New("textproc.validate_input", apperrors.KindValidation, "question required for QA")
	}
	return nil
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
