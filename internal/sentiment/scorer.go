package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Alias1177/ForecastBot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 10 * time.Second

	externalWeight    = 0.6
	technicalWeight   = 0.4
	blendedThreshold  = 0.2
	fallbackThreshold = 0.3

	FallbackReasoning = "Rule-based fallback (no ML signal)"
)

// Fallback reasons reported to the Recorder
const (
	ReasonUnconfigured = "unconfigured"
	ReasonTimeout      = "timeout"
	ReasonError        = "error"
	ReasonMalformed    = "malformed"
)

var errMalformed = errors.New("malformed classifier response")

// Recorder receives a notification every time the scorer falls back to rules
type Recorder interface {
	RecordSentimentFallback(reason string)
}

// ScorerOptions configures a Scorer
type ScorerOptions struct {
	Timeout  time.Duration
	Recorder Recorder
}

// Scorer blends an optional external classifier with the technical sub-score
type Scorer struct {
	classifier models.SentimentClassifier
	timeout    time.Duration
	recorder   Recorder
	logger     zerolog.Logger
}

// NewScorer creates a scorer. A nil classifier means every call uses the rule-based path.
func NewScorer(classifier models.SentimentClassifier, opts ScorerOptions) *Scorer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Scorer{
		classifier: classifier,
		timeout:    opts.Timeout,
		recorder:   opts.Recorder,
		logger:     log.With().Str("component", "sentiment_scorer").Logger(),
	}
}

// ScoreSentiment never fails: classifier problems degrade to the rule-based verdict
func (s *Scorer) ScoreSentiment(ctx context.Context, f models.SentimentFeatures) models.SentimentResult {
	technical := TechnicalScore(f)

	if s.classifier == nil {
		return s.fallback(f, technical, ReasonUnconfigured)
	}

	label, external, err := s.external(ctx, f)
	if err != nil {
		reason := ReasonError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = ReasonTimeout
		case errors.Is(err, errMalformed):
			reason = ReasonMalformed
		}
		s.logger.Warn().Err(err).Str("reason", reason).Msg("Sentiment classifier failed, using rule-based score")
		return s.fallback(f, technical, reason)
	}

	final := external*externalWeight + technical*technicalWeight

	s.logger.Debug().
		Str("label", label).
		Float64("external", external).
		Float64("technical", technical).
		Float64("final", final).
		Msg("Sentiment scored")

	return models.SentimentResult{
		Signal:     classify(final, blendedThreshold),
		Confidence: math.Min(1, math.Abs(final)),
		Reasoning:  append(reasons(f), "ML: "+label),
	}
}

func (s *Scorer) fallback(f models.SentimentFeatures, technical float64, reason string) models.SentimentResult {
	if s.recorder != nil {
		s.recorder.RecordSentimentFallback(reason)
	}
	return models.SentimentResult{
		Signal:     classify(technical, fallbackThreshold),
		Confidence: math.Min(1, math.Abs(technical)),
		Reasoning:  append(reasons(f), FallbackReasoning),
		Fallback:   true,
	}
}

// external asks the classifier once, bounded by the scorer timeout
func (s *Scorer) external(ctx context.Context, f models.SentimentFeatures) (string, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels, err := s.classifier.Classify(ctx, Describe(f))
	if err != nil {
		// transports do not always wrap the deadline they hit
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return "", 0, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", 0, err
	}
	return externalScore(labels)
}

// externalScore picks the strongest label and maps it to [-1, 1]
func externalScore(labels []models.ClassifierLabel) (string, float64, error) {
	if len(labels) == 0 {
		return "", 0, fmt.Errorf("no labels: %w", errMalformed)
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	if math.IsNaN(best.Score) || best.Score < 0 || best.Score > 1 {
		return "", 0, fmt.Errorf("score %v out of range: %w", best.Score, errMalformed)
	}

	var direction float64
	switch strings.ToLower(best.Label) {
	case "positive":
		direction = 1
	case "negative":
		direction = -1
	case "neutral":
		direction = 0
	default:
		return "", 0, fmt.Errorf("unknown label %q: %w", best.Label, errMalformed)
	}

	return best.Label, direction * best.Score, nil
}
