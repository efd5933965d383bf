package sentiment

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/internal/metrics"
	"finsentiment/internal/ml/finbert"
	"finsentiment/internal/nlp/extract"
	"finsentiment/internal/nlp/lexicon"
	"finsentiment/internal/nlp/scoring"
	"finsentiment/internal/nlp/textproc"
	"finsentiment/internal/tools/indicators"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// Config contains engine configuration
type Config struct {
	VocabSize     int     // Hashed vocabulary size, padding id included (default: 10000)
	MaxSeqLen     int     // Encoded sequence length (default: 128)
	ModelAccuracy float64 // Reported accuracy while the model path is active (default: 0.87)
	RuleAccuracy  float64 // Reported accuracy on the rule-based path (default: 0.65)

	Lexicon *lexicon.Lexicon // nil uses the seed lexicon
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		VocabSize:     10000,
		MaxSeqLen:     128,
		ModelAccuracy: 0.87,
		RuleAccuracy:  0.65,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.VocabSize == 0 {
		c.VocabSize = d.VocabSize
	}
	if c.MaxSeqLen == 0 {
		c.MaxSeqLen = d.MaxSeqLen
	}
	if c.ModelAccuracy == 0 {
		c.ModelAccuracy = d.ModelAccuracy
	}
	if c.RuleAccuracy == 0 {
		c.RuleAccuracy = d.RuleAccuracy
	}
	if c.Lexicon == nil {
		c.Lexicon = lexicon.Default()
	}
	return c
}

// seqLener is implemented by models with a fixed input length
type seqLener interface {
	SeqLen() int
}

// Engine scores financial text. After Init it holds only immutable state, so
// AnalyzeSentiment is safe for concurrent use. A zero Engine initializes
// itself with DefaultConfig and no model on first use.
type Engine struct {
	cfg   Config
	model finbert.Model
	log   *logger.Logger

	once    sync.Once
	initErr error
	ready   atomic.Bool

	extractor *extract.Extractor
	scorer    *scoring.SentenceScorer
	primary   *finbert.ModelClassifier
	fallback  *finbert.RuleClassifier
}

// NewEngine creates and initializes an engine. model may be nil, in which
// case every text is scored on the rule-based path.
func NewEngine(cfg Config, model finbert.Model, log *logger.Logger) (*Engine, error) {
	e := &Engine{
		cfg:   cfg,
		model: model,
		log:   log,
	}
	if err := e.Init(); err != nil {
		return nil, err
	}
	return e, nil
}

// Init builds the engine's components once. It is safe to call repeatedly
// and concurrently. If the model path cannot be set up the error is returned,
// but the rule-based path is still wired so the engine keeps answering.
func (e *Engine) Init() error {
	e.once.Do(func() {
		e.initErr = e.setup()
		if e.initErr == nil {
			e.ready.Store(true)
		}
	})
	return e.initErr
}

func (e *Engine) setup() error {
	if e.log == nil {
		e.log = logger.Get()
	}
	e.log = e.log.With("component", "sentiment_engine")

	e.cfg = e.cfg.withDefaults()
	e.wireRules()

	encoder, err := finbert.NewEncoder(e.cfg.VocabSize, e.cfg.MaxSeqLen)
	if err != nil {
		return errors.Wrap(err, "failed to create encoder")
	}

	if m, ok := e.model.(seqLener); ok && m.SeqLen() != e.cfg.MaxSeqLen {
		return errors.Wrapf(errors.ErrShapeMismatch,
			"model expects sequences of %d, encoder produces %d", m.SeqLen(), e.cfg.MaxSeqLen)
	}

	e.primary = finbert.NewModelClassifier(e.model, encoder)

	e.log.Infow("Sentiment engine initialized",
		"model_loaded", e.primary.Available(),
		"lexicon_terms", e.cfg.Lexicon.Len(),
		"max_seq_len", e.cfg.MaxSeqLen,
	)
	return nil
}

// wireRules sets up everything the rule-based path needs
func (e *Engine) wireRules() {
	e.extractor = extract.New(e.cfg.Lexicon)
	e.scorer = scoring.NewSentenceScorer(e.cfg.Lexicon)
	e.fallback = finbert.NewRuleClassifier()
}

// Ready reports whether Init completed without error
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// AnalyzeSentiment scores text. It never fails: model path errors fall back
// to the rule-based path, and empty or unusual input yields a neutral result.
func (e *Engine) AnalyzeSentiment(text string) *sentiment.Result {
	start := time.Now()
	_ = e.Init()

	out := e.classify(text)

	scores := e.scorer.ScoreAll(textproc.Sentences(text))
	technical, err := indicators.DeriveSentimentIndicators(scores)
	if err != nil {
		e.log.Warnw("Failed to derive technical indicators", "error", err)
		technical = nil
	}

	result := &sentiment.Result{
		Sentiment:           out.Sentiment,
		Confidence:          out.Confidence,
		Probability:         out.Probability,
		Entities:            extract.Entities(text),
		Keywords:            e.extractor.Keywords(text),
		SentenceScores:      scores,
		OverallScore:        (out.Probability.Bullish - out.Probability.Bearish) * out.Confidence,
		TechnicalIndicators: technical,
		Path:                out.Path,
	}

	metrics.RecordAnalysis(string(out.Path), string(out.Sentiment), time.Since(start))
	return result
}

// classify tries the model path and falls back to rules on any error
func (e *Engine) classify(text string) finbert.Output {
	if e.primary.Available() {
		out, err := e.primary.Classify(text)
		if err == nil {
			return out
		}
		e.log.Debugw("Model path failed, using rules", "error", err)
		metrics.RecordInferenceFailure(failureReason(err))
	}
	return e.fallback.Classify(text)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, errors.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, errors.ErrInference):
		return "inference"
	case errors.Is(err, errors.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "other"
	}
}

// GetServiceStats describes the engine for health and stats endpoints
func (e *Engine) GetServiceStats() sentiment.ServiceStats {
	_ = e.Init()

	stats := sentiment.ServiceStats{
		IsInitialized:      e.Ready(),
		SupportedLanguages: []string{"en"},
		ActivePath:         sentiment.PathRules,
	}

	cfg := e.cfg
	if e.primary.Available() {
		stats.ActivePath = sentiment.PathModel
		stats.Accuracy = cfg.ModelAccuracy
		stats.ModelComplexity = fmt.Sprintf(
			"bidirectional LSTM sequence classifier, vocab %d, seq len %d, 3-way softmax; lexicon fallback",
			cfg.VocabSize, cfg.MaxSeqLen)
		return stats
	}

	stats.Accuracy = cfg.RuleAccuracy
	stats.ModelComplexity = "lexicon rule-based classifier"
	return stats
}
