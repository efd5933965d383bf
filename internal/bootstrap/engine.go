package bootstrap

import (
	"finsentiment/internal/adapters/config"
	"finsentiment/internal/ml"
	"finsentiment/internal/ml/finbert"
	sentimentsvc "finsentiment/internal/services/sentiment"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

// EngineConfig maps the model section of the service config onto the engine
func EngineConfig(cfg config.ModelConfig) sentimentsvc.Config {
	ec := sentimentsvc.DefaultConfig()
	ec.VocabSize = cfg.VocabSize
	ec.MaxSeqLen = cfg.MaxSeqLen
	if cfg.Accuracy > 0 {
		ec.ModelAccuracy = cfg.Accuracy
	}
	return ec
}

// LoadModel opens the ONNX sequence classifier. With no model path it
// returns nil and the engine runs on the rule-based path. A load failure is
// fatal only when the model is marked required.
func LoadModel(cfg config.ModelConfig, log *logger.Logger) (*ml.SequenceModel, error) {
	if cfg.Path == "" {
		log.Info("No model configured, using lexicon classifier only")
		return nil, nil
	}

	model, err := ml.LoadSequenceModel(cfg.Path, cfg.RuntimeLibrary, cfg.InputName, cfg.OutputName, cfg.MaxSeqLen)
	if err != nil {
		if cfg.Required {
			return nil, errors.Wrap(err, "load required sentiment model")
		}
		log.Warnw("Sentiment model unavailable, using lexicon classifier only",
			"path", cfg.Path,
			"error", err,
		)
		return nil, nil
	}

	log.Infow("Sentiment model loaded", "path", cfg.Path, "seq_len", model.SeqLen())
	return model, nil
}

// NewEngine builds the engine and returns a release func for the model
// session. If the model path fails to initialize and the model is not
// required, the engine is rebuilt on the rule-based path alone.
func NewEngine(cfg config.ModelConfig, log *logger.Logger) (*sentimentsvc.Engine, func(), error) {
	model, err := LoadModel(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if model != nil {
			model.Close()
		}
	}

	// A nil *SequenceModel must not reach the engine as a non-nil interface
	var m finbert.Model
	if model != nil {
		m = model
	}

	engine, err := sentimentsvc.NewEngine(EngineConfig(cfg), m, log)
	if err != nil && m != nil && !cfg.Required {
		log.Warnw("Model path failed to initialize, falling back to lexicon classifier", "error", err)
		release()
		release = func() {}
		engine, err = sentimentsvc.NewEngine(EngineConfig(cfg), nil, log)
	}
	if err != nil {
		release()
		return nil, nil, errors.Wrap(err, "initialize sentiment engine")
	}

	return engine, release, nil
}
