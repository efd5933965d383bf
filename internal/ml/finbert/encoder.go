package finbert

import (
	"hash/fnv"

	"finsentiment/internal/nlp/textproc"
	"finsentiment/pkg/errors"
)

// PadID fills positions past the end of the text. Token ids never use it.
const PadID int64 = 0

// Encoder maps text to a fixed-length sequence of token ids through a hashed
// vocabulary. It stands in for a real subword tokenizer and must be replaced
// together with the model if a pretrained one is used.
type Encoder struct {
	vocabSize int
	maxSeqLen int
}

// NewEncoder creates an encoder. vocabSize counts the padding id.
func NewEncoder(vocabSize, maxSeqLen int) (*Encoder, error) {
	if vocabSize < 2 {
		return nil, errors.NewValidationError("vocab_size", "must be at least 2", vocabSize)
	}
	if maxSeqLen <= 0 {
		return nil, errors.NewValidationError("max_seq_len", "must be positive", maxSeqLen)
	}
	return &Encoder{vocabSize: vocabSize, maxSeqLen: maxSeqLen}, nil
}

// MaxSeqLen returns the length of every encoded sequence
func (e *Encoder) MaxSeqLen() int {
	return e.maxSeqLen
}

// Encode canonicalizes synonyms, stems the tokens and hashes each one into
// [1, vocabSize). The result is truncated or zero-padded to MaxSeqLen.
func (e *Encoder) Encode(text string) []int64 {
	ids := make([]int64, e.maxSeqLen)
	tokens := textproc.Tokenize(textproc.Canonicalize(text))
	for i, tok := range tokens {
		if i == e.maxSeqLen {
			break
		}
		ids[i] = e.tokenID(tok)
	}
	return ids
}

func (e *Encoder) tokenID(token string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return 1 + int64(h.Sum32())%int64(e.vocabSize-1)
}
