package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/internal/domain/sentiment"
)

func TestRun_AnalyzesArgs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"Strong", "growth", "and", "rising", "profits"}, strings.NewReader(""), &out, false, false))

	var result sentiment.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, sentiment.Bullish, result.Sentiment)
	assert.Equal(t, sentiment.PathRules, result.Path)
	assert.Contains(t, out.String(), "\n  \"sentiment\"")
}

func TestRun_ReadsStdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader("Weak demand and falling margins."), &out, false, true))

	var result sentiment.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, sentiment.Bearish, result.Sentiment)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out.String()), "\n")+1)
}

func TestRun_Stats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader(""), &out, true, false))

	var stats sentiment.ServiceStats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.True(t, stats.IsInitialized)
	assert.Equal(t, sentiment.PathRules, stats.ActivePath)
}
