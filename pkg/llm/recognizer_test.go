package llm

import (
	"context"
	"testing"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis_FencedJSON(t *testing.T) {
	content := "Here you go:\n```json\n" +
		`{"foods":[{"name":"rice","portion":"1 cup","calories":200,"protein":4,"carbs":45,"fat":0.5,"confidence":0.9},` +
		`{"name":"chicken","portion":"100 g","calories":165,"protein":31,"carbs":0,"fat":3.6,"confidence":0.7}]}` +
		"\n```"
	a, err := ParseAnalysis(content)
	require.NoError(t, err)
	require.Len(t, a.Foods, 2)
	require.InDelta(t, 365, a.Total.Calories, 0.001)
	require.InDelta(t, 35, a.Total.Protein, 0.001)
	require.InDelta(t, 0.8, a.Confidence, 0.001)
}

func TestParseAnalysis_ClampsValues(t *testing.T) {
	a, err := ParseAnalysis(`{"foods":[{"name":"x","calories":-5,"confidence":1.7}],"confidence":3}`)
	require.NoError(t, err)
	require.Equal(t, 0.0, a.Foods[0].Calories)
	require.Equal(t, 1.0, a.Foods[0].Confidence)
	require.Equal(t, 1.0, a.Confidence)
}

func TestParseAnalysis_Errors(t *testing.T) {
	_, err := ParseAnalysis("I cannot see any food")
	require.ErrorIs(t, err, errs.ErrUnknown)

	_, err = ParseAnalysis(`{"foods":[]}`)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	r := NewRecognizer(&config.LLMConfig{Model: "qwen3-vl-plus"})
	_, err := r.Analyze(context.Background(), "https://example.com/a.jpg")
	require.Error(t, err)
}
