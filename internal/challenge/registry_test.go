package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
)

func TestParsePair(t *testing.T) {
	left, right, err := parsePair("Akarenze umunwa|What passes the mouth")
	require.NoError(t, err)
	assert.Equal(t, "Akarenze umunwa", left)
	assert.Equal(t, "What passes the mouth", right)
}

func TestParsePairStripsMarkdownNoise(t *testing.T) {
	left, right, err := parsePair("```\n## Mwaramutse | **Good morning**\n```")
	require.NoError(t, err)
	assert.Equal(t, "Mwaramutse", left)
	assert.Equal(t, "Good morning", right)
}

func TestParsePairKeepsFirstTwoFields(t *testing.T) {
	left, right, err := parsePair("a|b|c")
	require.NoError(t, err)
	assert.Equal(t, "a", left)
	assert.Equal(t, "b", right)
}

func TestParsePairMalformedIsRetriable(t *testing.T) {
	for _, raw := range []string{"no delimiter", "|missing left", "missing right|", ""} {
		_, _, err := parsePair(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, genai.IsGenerationFailure(err), "input %q must be retriable", raw)
	}
}

func TestKindsForModes(t *testing.T) {
	r := NewRegistry(&stubGenerator{}, testCorpus(), "testdata", nil)

	kinds, err := r.KindsFor("translation")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KindProverb, KindPhrase}, kinds)

	kinds, err = r.KindsFor("sakwe")
	require.NoError(t, err)
	assert.Equal(t, []string{KindRiddleIntro}, kinds)

	_, err = r.KindsFor("bogus")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestCorpusPickEmpty(t *testing.T) {
	_, err := NewCorpus(nil).Pick()
	assert.Error(t, err)
}
