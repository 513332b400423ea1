package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{
			name: "few sentences returned unchanged",
			text: "One. Two! Three?",
			max:  3,
			want: "One. Two! Three?",
		},
		{
			name: "position length and keyword scoring",
			text: "The meeting started late. We talked about lunch options for the team. " +
				"The main goal is to ship the release by Friday. Bob brought donuts. " +
				"Therefore we must finish testing this week.",
			max:  3,
			want: "The meeting started late. The main goal is to ship the release by Friday. " +
				"Therefore we must finish testing this week.",
		},
		{
			name: "first and last win on position",
			text: "Alpha. Beta. Gamma. Delta. Epsilon.",
			max:  2,
			want: "Alpha. Epsilon.",
		},
		{
			name: "ties keep document order",
			text: "Alpha. Beta. Gamma. Delta. Epsilon.",
			max:  3,
			want: "Alpha. Beta. Epsilon.",
		},
		{
			name: "budget below one selects a single sentence",
			text: "Alpha. Beta. Gamma.",
			max:  0,
			want: "Alpha.",
		},
		{
			name: "duplicate sentences stay together",
			text: "Repeat me now please friend. Filler. Repeat me now please friend. Other. Last.",
			max:  3,
			want: "Repeat me now please friend. Repeat me now please friend. Last.",
		},
		{
			name: "repeated sentence sorts at its first occurrence",
			text: "alpha alpha alpha run z. important however alpha... z main important y z... important however alpha.",
			max:  3,
			want: "alpha alpha alpha run z. important however alpha. z main important y z.",
		},
		{
			name: "punctuation runs split once",
			text: "Wait!!! Really?! Yes... Fine. Done.",
			max:  2,
			want: "Wait. Done.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text, tt.max))
		})
	}
}

func TestScoreSentence(t *testing.T) {
	// middle sentence, 6 words, three keywords
	assert.InDelta(t, 1.0*1.5*2.5, scoreSentence("However this key point is important", 1, 3), 1e-9)
	// first sentence, short, no keywords
	assert.InDelta(t, 2.0, scoreSentence("Hello there", 0, 3), 1e-9)
	// a keyword counts once even when repeated
	assert.InDelta(t, 1.5, scoreSentence("key key key", 1, 3), 1e-9)
	// 21 words is outside the preferred length band
	long := "a b c d e f g h i j k l m n o p q r s t u"
	assert.InDelta(t, 1.0, scoreSentence(long, 1, 3), 1e-9)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("  First one.  Second!\n\nThird?   ")
	assert.Equal(t, []string{"First one", "Second", "Third"}, got)
	assert.Empty(t, splitSentences(" ... !!! "))
}

func TestExtractive_Summarize(t *testing.T) {
	s := NewExtractive(3)
	assert.Equal(t, LocalModelName, s.Name())

	out, err := s.Summarize(context.Background(), "Line one\n\n  continues here.")
	require.NoError(t, err)
	assert.Equal(t, "Line one continues here.", out)

	out, err = s.SummarizeN(context.Background(), "Alpha. Beta. Gamma. Delta. Epsilon.", 1)
	require.NoError(t, err)
	assert.Equal(t, "Alpha.", out)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("a\u00a0\u00a0b\vc"))
	assert.Equal(t, "one two", CollapseWhitespace("  one\t\r\ntwo  "))
	assert.Empty(t, CollapseWhitespace(" \n "))
}

func TestExtractive_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExtractive(3).Summarize(ctx, "Anything at all.")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewExtractive_DefaultsBudget(t *testing.T) {
	assert.Equal(t, DefaultMaxSentences, NewExtractive(0).maxSentences)
}
