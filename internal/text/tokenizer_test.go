package text_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/book-expert/speak/internal/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nepaliSample = "अष्ट्रेलियाले ‘विश्वको सबैभन्दा ठूलो सौर्य तथा बेट्री फर्म’ परियोजनालाई स्वीकृति दिएको छ। " +
	"यस परियोजनाले सिंगापुरलाई ऊर्जा निर्यात गर्नेछ।"

func TestNewTokenizer_DefaultLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, text.DefaultMaxChars, text.NewTokenizer(0).MaxChars)
	assert.Equal(t, text.DefaultMaxChars, text.NewTokenizer(-5).MaxChars)
	assert.Equal(t, 42, text.NewTokenizer(42).MaxChars)
}

func TestTokenizer_Normalize(t *testing.T) {
	t.Parallel()

	tokenizer := text.NewTokenizer(0)

	assert.Equal(t, "a b c", tokenizer.Normalize("  a \n b\t\tc  "))
	assert.Empty(t, tokenizer.Normalize(" \n\t "))
}

func TestTokenizer_Split(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		maxChars int
		expected []string
	}{
		{
			name:     "short devanagari text stays whole",
			input:    "नमस्ते",
			maxChars: 0,
			expected: []string{"नमस्ते"},
		},
		{
			name:     "whitespace only yields nothing",
			input:    "   \n ",
			maxChars: 0,
			expected: nil,
		},
		{
			name:     "cuts on the danda",
			input:    nepaliSample,
			maxChars: 0,
			expected: []string{
				"अष्ट्रेलियाले ‘विश्वको सबैभन्दा ठूलो सौर्य तथा बेट्री फर्म’ परियोजनालाई स्वीकृति दिएको छ।",
				"यस परियोजनाले सिंगापुरलाई ऊर्जा निर्यात गर्नेछ।",
			},
		},
		{
			name:     "prefers sentence end over spaces",
			input:    "Hi there. How are you doing today",
			maxChars: 20,
			expected: []string{"Hi there.", "How are you doing", "today"},
		},
		{
			name:     "falls back to spaces",
			input:    "one two three four",
			maxChars: 10,
			expected: []string{"one two", "three four"},
		},
		{
			name:     "prefers commas over spaces",
			input:    "alpha, beta gamma delta",
			maxChars: 16,
			expected: []string{"alpha,", "beta gamma delta"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			pieces := text.NewTokenizer(testCase.maxChars).Split(testCase.input)
			assert.Equal(t, testCase.expected, pieces)
		})
	}
}

func TestTokenizer_Split_HardCut(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 250)

	pieces := text.NewTokenizer(100).Split(input)
	require.Len(t, pieces, 3)
	assert.Len(t, pieces[0], 100)
	assert.Len(t, pieces[1], 100)
	assert.Len(t, pieces[2], 50)
	assert.Equal(t, input, strings.Join(pieces, ""))
}

func TestTokenizer_Split_RespectsLimit(t *testing.T) {
	t.Parallel()

	tokenizer := text.NewTokenizer(25)
	input := strings.Repeat(nepaliSample+" ", 3)

	pieces := tokenizer.Split(input)
	require.NotEmpty(t, pieces)

	for _, piece := range pieces {
		assert.LessOrEqual(t, utf8.RuneCountInString(piece), 25, piece)
		assert.NotEmpty(t, piece)
	}

	assert.Equal(t, tokenizer.Normalize(input), strings.Join(pieces, " "))
}
