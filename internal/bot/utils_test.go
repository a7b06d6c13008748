package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short secret fully masked",
			input:    "abc",
			expected: "***",
		},
		{
			name:     "empty secret",
			input:    "",
			expected: "***",
		},
		{
			name:     "boundary length fully masked",
			input:    "1234567890",
			expected: "***",
		},
		{
			name:     "long secret keeps prefix and suffix",
			input:    "syt_longaccesstoken_abcd",
			expected: "syt_lon***abcd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "under limit unchanged",
			input:    "hello",
			max:      10,
			expected: "hello",
		},
		{
			name:     "exact limit unchanged",
			input:    "hello",
			max:      5,
			expected: "hello",
		},
		{
			name:     "ascii cut at limit",
			input:    "hello world",
			max:      5,
			expected: "hello",
		},
		{
			// each CJK rune is 3 bytes, so a cut at 7 lands mid-rune
			name:     "cjk cut backs up to rune boundary",
			input:    "海阔天空",
			max:      7,
			expected: "海阔",
		},
		{
			name:     "cjk cut exactly on rune boundary",
			input:    "海阔天空",
			max:      6,
			expected: "海阔",
		},
		{
			name:     "mixed ascii and cjk",
			input:    "ab海阔",
			max:      4,
			expected: "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.input, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}

func TestTruncateUTF8LongCJKMessage(t *testing.T) {
	message := strings.Repeat("音乐播放列表", 400)
	got := truncateUTF8(message, 4096)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 4096)
	assert.True(t, strings.HasPrefix(message, got))
}
