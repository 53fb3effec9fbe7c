package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipehub/internal/apperrors"
)

func TestParseISO(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"PT1H30M", 90 * time.Minute},
		{"pt1h30m", 90 * time.Minute},
		{"PT45M", 45 * time.Minute},
		{"PT2H", 2 * time.Hour},
		{"PT90S", 90 * time.Second},
		{"P1DT2H", 26 * time.Hour},
		{"P2D", 48 * time.Hour},
		{"PT0S", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLenientFallbacks(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1:30", 90 * time.Minute},        // H:MM, first field within hours
		{"45:30", 45*time.Minute + 30*time.Second}, // MM:SS, first field too big for hours
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"1h30m", 90 * time.Minute},
		{"2 hours 15 minutes", 2*time.Hour + 15*time.Minute},
		{"45s", 45 * time.Second},
		{"90", 90 * time.Minute}, // bare integer means minutes
		{"  PT1H  ", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLenientAndISOAgree(t *testing.T) {
	lenient, err := Parse("1h30m")
	require.NoError(t, err)
	strict, err := Parse("PT1H30M")
	require.NoError(t, err)
	assert.Equal(t, strict, lenient)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "P", "PT", "eleventy", "1h30x", "-90", "1.5h", "::"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, apperrors.IsFormat(err))
		})
	}
}

func TestParseOrZero(t *testing.T) {
	logger := zap.NewNop()

	assert.Equal(t, 90*time.Minute, ParseOrZero("PT1H30M", logger))
	assert.Equal(t, time.Duration(0), ParseOrZero("", logger))
	assert.Equal(t, time.Duration(0), ParseOrZero("corrupt value", logger))
	assert.Equal(t, time.Duration(0), ParseOrZero("corrupt value", nil))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "PT0S"},
		{-time.Minute, "PT0S"},
		{90 * time.Minute, "PT1H30M"},
		{45 * time.Second, "PT45S"},
		{2 * time.Hour, "PT2H"},
		{26*time.Hour + 5*time.Second, "PT26H5S"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.d))
	}
}

func TestFormatRoundTrips(t *testing.T) {
	for _, text := range []string{"PT1H30M", "PT45S", "PT2H", "PT26H5S"} {
		d, err := Parse(text)
		require.NoError(t, err)
		assert.Equal(t, text, Format(d))
	}
}
