/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{0.5, "½"},
		{1, "1"},
		{2.5, "2½"},
		{7, "7"},
		{0.25, "0.25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreToString(tt.in), "score %v", tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JOHN SMITH", "John Smith"},
		{"  mary   ann  lee ", "Mary Ann Lee"},
		{"PATRICK O'NEIL-SMITH", "Patrick O'Neil-Smith"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in))
	}
}

func TestParseDateOrZero(t *testing.T) {
	for _, s := range []string{"", "null"} {
		d, err := ParseDateOrZero(s)
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	}

	d, err := ParseDateOrZero("2025-06-14T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 14, d.Day())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "round", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "round=2")

	_, err = NewLogger(&buf, "chatty")
	assert.Error(t, err)
}
