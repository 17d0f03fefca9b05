/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// ScoreToString renders a score the way a wall chart does: 1½, ½, 3.
func ScoreToString(score float64) string {
	whole, frac := math.Modf(score)
	switch {
	case frac == 0:
		return fmt.Sprintf("%d", int(whole))
	case frac == 0.5 && whole == 0:
		return "½"
	case frac == 0.5:
		return fmt.Sprintf("%d½", int(whole))
	}
	return fmt.Sprintf("%g", score)
}

// NormalizeName collapses whitespace and title-cases each word, so
// "JOHN   o'neil-SMITH" becomes "John O'Neil-Smith".
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		upperNext := true
		for j, r := range runes {
			if upperNext && unicode.IsLetter(r) {
				runes[j] = unicode.ToUpper(r)
				upperNext = false
			}
			if r == '-' || r == '\'' {
				upperNext = true
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func ToAnySlice[T any](slice []T) []any {
	out := make([]any, len(slice))
	for i, v := range slice {
		out[i] = v
	}
	return out
}
