/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"testing"
)

// TestEntryRating verifies that entry ratings are parsed correctly.
func TestEntryRating(t *testing.T) {
	cases := []struct {
		name   string
		entry  Entry
		wantPR int
	}{
		{
			name:   "rating with slash",
			entry:  Entry{FirstName: "John", LastName: "Doe", UscfID: 42, PrimaryRating: "559/24"},
			wantPR: 559,
		},
		{
			name:   "rating without slash",
			entry:  Entry{FirstName: "Jane", LastName: "Smith", UscfID: 7, PrimaryRating: "1500"},
			wantPR: 1500,
		},
		{
			name:   "empty rating",
			entry:  Entry{FirstName: "Empty", LastName: "Ratings"},
			wantPR: 0,
		},
		{
			name:   "malformed rating",
			entry:  Entry{FirstName: "Bad", LastName: "Data", PrimaryRating: "abc/123"},
			wantPR: 0,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.entry.Rating(); got != c.wantPR {
				t.Errorf("%s: Rating() = %d; want %d", c.name, got, c.wantPR)
			}
			wantName := c.entry.FirstName + " " + c.entry.LastName
			if got := c.entry.DisplayName(); got != wantName {
				t.Errorf("%s: DisplayName() = %q; want %q", c.name, got, wantName)
			}
		})
	}
}

func TestSections(t *testing.T) {
	entries := []Entry{
		{SectionName: "U1200"},
		{SectionName: "Reserve"},
		{SectionName: "Open"},
		{SectionName: "U1800"},
		{SectionName: "U1200"},
	}
	got := Sections(entries)
	want := []string{"Open", "U1800", "U1200", "Reserve"}
	if len(got) != len(want) {
		t.Fatalf("Sections() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sections()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}
