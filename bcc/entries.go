/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/clubtd/internal"
)

// GetEntries returns the registered entries of an event. The JSON API is
// preferred; when it fails or lists nobody the public entries page is
// scraped instead.
func (c *Client) GetEntries(ctx context.Context,
	eventId int64) ([]Entry, Source, error) {

	detail, apiErr := c.GetEventDetail(ctx, eventId)
	if apiErr == nil && len(detail.Entries) > 0 {
		return detail.Entries, SourceAPI, nil
	}
	if apiErr != nil {
		c.logger.Warn("Event API failed; scraping entries page",
			"event", eventId, "error", apiErr)
	}

	url := fmt.Sprintf("%v/tournament/entries/%d", c.webBaseURL, eventId)
	doc, err := c.fetchDoc(ctx, url)
	if err != nil {
		if apiErr != nil {
			return nil, SourceAPI, apiErr
		}
		return nil, SourceWebsite, fmt.Errorf("unable to fetch entries page: %w", err)
	}

	return parseEntries(doc), SourceWebsite, nil
}

// parseEntries extracts entries from the members table of the entries page.
// Rows are: number, name, rating, USCF ID and optionally section.
func parseEntries(doc *goquery.Document) []Entry {
	var entries []Entry
	doc.Find("table#members tbody tr").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td")
		if cells.Length() < 4 {
			return
		}
		name := internal.NormalizeName(strings.TrimSpace(cells.Eq(1).Text()))
		uscfID, _ := strconv.Atoi(strings.TrimSpace(cells.Eq(3).Text()))

		e := Entry{
			PrimaryRating: strings.TrimSpace(cells.Eq(2).Text()),
			UscfID:        uscfID,
		}
		if cells.Length() > 4 {
			e.SectionName = strings.TrimSpace(cells.Eq(4).Text())
		}
		parts := strings.Fields(name)
		if len(parts) > 0 {
			e.FirstName = parts[0]
		}
		if len(parts) > 1 {
			e.LastName = strings.Join(parts[1:], " ")
		}
		entries = append(entries, e)
	})

	return entries
}
