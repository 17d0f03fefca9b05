/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mikeb26/clubtd/internal"
)

// vended by <api>/event/<eventId>
// EventDetail represents detailed information about a specific event.
type EventDetail struct {
	EventID     int       `json:"eventId"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	DateDisplay string    `json:"dateDisplay"`
	Sections    []string  `json:"sections"`
	EventFormat string    `json:"eventFormat"`
	TimeControl string    `json:"timeControl"`
	NumEntries  int       `json:"numEntries"`
	Entries     []Entry   `json:"entries"`
}

// Entry represents a single registration entry for an event.
type Entry struct {
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	UscfID            int       `json:"uscfId"`
	ChessTitle        string    `json:"chessTitle"`
	SectionName       string    `json:"sectionName"`
	RegistrationDate  time.Time `json:"registrationDate"`
	ByeRequests       string    `json:"byeRequests"`
	PrimaryRating     string    `json:"primaryRating"`
	PrimaryRatingType string    `json:"primaryRatingType"`
	SecondaryRating   string    `json:"secondaryRating"`
}

// GetEventDetail fetches detailed event info from the club API.
func (c *Client) GetEventDetail(ctx context.Context,
	eventId int64) (EventDetail, error) {

	url := fmt.Sprintf("%v/event/%d", c.apiBaseURL, eventId)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return EventDetail{}, fmt.Errorf("unable to fetch bcc event detail (new): %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return EventDetail{}, fmt.Errorf("unable to fetch bcc event detail (do): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return EventDetail{}, fmt.Errorf("unable to fetch bcc event detail (http): %v", resp.StatusCode)
	}

	var detail EventDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return EventDetail{}, fmt.Errorf("unable to parse bcc event detail: %w", err)
	}

	return detail, nil
}

// Custom unmarshaller for EventDetail to handle flexible date parsing.
func (ed *EventDetail) UnmarshalJSON(data []byte) error {
	type Alias EventDetail
	aux := &struct {
		StartDate string  `json:"startDate"`
		EndDate   string  `json:"endDate"`
		Entries   []Entry `json:"entries"`
		*Alias
	}{
		Alias: (*Alias)(ed),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("EventDetail unmarshal: %w", err)
	}
	var err error
	ed.StartDate, err = internal.ParseDateOrZero(aux.StartDate)
	if err != nil {
		return fmt.Errorf("parsing EventDetail.StartDate: %w", err)
	}
	ed.EndDate, err = internal.ParseDateOrZero(aux.EndDate)
	if err != nil {
		return fmt.Errorf("parsing EventDetail.EndDate: %w", err)
	}
	ed.Entries = aux.Entries
	return nil
}

// Custom unmarshaller for Entry to handle flexible date parsing.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type Alias Entry
	aux := &struct {
		RegistrationDate string `json:"registrationDate"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("Entry unmarshal: %w", err)
	}
	var err error
	e.RegistrationDate, err = internal.ParseDateOrZero(aux.RegistrationDate)
	if err != nil {
		return fmt.Errorf("parsing Entry.RegistrationDate: %w", err)
	}
	return nil
}
