/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mikeb26/clubtd/internal"
)

var (
	ErrUnrated  = errors.New("uschess: member has no regular rating")
	ErrNotFound = errors.New("uschess: member not found")
)

type MemID int

// Player holds the ratings of a USCF member. A zero rating means unrated in
// that system.
type Player struct {
	MemberID    MemID
	Name        string
	RegRating   int
	QuickRating int
	BlitzRating int
}

// apiMemberResponse represents the JSON response from the member API endpoint
type apiMemberResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Ratings   []struct {
		Rating       int    `json:"rating"`
		RatingSystem string `json:"ratingSystem"`
	} `json:"ratings"`
}

// FetchPlayer retrieves the given member's profile from the ratings API.
func (client *Client) FetchPlayer(ctx context.Context,
	memberID MemID) (*Player, error) {

	endpoint := fmt.Sprintf("%v/members/%v", client.baseURL, memberID)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating profile request: %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing profile HTTP GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, memberID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected profile status %d: %s",
			resp.StatusCode, string(body))
	}

	var memberData apiMemberResponse
	if err := json.NewDecoder(resp.Body).Decode(&memberData); err != nil {
		return nil, fmt.Errorf("decoding profile JSON: %w", err)
	}

	player := &Player{
		MemberID: memberID,
		Name: internal.NormalizeName(memberData.FirstName + " " +
			memberData.LastName),
	}
	for _, rating := range memberData.Ratings {
		switch rating.RatingSystem {
		case "R":
			player.RegRating = rating.Rating
		case "Q":
			player.QuickRating = rating.Rating
		case "B":
			player.BlitzRating = rating.Rating
		}
	}
	client.logger.Debug("Fetched member", "id", memberID,
		"regular", player.RegRating)

	return player, nil
}

// RegularRating returns the member's current regular (over the board)
// rating, or ErrUnrated.
func (client *Client) RegularRating(ctx context.Context,
	memberID MemID) (int, error) {

	player, err := client.FetchPlayer(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if player.RegRating == 0 {
		return 0, fmt.Errorf("%w: %v", ErrUnrated, memberID)
	}
	return player.RegRating, nil
}
