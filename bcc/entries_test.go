/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventJSON = `{
  "eventId": 1312,
  "title": "Big Money Swiss",
  "startDate": "2025-06-14T10:00:00",
  "endDate": "null",
  "sections": ["Open", "U1800"],
  "entries": [
    {"firstName": "Andrew", "lastName": "Hoy", "uscfId": 12846607,
     "sectionName": "Open", "primaryRating": "2105",
     "registrationDate": "2025-06-01T09:30:00"},
    {"firstName": "Jane", "lastName": "Smith", "uscfId": 7,
     "sectionName": "U1800", "primaryRating": "559/24",
     "registrationDate": ""}
  ]
}`

const entriesHTML = `<html><body>
<table id="members"><thead><tr><th>#</th><th>Name</th><th>Rating</th><th>ID</th></tr></thead>
<tbody>
<tr><td>1</td><td>ANDREW HOY</td><td>2105</td><td>12846607</td><td>Open</td></tr>
<tr><td>2</td><td>mary ann lee</td><td>unr.</td><td></td><td>U1800</td></tr>
<tr><td>short row</td></tr>
</tbody></table>
</body></html>`

func newTestServer(t *testing.T, apiStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/event/1312", func(w http.ResponseWriter,
		r *http.Request) {

		if apiStatus != http.StatusOK {
			w.WriteHeader(apiStatus)
			return
		}
		fmt.Fprint(w, eventJSON)
	})
	mux.HandleFunc("/tournament/entries/1312", func(w http.ResponseWriter,
		r *http.Request) {

		fmt.Fprint(w, entriesHTML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetEventDetail(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)
	client := NewClient(context.Background(), "",
		WithHTTPClient(srv.Client()), WithBaseURLs(srv.URL+"/api", srv.URL))

	detail, err := client.GetEventDetail(context.Background(), 1312)
	require.NoError(t, err)
	assert.Equal(t, 1312, detail.EventID)
	assert.Equal(t, "Big Money Swiss", detail.Title)
	assert.False(t, detail.StartDate.IsZero())
	assert.True(t, detail.EndDate.IsZero())
	require.Len(t, detail.Entries, 2)
	assert.Equal(t, 12846607, detail.Entries[0].UscfID)
	assert.Equal(t, 2025, detail.Entries[0].RegistrationDate.Year())
	assert.True(t, detail.Entries[1].RegistrationDate.IsZero())
}

func TestGetEntriesViaApi(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)
	client := NewClient(context.Background(), "",
		WithHTTPClient(srv.Client()), WithBaseURLs(srv.URL+"/api", srv.URL))

	entries, src, err := client.GetEntries(context.Background(), 1312)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	require.Len(t, entries, 2)
	assert.Equal(t, "Andrew Hoy", entries[0].DisplayName())
	assert.Equal(t, 559, entries[1].Rating())
}

func TestGetEntriesViaWeb(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError)
	client := NewClient(context.Background(), "",
		WithHTTPClient(srv.Client()), WithBaseURLs(srv.URL+"/api", srv.URL))

	entries, src, err := client.GetEntries(context.Background(), 1312)
	require.NoError(t, err)
	assert.Equal(t, SourceWebsite, src)
	require.Len(t, entries, 2)

	assert.Equal(t, "Andrew", entries[0].FirstName)
	assert.Equal(t, "Hoy", entries[0].LastName)
	assert.Equal(t, 2105, entries[0].Rating())
	assert.Equal(t, 12846607, entries[0].UscfID)
	assert.Equal(t, "Open", entries[0].SectionName)

	assert.Equal(t, "Mary Ann Lee", entries[1].DisplayName())
	assert.Equal(t, 0, entries[1].Rating())
	assert.Equal(t, 0, entries[1].UscfID)
}
