package airtable

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"AwardSync/internal/config"
	"AwardSync/internal/model"
	"AwardSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	cfg := &config.PlatformConfig{
		BaseURL:   srv.URL,
		Timeout:   5,
		AuthToken: "key-123",
		BaseID:    "appBase",
		Table:     "Award Winners",
		PageSize:  2,
	}
	return NewAirtableAdapter(cfg, logger).(*Adapter)
}

func TestFetchSourceRecordsFollowsOffset(t *testing.T) {
	var pages []string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/appBase/Award%20Winners", r.URL.EscapedPath())
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))
		pages = append(pages, r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			_, _ = w.Write([]byte(`{"records":[
				{"id":"rec1","fields":{"Name":"Jane Doe","Year":2020,"Award winner image":[{"id":"att1","url":"https://img/a.png","filename":"a.png"}]}},
				{"id":"rec2","fields":{"Name":"John Roe","Year":"2021"}}
			],"offset":"itrNext"}`))
		case "itrNext":
			_, _ = w.Write([]byte(`{"records":[{"id":"rec3","fields":{"Name":"Ann Poe"}}]}`))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})

	records, err := a.FetchSourceRecords(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "itrNext"}, pages)
	require.Len(t, records, 3)
	assert.Equal(t, &model.SourceRecord{ID: "rec1", Name: "Jane Doe", Year: model.NumberValue("2020"), ImageURL: "https://img/a.png"}, records[0])
	assert.Equal(t, &model.SourceRecord{ID: "rec2", Name: "John Roe", Year: model.TextValue("2021")}, records[1])
	assert.Equal(t, &model.SourceRecord{ID: "rec3", Name: "Ann Poe"}, records[2])
}

func TestFetchSourceRecordsErrorStatus(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED"}}`))
	})

	records, err := a.FetchSourceRecords(context.Background())

	assert.Nil(t, records)
	var te *httpclient.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, "airtable", te.Platform)
	assert.Contains(t, te.Body, "AUTHENTICATION_REQUIRED")
}

func TestFetchSourceRecordsFailsWholeSnapshotOnLaterPage(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			_, _ = w.Write([]byte(`{"records":[{"id":"rec1","fields":{"Name":"A"}}],"offset":"p2"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	records, err := a.FetchSourceRecords(context.Background())
	assert.Error(t, err)
	assert.Nil(t, records, "partial snapshots are never returned")
}
