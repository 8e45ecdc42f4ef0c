package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/officina-ai/officina/pkg/workflow/errors"
)

func TestHTTPLocator_AccumulatesPages(t *testing.T) {
	pages := []locatorPage{
		{Items: []Workshop{{CompanyName: "A"}, {CompanyName: "B"}}, TotalPages: 2},
		{Items: []Workshop{{CompanyName: "C"}}, TotalPages: 2},
	}

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/workshops", r.URL.Path)
		assert.Equal(t, "45.46", r.URL.Query().Get("latitude"))
		assert.Equal(t, "9.19", r.URL.Query().Get("longitude"))
		assert.Equal(t, "30", r.URL.Query().Get("distance"))
		assert.Equal(t, "true", r.URL.Query().Get("mechanic"))
		assert.Equal(t, fmt.Sprint(calls), r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(pages[calls-1])
	}))
	defer srv.Close()

	locator := NewHTTPLocator(srv.URL)
	workshops, err := locator.Nearby(context.Background(), 45.46, 9.19)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, workshops, 3)
	assert.Equal(t, "A", workshops[0].CompanyName)
	assert.Equal(t, "B", workshops[1].CompanyName)
	assert.Equal(t, "C", workshops[2].CompanyName)
}

func TestHTTPLocator_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(locatorPage{
			Items:      []Workshop{{CompanyName: "Only"}},
			TotalPages: 1,
		})
	}))
	defer srv.Close()

	workshops, err := NewHTTPLocator(srv.URL).Nearby(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, workshops, 1)
}

func TestHTTPLocator_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(locatorPage{TotalPages: 0})
	}))
	defer srv.Close()

	workshops, err := NewHTTPLocator(srv.URL).Nearby(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, workshops)
}

func TestHTTPLocator_AbortsOnErrorStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	workshops, err := NewHTTPLocator(srv.URL).Nearby(context.Background(), 1, 2)

	require.Error(t, err)
	assert.Nil(t, workshops)
	assert.Equal(t, 1, calls)

	var statusErr *wferrors.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
}

func TestHTTPLocator_DiscardsPartialOnMidLoopFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(locatorPage{
				Items:      []Workshop{{CompanyName: "A"}},
				TotalPages: 3,
			})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	workshops, err := NewHTTPLocator(srv.URL).Nearby(context.Background(), 1, 2)

	require.Error(t, err)
	assert.Nil(t, workshops)
	assert.Equal(t, 2, calls)
}
