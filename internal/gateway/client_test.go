package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEnrolledGroups_StripsTokenQuotes(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/groups/list-complete", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"g-1","name":"IA 2025","description":"Grupo A","start_date":"2025-01-10","end_date":"2025-06-30","status":"active"}]}`))
	}))
	defer srv.Close()

	api := AcademicAPI{Client: NewClient(srv.URL, time.Second), GroupsPath: "/groups/list-complete"}
	groups, err := api.ListEnrolledGroups(context.Background(), `"tok.en"`)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "g-1", groups[0].ID)
	assert.Equal(t, "Bearer tok.en", gotAuth)
}

func TestListSurveys_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	api := EvaluationAPI{Client: NewClient(srv.URL, time.Second), SurveysPath: "/surveys/by-role"}
	_, err := api.ListSurveys(context.Background(), "t")
	require.Error(t, err)
	assert.Equal(t, "Error 403: Forbidden", err.Error())

	var ue UpstreamError
	assert.ErrorAs(t, err, &ue)
}

func TestListSurveys_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	api := EvaluationAPI{Client: NewClient(srv.URL, time.Second), SurveysPath: "/s"}
	got, err := api.ListSurveys(context.Background(), "t")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListSurveys_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	api := EvaluationAPI{Client: NewClient(url, time.Second), SurveysPath: "/s"}
	_, err := api.ListSurveys(context.Background(), "t")
	assert.Error(t, err)
}
