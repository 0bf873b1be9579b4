package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopahe/pahedl/internal/models"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		BaseURL: server.URL + "/api",
		SiteURL: server.URL,
		http:    server.Client(),
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("m"))
		assert.Equal(t, "jujutsu kaisen", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"data":[
			{"id":4563,"title":"Jujutsu Kaisen","session":"abc123"},
			{"id":4620,"title":"Jujutsu Kaisen (Dub)","session":"def456"}
		]}`)
	}))
	defer server.Close()

	results, err := newTestClient(server).Search("jujutsu kaisen")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 4563, results[0].ID)
	assert.Equal(t, "Jujutsu Kaisen", results[0].Title)
	assert.Equal(t, "abc123", results[0].Session)
	assert.True(t, results[1].IsDub())
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server).Search("anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestSearchMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": not json`)
	}))
	defer server.Close()

	_, err := newTestClient(server).Search("anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestFetchAllEpisodesPaginates(t *testing.T) {
	var pagesRequested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "release", r.URL.Query().Get("m"))
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("l"))

		page := r.URL.Query().Get("page")
		pagesRequested = append(pagesRequested, page)

		switch page {
		case "1":
			fmt.Fprint(w, `{"last_page":2,"data":[
				{"episode":1,"session":"s1","snapshot":"img1"},
				{"episode":2,"session":"s2","snapshot":"img2"}
			]}`)
		case "2":
			fmt.Fprint(w, `{"last_page":2,"data":[
				{"episode":3,"session":"s3"}
			]}`)
		default:
			t.Errorf("unexpected page request: %s", page)
		}
	}))
	defer server.Close()

	episodes, err := newTestClient(server).FetchAllEpisodes(42)
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	assert.Equal(t, []string{"1", "2"}, pagesRequested)
	assert.Equal(t, 1, episodes[0].Number)
	assert.Equal(t, "s1", episodes[0].Session)
	assert.Equal(t, "img1", episodes[0].Snapshot["snapshot"])
	assert.Equal(t, 3, episodes[2].Number)
}

func TestFetchAllEpisodesFailingPageDropsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"last_page":3,"data":[{"episode":1,"session":"s1"}]}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	episodes, err := newTestClient(server).FetchAllEpisodes(7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Nil(t, episodes)
}

func TestFetchAllEpisodesStringEpisodeNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"last_page":1,"data":[
			{"episode":"12","session":"s12"},
			{"episode":13,"session":"s13"}
		]}`)
	}))
	defer server.Close()

	episodes, err := newTestClient(server).FetchAllEpisodes(7)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, 12, episodes[0].Number)
	assert.Equal(t, 13, episodes[1].Number)
}

func TestFetchAllEpisodesBadEpisodeNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"last_page":1,"data":[{"episode":null,"session":"s1"}]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchAllEpisodes(7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestFetchAllEpisodesMissingLastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"episode":5,"session":"s5"}]}`)
	}))
	defer server.Close()

	episodes, err := newTestClient(server).FetchAllEpisodes(7)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, 5, episodes[0].Number)
}

func TestFilterByLanguage(t *testing.T) {
	results := []models.SearchResult{
		{ID: 1, Title: "Naruto"},
		{ID: 2, Title: "Naruto (Dub)"},
		{ID: 3, Title: "Naruto Shippuden"},
	}

	t.Run("no preference is identity", func(t *testing.T) {
		assert.Equal(t, results, FilterByLanguage(results, models.LangNone))
	})

	t.Run("dub keeps dubbed titles", func(t *testing.T) {
		filtered := FilterByLanguage(results, models.LangDub)
		require.Len(t, filtered, 1)
		assert.Equal(t, 2, filtered[0].ID)
	})

	t.Run("sub excludes dubbed titles", func(t *testing.T) {
		filtered := FilterByLanguage(results, models.LangSub)
		require.Len(t, filtered, 2)
		assert.Equal(t, 1, filtered[0].ID)
		assert.Equal(t, 3, filtered[1].ID)
	})

	t.Run("never empties a non-empty input", func(t *testing.T) {
		subsOnly := []models.SearchResult{{ID: 9, Title: "Monster"}}
		assert.Equal(t, subsOnly, FilterByLanguage(subsOnly, models.LangDub))
	})
}
