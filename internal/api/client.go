// Package api implements the AnimePahe catalog client: search and the
// paginated episode listing.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gopahe/pahedl/internal/models"
	"github.com/gopahe/pahedl/internal/util"
)

const (
	// DefaultBaseURL is the catalog API endpoint.
	DefaultBaseURL = "https://animepahe.ru/api"

	// DefaultSiteURL is the site root, used as Referer and as the base of
	// watch-page URLs.
	DefaultSiteURL = "https://animepahe.ru"

	// UserAgent mirrors a desktop Chrome; the catalog rejects obvious bots.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	pageSize = 100
)

// ErrNetwork marks catalog failures: transport errors, non-2xx responses and
// malformed payloads. Matched with errors.Is.
var ErrNetwork = errors.New("catalog request failed")

// Client talks to the AnimePahe JSON API.
type Client struct {
	BaseURL string
	SiteURL string
	http    *http.Client
}

// NewClient returns a catalog client backed by the shared pooled HTTP client.
func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		SiteURL: DefaultSiteURL,
		http:    util.GetSharedClient(),
	}
}

type searchEnvelope struct {
	Data []models.SearchResult `json:"data"`
}

type releaseEnvelope struct {
	Data     []map[string]any `json:"data"`
	LastPage int              `json:"last_page"`
}

// Search queries the catalog for the given title.
func (c *Client) Search(title string) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("m", "search")
	params.Set("q", title)

	body, err := c.get(params)
	if err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrapf(ErrNetwork, "malformed search response: %v", err)
	}

	util.Debugf("search %q returned %d results", title, len(envelope.Data))
	return envelope.Data, nil
}

// FetchAllEpisodes walks the paginated release listing for the anime,
// ascending, until the server-reported last page. Any page failure drops the
// whole listing; there is no resume.
func (c *Client) FetchAllEpisodes(animeID int) ([]models.Episode, error) {
	var episodes []models.Episode

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("m", "release")
		params.Set("id", strconv.Itoa(animeID))
		params.Set("sort", "asc")
		params.Set("page", strconv.Itoa(page))
		params.Set("l", strconv.Itoa(pageSize))

		body, err := c.get(params)
		if err != nil {
			return nil, err
		}

		var envelope releaseEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, errors.Wrapf(ErrNetwork, "malformed release response: %v", err)
		}

		for _, entry := range envelope.Data {
			ep, err := episodeFromEntry(entry)
			if err != nil {
				return nil, err
			}
			episodes = append(episodes, ep)
		}

		lastPage := envelope.LastPage
		if lastPage == 0 {
			lastPage = page
		}
		if page >= lastPage {
			break
		}
	}

	util.Debugf("fetched %d episodes for anime %d", len(episodes), animeID)
	return episodes, nil
}

func episodeFromEntry(entry map[string]any) (models.Episode, error) {
	num, err := episodeNumber(entry["episode"])
	if err != nil {
		return models.Episode{}, errors.Wrapf(ErrNetwork, "release entry missing episode number: %v", entry)
	}
	session, ok := entry["session"].(string)
	if !ok {
		return models.Episode{}, errors.Wrapf(ErrNetwork, "release entry missing session: %v", entry)
	}
	return models.Episode{
		Number:   num,
		Session:  session,
		Snapshot: entry,
	}, nil
}

// episodeNumber coerces the episode field, which the API serves as a JSON
// number on most shows but as a digit string on some older listings.
func episodeNumber(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, errors.Errorf("unexpected episode number type %T", v)
	}
}

func (c *Client) get(params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Referer", c.SiteURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrNetwork, "server returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "read response: %v", err)
	}
	return body, nil
}
