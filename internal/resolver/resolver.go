// Package resolver turns a pair of session tokens into a downloadable media
// URL. Resolution is two-staged: the watch page is loaded in the browser to
// find the kwik player iframe, then the iframe URL is fetched directly over
// HTTP to find (or fall back to) the final link.
package resolver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/gopahe/pahedl/internal/api"
	"github.com/gopahe/pahedl/internal/browser"
	"github.com/gopahe/pahedl/internal/util"
)

const (
	// embedWait bounds the browser-side wait for the player iframe.
	embedWait = 20 * time.Second

	embedSelector = `iframe[src*="kwik"]`
)

var (
	// ErrTimeout reports the player iframe not appearing within the bound.
	ErrTimeout = errors.New("timed out waiting for player iframe")

	// ErrNotFound reports an expected element or attribute missing from the
	// page.
	ErrNotFound = errors.New("player element not found")
)

// Resolver drives the browser session and the direct HTTP fetches. The
// scraping heuristics stay behind this type so the orchestrator never sees a
// selector.
type Resolver struct {
	Session *browser.Session
	SiteURL string
	HTTP    *http.Client
}

// New returns a resolver bound to the given browser session.
func New(session *browser.Session) *Resolver {
	return &Resolver{
		Session: session,
		SiteURL: api.DefaultSiteURL,
		HTTP:    util.GetSharedClient(),
	}
}

// WatchURL builds the watch-page URL for an episode.
func (r *Resolver) WatchURL(animeSession, episodeSession string) string {
	return r.SiteURL + "/play/" + animeSession + "/" + episodeSession
}

// Resolve runs both stages and returns the final media URL. A failure of
// either stage fails the episode; the caller decides whether to continue.
func (r *Resolver) Resolve(ctx context.Context, animeSession, episodeSession string) (string, error) {
	watchURL := r.WatchURL(animeSession, episodeSession)

	embedURL, err := r.extractEmbedURL(ctx, watchURL)
	if err != nil {
		return "", err
	}
	util.Debugf("embed url for %s: %s", watchURL, embedURL)

	return r.ResolveDirectLink(embedURL, watchURL)
}

// extractEmbedURL loads the watch page in the browser and waits for the kwik
// iframe to be injected by the page scripts.
func (r *Resolver) extractEmbedURL(ctx context.Context, watchURL string) (string, error) {
	tabCtx, err := r.Session.Context()
	if err != nil {
		return "", err
	}

	waitCtx, cancel := context.WithTimeout(tabCtx, embedWait)
	defer cancel()

	// Propagate interruption of the run into the browser wait.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var src string
	var ok bool
	err = chromedp.Run(waitCtx,
		chromedp.Navigate(watchURL),
		chromedp.WaitReady(embedSelector, chromedp.ByQuery),
		chromedp.AttributeValue(embedSelector, "src", &src, &ok, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return "", errors.Wrapf(ErrTimeout, "on %s", watchURL)
		}
		return "", errors.Wrap(err, "load watch page")
	}
	if !ok || src == "" {
		return "", errors.Wrap(ErrNotFound, "iframe has no src attribute")
	}

	return src, nil
}

// ResolveDirectLink fetches the embed page directly, with the watch page as
// Referer since kwik gates on it, and looks for an explicit download control.
// When none is present the final post-redirect URL is returned instead; some
// hosts skip the button and redirect straight to the media. Keep that
// fallback chain intact.
func (r *Resolver) ResolveDirectLink(embedURL, referer string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, embedURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build embed request")
	}
	req.Header.Set("Referer", referer)
	req.Header.Set("User-Agent", api.UserAgent)

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch embed page")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("embed page returned %s", resp.Status)
	}

	finalURL := resp.Request.URL.String()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// Unparseable body, the redirect target is still worth trying.
		util.Debugf("embed page parse failed, using final url: %v", err)
		return finalURL, nil
	}

	if href := findDownloadHref(doc); href != "" {
		return href, nil
	}
	return finalURL, nil
}

func findDownloadHref(doc *goquery.Document) string {
	for _, sel := range []string{"#download", "a#download"} {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return href
		}
	}
	return ""
}
