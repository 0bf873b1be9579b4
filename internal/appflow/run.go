// Package appflow sequences one run of the downloader: search prompt, result
// selection, episode listing, range input, download loop, summary. Every
// state reads one input and moves forward; invalid input ends the run with a
// message instead of re-prompting.
package appflow

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/errors"

	"github.com/gopahe/pahedl/internal/api"
	"github.com/gopahe/pahedl/internal/downloader"
	"github.com/gopahe/pahedl/internal/models"
	"github.com/gopahe/pahedl/internal/query"
	"github.com/gopahe/pahedl/internal/selector"
	"github.com/gopahe/pahedl/internal/util"
)

// Catalog is the remote search and listing surface.
type Catalog interface {
	Search(title string) ([]models.SearchResult, error)
	FetchAllEpisodes(animeID int) ([]models.Episode, error)
}

// LinkResolver resolves one episode's session tokens to a media URL.
type LinkResolver interface {
	Resolve(ctx context.Context, animeSession, episodeSession string) (string, error)
}

// Engine downloads a resolved media URL to an output path.
type Engine interface {
	Download(ctx context.Context, url, outPath string) error
}

// Recorder keeps a record of completed downloads. Optional.
type Recorder interface {
	Record(animeTitle string, episode int) error
}

// Runner wires the collaborators for one run.
type Runner struct {
	Catalog  Catalog
	Resolver LinkResolver
	Engine   Engine
	History  Recorder

	// Root is the download root; episodes land under Root/<sanitized title>.
	Root string

	// Input reads one line for a prompt label.
	Input func(label string) (string, error)

	// Out receives all user-facing output.
	Out io.Writer

	// Interactive enables spinners around the network waits.
	Interactive bool
}

// Run executes the whole flow. The returned error is nil both on success and
// on the early-return paths (empty query, invalid selection); it is non-nil
// only for failures worth rendering as errors.
func (r *Runner) Run(ctx context.Context) error {
	raw, err := r.Input("Search anime")
	if err != nil {
		return errors.Wrap(err, "read search query")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		fmt.Fprintln(r.Out, "No query provided.")
		return nil
	}

	title, pref := query.Parse(raw)
	if pref != models.LangNone {
		fmt.Fprintf(r.Out, "Language preference: %s\n", strings.ToUpper(pref.String()))
	}

	var results []models.SearchResult
	var searchErr error
	r.busy("Searching catalog...", func() {
		results, searchErr = r.Catalog.Search(title)
	})
	if searchErr != nil {
		return errors.Wrap(searchErr, "search failed")
	}
	if len(results) == 0 {
		fmt.Fprintln(r.Out, "No results found.")
		return nil
	}

	results = api.FilterByLanguage(results, pref)

	fmt.Fprintf(r.Out, "\nSearch results (%d found):\n", len(results))
	for i, res := range results {
		marker := ""
		if res.IsDub() {
			marker = " [DUB]"
		}
		fmt.Fprintf(r.Out, "  [%d] %s%s\n", i+1, res.Title, marker)
	}

	sel, err := r.Input("Select anime by number")
	if err != nil {
		return errors.Wrap(err, "read selection")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sel))
	if err != nil || n < 1 || n > len(results) {
		fmt.Fprintln(r.Out, "Invalid selection.")
		return nil
	}
	chosen := results[n-1]
	fmt.Fprintf(r.Out, "\nSelected: %s\n", chosen.Title)

	var episodes []models.Episode
	var listErr error
	r.busy("Fetching episodes...", func() {
		episodes, listErr = r.Catalog.FetchAllEpisodes(chosen.ID)
	})
	if listErr != nil {
		return errors.Wrap(listErr, "failed to fetch episodes")
	}
	if len(episodes) == 0 {
		fmt.Fprintln(r.Out, "No episodes found.")
		return nil
	}

	minEp, maxEp := episodeBounds(episodes)
	fmt.Fprintf(r.Out, "Episodes available: %d - %d (Total: %d)\n", minEp, maxEp, len(episodes))

	expr, err := r.Input(`Episodes to download (e.g. "1-3,5" or "all")`)
	if err != nil {
		return errors.Wrap(err, "read episode selection")
	}

	var selected []int
	if strings.EqualFold(strings.TrimSpace(expr), "all") {
		for _, ep := range episodes {
			selected = append(selected, ep.Number)
		}
	} else {
		selected = selector.Parse(expr)
	}
	if len(selected) == 0 {
		fmt.Fprintln(r.Out, "No episodes selected.")
		return nil
	}

	outDir := filepath.Join(r.Root, downloader.SanitizeTitle(chosen.Title))
	fmt.Fprintf(r.Out, "\nWill download %d episode(s) to %s\n", len(selected), outDir)

	succeeded, failed := r.downloadLoop(ctx, chosen, episodes, selected)

	fmt.Fprintf(r.Out, "\nDone. Successful: %d, Failed: %d\n", succeeded, failed)
	fmt.Fprintf(r.Out, "Location: %s\n", outDir)
	return nil
}

// downloadLoop processes the selection strictly in order, one episode at a
// time. A failing episode is counted and skipped, never retried; only run
// cancellation stops the loop early.
func (r *Runner) downloadLoop(ctx context.Context, chosen models.SearchResult, episodes []models.Episode, selected []int) (succeeded, failed int) {
	for i, num := range selected {
		if ctx.Err() != nil {
			fmt.Fprintln(r.Out, "\nInterrupted.")
			return succeeded, failed
		}

		prefix := fmt.Sprintf("[%d/%d] Episode %d", i+1, len(selected), num)

		ep, ok := findEpisode(episodes, num)
		if !ok {
			fmt.Fprintf(r.Out, "%s: not listed, skipping.\n", prefix)
			failed++
			continue
		}

		fmt.Fprintf(r.Out, "%s: resolving link...\n", prefix)
		mediaURL, err := r.Resolver.Resolve(ctx, chosen.Session, ep.Session)
		if err != nil {
			fmt.Fprintf(r.Out, "%s: failed to resolve link: %v\n", prefix, err)
			failed++
			continue
		}

		outPath := downloader.EpisodeOutputPath(r.Root, chosen.Title, num)
		fmt.Fprintf(r.Out, "%s: downloading...\n", prefix)
		if err := r.Engine.Download(ctx, mediaURL, outPath); err != nil {
			fmt.Fprintf(r.Out, "%s: download failed: %v\n", prefix, err)
			failed++
			continue
		}

		succeeded++
		if r.History != nil {
			if err := r.History.Record(chosen.Title, num); err != nil {
				util.Debugf("history record failed: %v", err)
			}
		}
	}
	return succeeded, failed
}

func (r *Runner) busy(title string, fn func()) {
	if !r.Interactive {
		fn()
		return
	}
	_ = spinner.New().
		Title(title).
		Type(spinner.Dots).
		Action(fn).
		Run()
}

// findEpisode does a linear lookup by number. Lists are bounded by a season's
// episode count, so no index is worth building.
func findEpisode(episodes []models.Episode, num int) (models.Episode, bool) {
	for _, ep := range episodes {
		if ep.Number == num {
			return ep, true
		}
	}
	return models.Episode{}, false
}

func episodeBounds(episodes []models.Episode) (minEp, maxEp int) {
	minEp, maxEp = episodes[0].Number, episodes[0].Number
	for _, ep := range episodes[1:] {
		if ep.Number < minEp {
			minEp = ep.Number
		}
		if ep.Number > maxEp {
			maxEp = ep.Number
		}
	}
	return minEp, maxEp
}
