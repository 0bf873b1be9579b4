// Package downloader hands resolved media URLs to yt-dlp and owns the output
// naming rules.
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/pkg/errors"

	"github.com/gopahe/pahedl/internal/util"
)

// illegal path-segment characters, each replaced with an underscore.
const illegalPathChars = `\/*?:"<>|`

// SanitizeTitle makes an anime title safe to use as a directory name.
// A title that sanitizes to nothing becomes "Anime".
func SanitizeTitle(title string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalPathChars, r) {
			return '_'
		}
		return r
	}, title)

	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		return "Anime"
	}
	return sanitized
}

// EpisodeOutputPath builds the per-episode output template. The extension is
// left to yt-dlp via its %(ext)s placeholder.
func EpisodeOutputPath(root, title string, num int) string {
	return filepath.Join(root, SanitizeTitle(title), fmt.Sprintf("Episode_%03d.%%(ext)s", num))
}

// options is the yt-dlp flag set for one download: highest available
// quality merged into mp4, with English subtitles embedded when present.
type options struct {
	format      string
	mergeFormat string
	subLangs    string
	subFormat   string
	writeSubs   bool
	embedSubs   bool
}

func defaultOptions() options {
	return options{
		format:      "bestvideo+bestaudio/best",
		mergeFormat: "mp4",
		subLangs:    "en,eng",
		subFormat:   "srt/best",
		writeSubs:   true,
		embedSubs:   true,
	}
}

func (o options) apply(dl *ytdlp.Command, outPath string) *ytdlp.Command {
	dl = dl.
		Format(o.format).
		MergeOutputFormat(o.mergeFormat).
		NoPlaylist().
		Output(outPath)
	if o.writeSubs {
		dl = dl.WriteSubs().SubLangs(o.subLangs).SubFormat(o.subFormat)
	}
	if o.embedSubs {
		dl = dl.EmbedSubs()
	}
	return dl
}

// Engine wraps go-ytdlp. The yt-dlp binary is installed once per process on
// first use.
type Engine struct {
	installOnce sync.Once
	opts        options
}

// NewEngine returns a download engine.
func NewEngine() *Engine {
	return &Engine{opts: defaultOptions()}
}

// Download fetches url into outPath, creating parent directories on demand.
func (e *Engine) Download(ctx context.Context, url, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	e.installOnce.Do(func() {
		ytdlp.MustInstall(ctx, nil)
	})

	dl := e.opts.apply(ytdlp.New(), outPath).
		ProgressFunc(500*time.Millisecond, func(prog ytdlp.ProgressUpdate) {
			fmt.Printf("\r  downloading: %s (eta %s)   ", prog.PercentString(), prog.ETA())
		})

	util.Debugf("yt-dlp: %s -> %s", url, outPath)

	if _, err := dl.Run(ctx, url); err != nil {
		return errors.Wrap(err, "yt-dlp download failed")
	}
	fmt.Println()
	return nil
}
