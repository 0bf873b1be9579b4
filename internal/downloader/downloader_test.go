package downloader

import (
	"path/filepath"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jujutsu Kaisen", "Jujutsu Kaisen"},
		{"Re:ZERO", "Re_ZERO"},
		{`Fate/stay night`, "Fate_stay night"},
		{`a\b/c*d?e:f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  spaced out  ", "spaced out"},
		{"", "Anime"},
		{"   ", "Anime"},
		{`\/*?:"<>|`, "_________"},
		{"?", "_"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SanitizeTitle(tc.in); got != tc.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// The flag set must keep the subtitle handling: English subs in srt,
// embedded into the merged mp4, alongside best-quality selection.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.format != "bestvideo+bestaudio/best" {
		t.Errorf("format = %q", o.format)
	}
	if o.mergeFormat != "mp4" {
		t.Errorf("mergeFormat = %q", o.mergeFormat)
	}
	if !o.writeSubs || !o.embedSubs {
		t.Errorf("subtitles disabled: writeSubs=%v embedSubs=%v", o.writeSubs, o.embedSubs)
	}
	if o.subLangs != "en,eng" {
		t.Errorf("subLangs = %q", o.subLangs)
	}
	if o.subFormat != "srt/best" {
		t.Errorf("subFormat = %q", o.subFormat)
	}
}

func TestNewEngineUsesDefaultOptions(t *testing.T) {
	if NewEngine().opts != defaultOptions() {
		t.Error("NewEngine does not carry the default flag set")
	}
}

func TestEpisodeOutputPath(t *testing.T) {
	got := EpisodeOutputPath("/downloads", "Steins;Gate", 7)
	want := filepath.Join("/downloads", "Steins;Gate", "Episode_007.%(ext)s")
	if got != want {
		t.Errorf("EpisodeOutputPath = %q, want %q", got, want)
	}

	got = EpisodeOutputPath("/downloads", `Fate/Zero`, 12)
	want = filepath.Join("/downloads", "Fate_Zero", "Episode_012.%(ext)s")
	if got != want {
		t.Errorf("EpisodeOutputPath = %q, want %q", got, want)
	}
}
