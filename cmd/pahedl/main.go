package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/gopahe/pahedl/internal/api"
	"github.com/gopahe/pahedl/internal/appflow"
	"github.com/gopahe/pahedl/internal/browser"
	"github.com/gopahe/pahedl/internal/downloader"
	"github.com/gopahe/pahedl/internal/history"
	"github.com/gopahe/pahedl/internal/resolver"
	"github.com/gopahe/pahedl/internal/util"
	"github.com/gopahe/pahedl/internal/version"
)

func main() {
	// Wrapped so deferred cleanup (browser, history) runs before exit.
	os.Exit(run())
}

func run() int {
	versionFlag := flag.Bool("version", false, "show version information")
	debugFlag := flag.Bool("debug", false, "enable debug mode")
	helpFlag := flag.Bool("help", false, "show help message")
	altHelpFlag := flag.Bool("h", false, "show help message")
	dirFlag := flag.String("dir", "", "download root directory")
	browserFlag := flag.String("browser", "", "path to the Brave executable")
	headlessFlag := flag.Bool("headless", true, "run the browser headless")
	historyFlag := flag.Bool("history", false, "show recent downloads and exit")

	flag.Parse()

	if *versionFlag || version.HasVersionArg() {
		version.ShowVersion()
		return 0
	}
	if *helpFlag || *altHelpFlag {
		util.Helper()
		return 0
	}

	util.SetDebugMode(*debugFlag)
	util.InitLogger()

	if *historyFlag {
		return showHistory()
	}

	execPath := *browserFlag
	if execPath == "" {
		execPath = browser.DetectExecutable()
	}
	if execPath == "" {
		execPath = promptBravePath()
		if execPath == "" {
			util.Error("Brave path not provided. Exiting.")
			return 1
		}
	} else {
		util.Infof("Brave detected: %s", execPath)
	}

	root := *dirFlag
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			util.Error(util.ErrorHandler(err))
			return 1
		}
		root = filepath.Join(home, "Videos", "AnimePahe Downloads")
	}

	// One browser for the whole run, released on every exit path. SIGINT
	// cancels the run context instead of killing the process, so the defers
	// below still fire.
	session := browser.NewSession(execPath, *headlessFlag)
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var recorder appflow.Recorder
	if store := openHistory(); store != nil {
		defer store.Close()
		recorder = store
	}

	runner := &appflow.Runner{
		Catalog:     api.NewClient(),
		Resolver:    resolver.New(session),
		Engine:      downloader.NewEngine(),
		History:     recorder,
		Root:        root,
		Input:       util.GetUserInput,
		Out:         os.Stdout,
		Interactive: true,
	}

	fmt.Println("Tip: Add (Dub) or (Sub) to your search to filter results.")

	if err := runner.Run(ctx); err != nil {
		// promptui owns the terminal during prompts, so Ctrl+C surfaces as
		// ErrInterrupt from the prompt rather than as a SIGINT.
		if errors.Is(err, context.Canceled) || errors.Is(err, promptui.ErrInterrupt) {
			fmt.Println("\nInterrupted by user. Exiting.")
			return 0
		}
		util.Error(util.ErrorHandler(err))
		return 1
	}
	return 0
}

// showHistory prints the most recent downloads, newest first.
func showHistory() int {
	store := openHistory()
	if store == nil {
		fmt.Println("No download history.")
		return 0
	}
	defer store.Close()

	entries, err := store.Recent(20)
	if err != nil {
		util.Error(util.ErrorHandler(err))
		return 1
	}
	if len(entries) == 0 {
		fmt.Println("No download history.")
		return 0
	}
	for _, e := range entries {
		fmt.Printf("%s  %s - Episode %03d\n",
			e.DownloadedAt.Local().Format("2006-01-02 15:04"), e.AnimeTitle, e.Episode)
	}
	return 0
}

// openHistory is best-effort; nil just disables history.
func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		util.Debugf("history disabled: %v", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		util.Debugf("history disabled: %v", err)
		return nil
	}
	return store
}

// promptBravePath asks for a manual path when auto-detection fails.
func promptBravePath() string {
	fmt.Println("Brave browser not detected automatically.")
	fmt.Println("Common locations:")
	fmt.Println(`  Windows: C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`)
	fmt.Println("  macOS:   /Applications/Brave Browser.app/Contents/MacOS/Brave Browser")
	fmt.Println("  Linux:   /usr/bin/brave-browser")

	path, err := util.GetUserInput("Brave executable path (leave blank to abort)")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(path)
}
