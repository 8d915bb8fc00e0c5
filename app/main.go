package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/getpods/app/cfg"
	"github.com/lysyi3m/getpods/app/download"
	"github.com/lysyi3m/getpods/app/feed"
	"github.com/lysyi3m/getpods/app/history"
	"github.com/lysyi3m/getpods/app/hook"
	"github.com/lysyi3m/getpods/app/prompt"
	"github.com/lysyi3m/getpods/app/seen"
	"github.com/lysyi3m/getpods/app/tasks"
	"github.com/sirupsen/logrus"
)

const feedTimeout = 60 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logrus.SetOutput(stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	appConfig, err := cfg.Load(args, stdout)
	if err != nil {
		var usageErr *cfg.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "%v\n\n%s", usageErr, usageErr.Usage)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	if appConfig == nil {
		// Help was shown
		return 0
	}

	if appConfig.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.WithFields(logrus.Fields{
		"version": appConfig.Version,
		"action":  appConfig.Action.String(),
		"config":  appConfig.ConfigPath,
	}).Debug("Starting getpods")

	settings, err := cfg.LoadSettings(appConfig.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	feeds, err := feed.LoadList(settings.UrlsPath())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logrus.WithField("count", len(feeds)).Debug("Feed list loaded")

	store := seen.NewStore(settings.CachePath())
	store.Load()

	deps := tasks.Deps{
		Feeds:      feeds,
		Source:     feed.NewHTTPSource(&http.Client{Timeout: feedTimeout}, feed.NewParser(), settings.UserAgent),
		Store:      store,
		Downloader: download.NewHTTPDownloader(&http.Client{}, settings.UserAgent),
		Confirmer:  prompt.NewAsker(stdin, stdout, settings.MaxSummaryLines),
		Root:       settings.PodcastsDir,
		Out:        stdout,
	}

	if f, ok := stdout.(*os.File); ok {
		deps.Progress = download.TerminalProgress(f)
	}

	if path := settings.HistoryPath(); path != "" {
		journal, err := history.Open(path)
		if err != nil {
			logrus.WithError(err).Warn("History journal unavailable, continuing without it")
		} else {
			defer journal.Close()
			deps.Journal = journal
		}
	}

	summary, err := tasks.NewRunner(deps).Run(ctx, appConfig.Action)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if summary.Downloaded > 0 && settings.PostDownloadHook != "" {
		if err := hook.Run(ctx, settings.PostDownloadHook, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}

	return 0
}
