package cfg

import (
	"path/filepath"

	"github.com/lysyi3m/getpods/app/tasks"
)

const (
	DefaultConfigPath      = "~/.getpods.yml"
	DefaultMaxSummaryLines = 20

	urlsFilename  = "urls"
	cacheFilename = "cache"
)

// Cfg is what the command line selects.
type Cfg struct {
	ConfigPath string
	Action     tasks.Action
	Debug      bool
	Version    string
}

// Settings come from the YAML settings file.
type Settings struct {
	PodcastsDir      string `yaml:"podcasts_dir"`
	MaxSummaryLines  int    `yaml:"max_summary_lines"`
	PostDownloadHook string `yaml:"post_download_hook"`
	HistoryDB        string `yaml:"history_db"`
	UserAgent        string `yaml:"user_agent"`
}

// UrlsPath is the feed list inside the podcasts directory.
func (s *Settings) UrlsPath() string {
	return filepath.Join(s.PodcastsDir, urlsFilename)
}

// CachePath is the seen store inside the podcasts directory.
func (s *Settings) CachePath() string {
	return filepath.Join(s.PodcastsDir, cacheFilename)
}

// HistoryPath returns the journal database path, or "" when the journal is
// disabled. Relative paths are taken from the podcasts directory.
func (s *Settings) HistoryPath() string {
	if s.HistoryDB == "" {
		return ""
	}
	if filepath.IsAbs(s.HistoryDB) {
		return s.HistoryDB
	}
	return filepath.Join(s.PodcastsDir, s.HistoryDB)
}

// ConfigError is a fatal setup problem. Remedy tells the user how to fix it.
type ConfigError struct {
	Problem string
	Remedy  string
}

func (e *ConfigError) Error() string {
	if e.Remedy == "" {
		return e.Problem
	}
	return e.Problem + "\n\n" + e.Remedy
}

// UsageError is an invalid command line. Usage holds the help text.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
