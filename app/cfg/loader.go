package cfg

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/getpods/app/tasks"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// rawCfg is the command line: the action token and nothing else.
type rawCfg struct {
	Args struct {
		Action string `positional-arg-name:"action" description:"One of all (default), auto, newest, catchup"`
	} `positional-args:"yes"`
}

// envCfg is only ever filled from the environment.
type envCfg struct {
	Config string `long:"config" env:"GETPODS_CONFIG" default:"~/.getpods.yml"`
	Debug  bool   `long:"debug" env:"GETPODS_DEBUG"`
}

// Load parses the command line and the environment. It writes help to out
// and returns nil, nil when help was requested, and returns a *UsageError for
// anything that is not a valid invocation.
func Load(args []string, out io.Writer) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "getpods"
	parser.Usage = "[action]"
	parser.LongDescription = actionsDescription()

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprint(out, usage(parser))
				return nil, nil
			}
		}
		return nil, &UsageError{Err: fmt.Errorf("failed to parse command line: %w", err), Usage: usage(parser)}
	}

	if len(rest) > 0 {
		return nil, &UsageError{Err: fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")), Usage: usage(parser)}
	}

	action, err := tasks.ParseAction(cmp.Or(raw.Args.Action, tasks.ActionAll.String()))
	if err != nil {
		return nil, &UsageError{Err: err, Usage: usage(parser)}
	}

	var env envCfg
	if _, err := flags.NewParser(&env, flags.None).ParseArgs(nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return &Cfg{
		ConfigPath: ExpandHome(env.Config),
		Action:     action,
		Debug:      env.Debug,
		Version:    GetVersion(),
	}, nil
}

// LoadSettings reads the settings file and checks that the podcasts directory
// and its feed list exist.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &ConfigError{
			Problem: fmt.Sprintf("You do not yet have a settings file at %s.", path),
			Remedy: "Create it with at least the directory holding your podcasts, for example:\n\n" +
				"    podcasts_dir: ~/podcasts\n",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, &ConfigError{
			Problem: fmt.Sprintf("Could not parse settings file %s: %v", path, err),
		}
	}

	if strings.TrimSpace(settings.PodcastsDir) == "" {
		return nil, &ConfigError{
			Problem: fmt.Sprintf("podcasts_dir is not set in %s.", path),
			Remedy:  "Add a line like:\n\n    podcasts_dir: ~/podcasts\n",
		}
	}

	settings.PodcastsDir = ExpandHome(strings.TrimSpace(settings.PodcastsDir))
	settings.HistoryDB = ExpandHome(strings.TrimSpace(settings.HistoryDB))
	if settings.MaxSummaryLines <= 0 {
		settings.MaxSummaryLines = DefaultMaxSummaryLines
	}
	settings.UserAgent = cmp.Or(strings.TrimSpace(settings.UserAgent), "getpods/"+GetVersion())

	if info, err := os.Stat(settings.PodcastsDir); err != nil || !info.IsDir() {
		return nil, &ConfigError{
			Problem: fmt.Sprintf("Could not find podcasts_dir=%s", settings.PodcastsDir),
			Remedy:  "Create the directory or point podcasts_dir at an existing one.",
		}
	}

	if _, err := os.Stat(settings.UrlsPath()); err != nil {
		return nil, &ConfigError{
			Problem: fmt.Sprintf("There should be a file [%s] with a line for each podcast feed formatted like:\n\n    url directory [?]", settings.UrlsPath()),
			Remedy: "i.e. the URL of the feed and the name of the local directory where to put the downloaded episode files.\n\n" +
				"All new episodes will be automatically downloaded except for feeds that have the optional " +
				"question mark (?) appended to the line. For these you will be asked about downloading each new episode.",
		}
	}

	return &settings, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func actionsDescription() string {
	var b strings.Builder

	b.WriteString("Where action is one of \"" + strings.Join(tasks.ActionNames(), "\", \"") + "\".\n")
	b.WriteString("All actions start by updating the feeds and detecting new episodes.\n\n")
	for i, name := range tasks.ActionNames() {
		fmt.Fprintf(&b, "  %-8s - %s\n", name, tasks.ActionHelp[i])
	}
	b.WriteString("\nEnvironment:\n")
	fmt.Fprintf(&b, "  GETPODS_CONFIG - settings file (default %s)\n", DefaultConfigPath)
	b.WriteString("  GETPODS_DEBUG  - set to true for debug logging\n")

	return b.String()
}

func usage(parser *flags.Parser) string {
	var buf bytes.Buffer
	parser.WriteHelp(&buf)
	return buf.String()
}
