package feed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// QueryMarker as the third field of a feed line turns off automatic download.
const QueryMarker = "?"

// LoadList reads the feed list file.
func LoadList(path string) ([]*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed list: %w", err)
	}
	defer f.Close()

	configs, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list %s: %w", path, err)
	}

	return configs, nil
}

// ParseList parses lines of the form "<url> <dir> [?]". Lines starting with
// '#' and blank lines are ignored. A line without a directory is skipped.
func ParseList(r io.Reader) ([]*Config, error) {
	var configs []*Config

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			logrus.WithFields(logrus.Fields{
				"line": lineNo,
				"url":  parts[0],
			}).Warn("Feed line has no directory name, skipping")
			continue
		}

		config := &Config{
			URL:          parts[0],
			DirName:      parts[1],
			AutoDownload: true,
		}

		if len(parts) > 2 {
			switch mode := parts[2]; mode {
			case QueryMarker:
				config.AutoDownload = false
			default:
				logrus.WithFields(logrus.Fields{
					"line": lineNo,
					"url":  config.URL,
					"mode": mode,
				}).Warn("Unknown mode given for feed, downloading automatically")
			}
		}

		configs = append(configs, config)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return configs, nil
}
