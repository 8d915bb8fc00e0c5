package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

const maxRedirects = 5

// ProgressFunc receives the total and downloaded byte counts. total is -1
// when the server did not announce a length.
type ProgressFunc func(total, downloaded int64)

// Downloader transfers url into dest.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string, progress ProgressFunc) error
}

type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

type HTTPDownloader struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPDownloader copies the client and caps redirects.
func NewHTTPDownloader(httpClient *http.Client, userAgent string) *HTTPDownloader {
	client := *httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	return &HTTPDownloader{
		httpClient: &client,
		userAgent:  userAgent,
	}
}

// Fetch streams the body into dest+".part" and renames it to dest once the
// transfer is complete. A failed transfer leaves nothing behind.
func (d *HTTPDownloader) Fetch(ctx context.Context, url, dest string, progress ProgressFunc) (err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch enclosure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	partial := dest + ".part"
	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", partial, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(partial)
		}
	}()

	reader := io.Reader(resp.Body)
	if progress != nil {
		reader = &progressReader{r: resp.Body, total: resp.ContentLength, report: progress}
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		return fmt.Errorf("transfer interrupted after %d bytes: %w", written, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fmt.Errorf("transfer incomplete: got %d of %d bytes", written, resp.ContentLength)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", partial, err)
	}
	if err = os.Rename(partial, dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"url":   url,
		"dest":  dest,
		"bytes": written,
	}).Debug("Enclosure downloaded")

	return nil
}

type progressReader struct {
	r          io.Reader
	total      int64
	downloaded int64
	report     ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.downloaded += int64(n)
		p.report(p.total, p.downloaded)
	}
	return n, err
}
