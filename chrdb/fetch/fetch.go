// Package fetch downloads the UCD and WHATWG source files into a local cache.
//
// Every source is fetched at most once: a file already present in the cache
// directory is trusted as-is. There is no checksum or partial-file detection
// and nothing is retried; the first failure aborts the whole acquisition.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/chrdb/chrdb"
	"github.com/ZanzyTHEbar/chrdb/chrdb/common"

	"github.com/rs/zerolog"
)

// Source is one remote file and the name it is cached under.
type Source struct {
	Name string
	URL  string
}

// DefaultSources returns the four build inputs in the order the pipeline
// consumes them.
func DefaultSources(ucdBaseURL, entitiesBaseURL string) []Source {
	return []Source{
		{Name: internal.BlocksFileName, URL: joinURL(ucdBaseURL, internal.BlocksFileName)},
		{Name: internal.DerivedAgeFileName, URL: joinURL(ucdBaseURL, internal.DerivedAgeFileName)},
		{Name: internal.UnicodeDataFileName, URL: joinURL(ucdBaseURL, internal.UnicodeDataFileName)},
		{Name: internal.HTMLEntitiesFileName, URL: joinURL(entitiesBaseURL, internal.HTMLEntitiesFileName)},
	}
}

func joinURL(base, name string) string {
	joined, err := url.JoinPath(base, name)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + name
	}
	return joined
}

// Fetcher downloads missing sources.
type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// NewFetcher returns a Fetcher using client, or http.DefaultClient when nil.
func NewFetcher(client *http.Client, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, logger: logger}
}

// Path returns the cache location of the named source.
func Path(cacheDir, name string) string {
	return filepath.Join(cacheDir, name)
}

// Ensure makes sure every source exists in cacheDir, downloading the missing
// ones in order. It returns the number of files downloaded.
func (f *Fetcher) Ensure(ctx context.Context, cacheDir string, sources []Source) (int, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return 0, &common.StageError{
			Stage: common.StageFetch,
			File:  cacheDir,
			Err:   fmt.Errorf("%w: could not create cache directory: %v", common.ErrSourceUnavailable, err),
		}
	}

	downloaded := 0
	for _, src := range sources {
		path := Path(cacheDir, src.Name)

		_, err := os.Stat(path)
		if err == nil {
			f.logger.Debug().Str("file", src.Name).Str("path", path).Msg("source already cached")
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return downloaded, f.fail(src, fmt.Errorf("failed to stat %s: %v", path, err))
		}

		f.logger.Info().Str("file", src.Name).Str("url", src.URL).Msg("downloading source")
		n, err := f.download(ctx, src, path)
		if err != nil {
			return downloaded, f.fail(src, err)
		}
		f.logger.Info().Str("file", src.Name).Int64("bytes", n).Msg("source cached")
		downloaded++
	}
	return downloaded, nil
}

// download performs one GET and writes the body verbatim to path.
func (f *Fetcher) download(ctx context.Context, src Source, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid url %q: %v", src.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("file download failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("file download failed: %s returned %s", src.URL, resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("new file could not be created at %s: %v", path, err)
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("downloaded file data could not be written to %s: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %v", path, err)
	}
	return n, nil
}

func (f *Fetcher) fail(src Source, err error) error {
	return &common.StageError{
		Stage: common.StageFetch,
		File:  src.Name,
		Err:   fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err),
	}
}
