package geo

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/fetch"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
)

var accessionPattern = regexp.MustCompile(`^(GSE|GSM|GPL|GDS)([0-9]+)$`)

// Provider downloads a series family archive into a directory under the
// provider's default file name.
type Provider interface {
	Download(ctx context.Context, accession, destDir string) (string, error)
}

// Client downloads SOFT family archives from the GEO mirror.
type Client struct {
	baseURL    string
	downloader *fetch.Downloader
}

// NewClient returns a Client for baseURL. An empty baseURL uses the public mirror.
func NewClient(baseURL string, downloader *fetch.Downloader) *Client {
	if baseURL == "" {
		baseURL = defaults.GEOBaseURL
	}
	if downloader == nil {
		downloader = fetch.NewDownloader(fetch.WithTimeout(defaults.GEOHTTPTimeout))
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), downloader: downloader}
}

// ValidateAccession checks that id looks like a GEO accession.
func ValidateAccession(id string) error {
	if !accessionPattern.MatchString(id) {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid GEO accession %q, expected GSE/GSM/GPL/GDS followed by digits", id))
	}
	return nil
}

// Stub returns the range directory of an accession: the numeric part with
// its last three digits replaced by "nnn" (GSE40279 -> GSE40nnn, GSE12 -> GSEnnn).
func Stub(id string) (string, error) {
	m := accessionPattern.FindStringSubmatch(id)
	if m == nil {
		return "", ValidateAccession(id)
	}
	prefix, digits := m[1], m[2]
	if len(digits) <= 3 {
		return prefix + "nnn", nil
	}
	return prefix + digits[:len(digits)-3] + "nnn", nil
}

// SeriesURL returns the family SOFT archive URL of a series.
func (c *Client) SeriesURL(id string) (string, error) {
	if !strings.HasPrefix(id, "GSE") {
		return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("%q is not a series accession", id))
	}
	stub, err := Stub(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/series/%s/%s/soft/%s", c.baseURL, stub, id, paths.ProviderFileName(id)), nil
}

// Download fetches the family archive of id into destDir and returns its path.
func (c *Client) Download(ctx context.Context, id, destDir string) (string, error) {
	url, err := c.SeriesURL(id)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, paths.ProviderFileName(id))
	if _, err := c.downloader.Download(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}
