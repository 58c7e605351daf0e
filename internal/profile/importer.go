package profile

import (
	"context"

	"jobassist/internal/errors"
	"jobassist/internal/scrape"
	"jobassist/internal/types"
)

// PageFetcher downloads a page; *scrape.Fetcher satisfies it
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scrape.Page, error)
}

// Importer fetches a public profile page and maps its embedded data
type Importer struct {
	fetcher     PageFetcher
	mapper      Mapper
	defaultPath string
	logger      *errors.Logger
}

// NewImporter creates an importer. defaultPath is the gjson path of the
// profile object inside the page's embedded JSON.
func NewImporter(fetcher PageFetcher, defaultPath string, logger *errors.Logger) *Importer {
	return &Importer{fetcher: fetcher, defaultPath: defaultPath, logger: logger}
}

// Import fetches rawURL and maps the profile found at path, or at the
// default path when path is empty.
func (im *Importer) Import(ctx context.Context, rawURL, path string) (types.CanonicalProfile, error) {
	if path == "" {
		path = im.defaultPath
	}

	page, err := im.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return types.CanonicalProfile{}, err
	}

	doc, ok := page.EmbeddedJSON(path)
	if !ok {
		return types.CanonicalProfile{}, errors.NewScrapeError(errors.ErrCodeNoEmbeddedData,
			"Page carries no embedded profile data", nil).
			WithContext("url", rawURL).
			WithContext("path", path)
	}

	ext, err := FromResult(doc)
	if err != nil {
		return types.CanonicalProfile{}, errors.NewValidationError(errors.ErrCodeInvalidProfile,
			"Embedded profile could not be decoded", err).WithContext("url", rawURL)
	}

	im.logger.Debug("Profile data found", "url", rawURL, "path", path)
	return im.mapper.Map(ext), nil
}
