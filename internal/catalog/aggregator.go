package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/addons"
	"github.com/Equat-ion/titles/internal/stremio"
)

// Ref identifies one catalog of one addon, derived from the current addon
// collection during a discovery pass. Refs are transient and recomputed on
// every pass rather than persisted.
type Ref struct {
	AddonName    string              `json:"addonName"`
	AddonID      string              `json:"addonId"`
	CatalogID    string              `json:"catalogId"`
	CatalogName  string              `json:"catalogName"`
	CatalogType  string              `json:"catalogType"`
	TransportURL string              `json:"transportUrl"`
	Extra        []stremio.ExtraItem `json:"extra,omitempty"`
}

// Section is one rendered row of an aggregation: a catalog's items capped at
// the per-catalog maximum.
type Section struct {
	CatalogName string                `json:"catalogName"`
	AddonName   string                `json:"addonName"`
	CatalogID   string                `json:"catalogId"`
	Items       []stremio.MetaPreview `json:"items"`
}

// Aggregator discovers which enabled addons expose catalogs for a content
// type and assembles their pages into bounded sections. Every operation
// degrades to an empty result instead of failing: one misbehaving addon must
// never break the aggregated view.
type Aggregator struct {
	addons      *addons.Service
	http        *http.Client
	maxItems    int
	concurrency int
	log         *zerolog.Logger
}

// NewAggregator creates an aggregator over the given addon service.
// maxItems caps each section; concurrency bounds how many catalog pages are
// fetched in parallel during a bulk pass.
func NewAggregator(svc *addons.Service, hc *http.Client, maxItems, concurrency int, log *zerolog.Logger) *Aggregator {
	if maxItems <= 0 {
		maxItems = 20
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{
		addons:      svc,
		http:        hc,
		maxItems:    maxItems,
		concurrency: concurrency,
		log:         log,
	}
}

// CatalogsForType returns a ref for every catalog of the given content type
// exposed by an enabled addon, in collection order. It never fails: logged
// out, a collection fetch error, or a malformed manifest all degrade to an
// empty result.
func (a *Aggregator) CatalogsForType(ctx context.Context, contentType string) []Ref {
	if !a.addons.IsLoggedIn() {
		a.log.Warn().Msg("not logged in, no catalogs to discover")
		return nil
	}

	collection, err := a.addons.Collection(ctx)
	if err != nil {
		a.log.Error().Err(err).Str("type", contentType).Msg("catalog discovery failed")
		return nil
	}

	var refs []Ref
	for i := range collection {
		addon := &collection[i]
		if !addon.Enabled() {
			continue
		}
		if addon.TransportURL == "" {
			continue
		}

		manifest := &addon.Manifest
		if !manifest.SupportsCatalogType(contentType) {
			continue
		}

		for _, c := range manifest.Catalogs {
			if c.Type != contentType {
				continue
			}

			name := c.Name
			if name == "" {
				name = "Unknown Catalog"
			}
			addonName := manifest.Name
			if addonName == "" {
				addonName = "Unknown Addon"
			}

			refs = append(refs, Ref{
				AddonName:    addonName,
				AddonID:      manifest.ID,
				CatalogID:    c.ID,
				CatalogName:  name,
				CatalogType:  c.Type,
				TransportURL: addon.TransportURL,
				Extra:        c.Extra,
			})
		}
	}

	a.log.Info().Int("count", len(refs)).Str("type", contentType).Msg("discovered catalogs")
	return refs
}

// FetchCatalog fetches one page of a catalog, skipping the first skip items
// when the addon supports pagination. Any failure degrades to an empty
// result.
func (a *Aggregator) FetchCatalog(ctx context.Context, ref Ref, skip int) []stremio.MetaPreview {
	url := catalogURL(ref, skip)

	a.log.Debug().Str("url", url).Msg("fetching catalog")

	data, err := stremio.FetchJSON(ctx, a.http, url)
	if err != nil {
		a.log.Warn().Err(err).Str("url", url).Msg("catalog fetch failed")
		return nil
	}

	var page struct {
		Metas []stremio.MetaPreview `json:"metas"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		a.log.Warn().Err(err).Str("url", url).Msg("catalog response did not parse")
		return nil
	}

	return page.Metas
}

// FetchAllForType discovers the catalogs for a content type and fetches each
// one, assembling non-empty sections in discovery order. Fetches run on a
// bounded worker pool; a failure or empty page for one catalog never affects
// the others.
func (a *Aggregator) FetchAllForType(ctx context.Context, contentType string) []Section {
	refs := a.CatalogsForType(ctx, contentType)
	if len(refs) == 0 {
		return nil
	}

	results := make([][]stremio.MetaPreview, len(refs))
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ref Ref) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.FetchCatalog(ctx, ref, 0)
		}(i, ref)
	}
	wg.Wait()

	sections := make([]Section, 0, len(refs))
	for i, ref := range refs {
		items := results[i]
		if len(items) > a.maxItems {
			items = items[:a.maxItems]
		}
		if len(items) == 0 {
			continue
		}
		sections = append(sections, Section{
			CatalogName: ref.CatalogName,
			AddonName:   ref.AddonName,
			CatalogID:   ref.CatalogID,
			Items:       items,
		})
	}

	return sections
}

// MaxItems returns the per-section item cap.
func (a *Aggregator) MaxItems() int {
	return a.maxItems
}

// catalogURL builds the catalog page URL from a ref: the transport URL with
// any trailing /manifest.json stripped, then the catalog path. Addons signal
// pagination through a skip path segment.
func catalogURL(ref Ref, skip int) string {
	base := strings.TrimRight(ref.TransportURL, "/")
	base = strings.TrimSuffix(base, "/manifest.json")

	if skip > 0 {
		return fmt.Sprintf("%s/catalog/%s/%s/skip=%d.json", base, ref.CatalogType, ref.CatalogID, skip)
	}
	return fmt.Sprintf("%s/catalog/%s/%s.json", base, ref.CatalogType, ref.CatalogID)
}
