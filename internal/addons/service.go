package addons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/settings"
	"github.com/Equat-ion/titles/internal/stremio"
)

// Service manages the user's addon collection: fetching it from the API,
// writing it back as a complete replacement, and fetching individual addon
// manifests. Mutations operate on collection values owned by the caller, so
// a UI can batch several toggles before triggering one save.
type Service struct {
	api   *stremio.Client
	store *settings.Store
	http  *http.Client
	log   *zerolog.Logger
}

// NewService creates an addon service. The HTTP client is used for direct
// manifest fetches against addon transport URLs.
func NewService(api *stremio.Client, store *settings.Store, hc *http.Client, log *zerolog.Logger) *Service {
	return &Service{api: api, store: store, http: hc, log: log}
}

type collectionGetRequest struct {
	AuthKey    string   `json:"authKey"`
	Update     bool     `json:"update"`
	AddFromURL []string `json:"addFromURL"`
}

type collectionGetResult struct {
	Addons json.RawMessage `json:"addons"`
}

type collectionSetRequest struct {
	AuthKey string               `json:"authKey"`
	Addons  []stremio.Descriptor `json:"addons"`
}

// Collection fetches the user's addon collection, asking the server to
// update its cached manifests. It fails with stremio.ErrNotAuthenticated
// when no session key is stored and with a *stremio.ProtocolError when the
// addons field is not a list.
func (s *Service) Collection(ctx context.Context) ([]stremio.Descriptor, error) {
	key := s.store.AuthKey()
	if key == "" {
		return nil, fmt.Errorf("get addon collection: %w", stremio.ErrNotAuthenticated)
	}

	req := collectionGetRequest{
		AuthKey:    key,
		Update:     true,
		AddFromURL: []string{},
	}

	var res collectionGetResult
	if err := s.api.Call(ctx, "addonCollectionGet", req, &res); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(res.Addons))
	if trimmed == "" || trimmed[0] != '[' {
		return nil, fmt.Errorf("get addon collection: %w", &stremio.ProtocolError{Message: "addons field is not a list"})
	}

	var addons []stremio.Descriptor
	if err := json.Unmarshal(res.Addons, &addons); err != nil {
		return nil, fmt.Errorf("get addon collection: %w", &stremio.ProtocolError{Message: "decode addons: " + err.Error()})
	}

	s.log.Info().Int("count", len(addons)).Msg("fetched addon collection")
	return addons, nil
}

// SetCollection overwrites the entire remote collection with the given
// sequence. This is a full replace with no merge or version check; when two
// clients save concurrently, the last write wins.
func (s *Service) SetCollection(ctx context.Context, addons []stremio.Descriptor) error {
	key := s.store.AuthKey()
	if key == "" {
		return fmt.Errorf("set addon collection: %w", stremio.ErrNotAuthenticated)
	}

	req := collectionSetRequest{
		AuthKey: key,
		Addons:  addons,
	}
	if req.Addons == nil {
		req.Addons = []stremio.Descriptor{}
	}

	if err := s.api.Call(ctx, "addonCollectionSet", req, nil); err != nil {
		return err
	}

	s.log.Info().Int("count", len(addons)).Msg("updated addon collection")
	return nil
}

// FetchManifest fetches {transportURL}/manifest.json. It is best-effort: any
// failure comes back as (nil, err) for the caller to log, and a nil manifest
// simply means no result.
func (s *Service) FetchManifest(ctx context.Context, transportURL string) (*stremio.Manifest, error) {
	url := strings.TrimRight(transportURL, "/")
	if !strings.HasSuffix(url, "/manifest.json") {
		url += "/manifest.json"
	}

	data, err := stremio.FetchJSON(ctx, s.http, url)
	if err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("manifest fetch failed")
		return nil, fmt.Errorf("fetch manifest %s: %w", url, err)
	}

	var m stremio.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("manifest did not parse")
		return nil, fmt.Errorf("parse manifest %s: %w", url, err)
	}

	return &m, nil
}

// IsLoggedIn reports whether a session key is stored.
func (s *Service) IsLoggedIn() bool {
	return s.store.IsLoggedIn()
}

// Enable marks the addon at index as enabled. Out-of-range indices leave the
// collection unchanged; a stale index from a concurrent edit is not an error.
func Enable(addons []stremio.Descriptor, index int) []stremio.Descriptor {
	if index >= 0 && index < len(addons) {
		addons[index].SetEnabled(true)
	}
	return addons
}

// Disable marks the addon at index as disabled. Out-of-range indices leave
// the collection unchanged.
func Disable(addons []stremio.Descriptor, index int) []stremio.Descriptor {
	if index >= 0 && index < len(addons) {
		addons[index].SetEnabled(false)
	}
	return addons
}

// Remove drops the addon at index, shifting later entries down one position.
// Out-of-range indices leave the collection unchanged.
func Remove(addons []stremio.Descriptor, index int) []stremio.Descriptor {
	if index >= 0 && index < len(addons) {
		addons = append(addons[:index], addons[index+1:]...)
	}
	return addons
}
