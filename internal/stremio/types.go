package stremio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ResourceCatalog is the resource name an addon declares when it serves
// catalog pages.
const ResourceCatalog = "catalog"

// User is the account object returned by login and getUser.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Resource is one entry of a manifest's resources array. Addons declare
// these either as a bare string ("catalog") or as an object with a name and
// an optional list of supported content types.
type Resource struct {
	Name  string   `json:"name"`
	Types []string `json:"types,omitempty"`

	// Shorthand records that the entry arrived as a bare string. Shorthand
	// catalog resources apply to every content type the manifest lists.
	Shorthand bool `json:"-"`
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*r = Resource{Name: name, Shorthand: true}
		return nil
	}

	type alias Resource
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Resource(a)
	return nil
}

// ExtraItem describes an extra query parameter a catalog supports, such as
// genre or skip.
type ExtraItem struct {
	Name         string   `json:"name"`
	IsRequired   bool     `json:"isRequired,omitempty"`
	Options      []string `json:"options,omitempty"`
	OptionsLimit int      `json:"optionsLimit,omitempty"`
}

// Catalog is one catalog entry declared by a manifest.
type Catalog struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Name  string      `json:"name,omitempty"`
	Extra []ExtraItem `json:"extra,omitempty"`
}

// BehaviorHints are optional flags a manifest sets to steer client behavior.
type BehaviorHints struct {
	Adult                 bool `json:"adult,omitempty"`
	P2P                   bool `json:"p2p,omitempty"`
	Configurable          bool `json:"configurable,omitempty"`
	ConfigurationRequired bool `json:"configurationRequired,omitempty"`
}

// Manifest is the typed view of an addon manifest. Only the fields this
// client consumes are modeled; Descriptor keeps the raw JSON so everything
// else survives a collection round-trip.
type Manifest struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Version       string        `json:"version,omitempty"`
	Description   string        `json:"description,omitempty"`
	Types         []string      `json:"types,omitempty"`
	Resources     []Resource    `json:"resources,omitempty"`
	Catalogs      []Catalog     `json:"catalogs,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints,omitempty"`
}

// SupportsCatalogType reports whether the manifest declares a catalog
// resource covering the given content type. A shorthand catalog resource
// always qualifies; an object resource qualifies when its own types contain
// contentType, falling back to the manifest's top-level types only when the
// resource omits a types field entirely.
func (m *Manifest) SupportsCatalogType(contentType string) bool {
	for _, r := range m.Resources {
		if r.Name != ResourceCatalog {
			continue
		}
		if r.Shorthand {
			return true
		}
		types := r.Types
		if types == nil {
			types = m.Types
		}
		if slices.Contains(types, contentType) {
			return true
		}
	}
	return false
}

// Descriptor is one addon of a user's collection. Decoding keeps the full
// raw object: collection saves are complete replacements, so fields this
// client does not model must be written back untouched. The enabled flag is
// the only field ever mutated locally.
type Descriptor struct {
	TransportURL string
	Manifest     Manifest

	raw     map[string]json.RawMessage
	enabled bool
}

// NewDescriptor builds a descriptor from scratch, enabled by default.
// Collection entries decoded from the API keep their raw form instead.
func NewDescriptor(transportURL string, manifest Manifest) Descriptor {
	return Descriptor{
		TransportURL: transportURL,
		Manifest:     manifest,
		enabled:      true,
	}
}

// Enabled reports whether the addon is active. Descriptors without an
// explicit enabled field default to enabled.
func (d *Descriptor) Enabled() bool {
	return d.enabled
}

// SetEnabled flips the enabled flag and records it for the next save.
func (d *Descriptor) SetEnabled(v bool) {
	d.enabled = v
	if d.raw == nil {
		return
	}
	if v {
		d.raw["enabled"] = json.RawMessage("true")
	} else {
		d.raw["enabled"] = json.RawMessage("false")
	}
}

// Clone returns a copy whose raw field map is independent of the receiver,
// so one copy can be mutated or encoded while the other changes.
func (d *Descriptor) Clone() Descriptor {
	out := *d
	if d.raw != nil {
		out.raw = make(map[string]json.RawMessage, len(d.raw))
		for k, v := range d.raw {
			out.raw[k] = v
		}
	}
	return out
}

func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("addon descriptor: %w", err)
	}

	d.raw = raw
	d.enabled = true
	d.TransportURL = ""
	d.Manifest = Manifest{}

	if v, ok := raw["enabled"]; ok {
		if err := json.Unmarshal(v, &d.enabled); err != nil {
			return fmt.Errorf("addon descriptor enabled: %w", err)
		}
	}
	if v, ok := raw["transportUrl"]; ok {
		if err := json.Unmarshal(v, &d.TransportURL); err != nil {
			return fmt.Errorf("addon descriptor transportUrl: %w", err)
		}
	}
	if v, ok := raw["manifest"]; ok {
		if err := json.Unmarshal(v, &d.Manifest); err != nil {
			return fmt.Errorf("addon descriptor manifest: %w", err)
		}
	}
	return nil
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return json.Marshal(d.raw)
	}

	// Built in code rather than decoded from the API.
	type wire struct {
		Manifest     Manifest `json:"manifest"`
		TransportURL string   `json:"transportUrl"`
		Enabled      bool     `json:"enabled"`
	}
	return json.Marshal(wire{
		Manifest:     d.Manifest,
		TransportURL: d.TransportURL,
		Enabled:      d.enabled,
	})
}

// FlexString decodes JSON strings as well as bare numbers into a string.
// Catalog fields like releaseInfo arrive as either, depending on the addon.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	if string(trimmed) == "null" {
		*s = ""
		return nil
	}
	*s = FlexString(trimmed)
	return nil
}

// MetaPreview is one item of a catalog page. The raw object is retained so
// rows can be served onward without losing fields this client ignores.
type MetaPreview struct {
	ID          string     `json:"id"`
	Type        string     `json:"type,omitempty"`
	Name        string     `json:"name,omitempty"`
	Poster      string     `json:"poster,omitempty"`
	ReleaseInfo FlexString `json:"releaseInfo,omitempty"`

	raw json.RawMessage
}

func (m *MetaPreview) UnmarshalJSON(data []byte) error {
	type alias MetaPreview
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = MetaPreview(a)
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (m MetaPreview) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	type alias MetaPreview
	return json.Marshal(alias(m))
}
