package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Channel manifest URLs for the Visual Studio 17.x product line.
const (
	ChannelURL        = "https://aka.ms/vs/17/release/channel"
	ChannelPreviewURL = "https://aka.ms/vs/17/pre/channel"
)

// Channel item ids this tool navigates by.
const (
	ManifestItemID        = "Microsoft.VisualStudio.Manifests.VisualStudio"
	ManifestPreviewItemID = "Microsoft.VisualStudio.Manifests.VisualStudioPreview"
	BuildToolsItemID      = "Microsoft.VisualStudio.Product.BuildTools"
)

// Payload is one downloadable file plus its published content digest.
type Payload struct {
	URL      string `json:"url"`
	SHA256   string `json:"sha256"`
	FileName string `json:"fileName"`
}

// LocalizedResource carries per-language product metadata; only the license
// link is consumed here.
type LocalizedResource struct {
	Language string `json:"language"`
	License  string `json:"license"`
}

// ChannelItem advertises one downloadable product or nested manifest.
type ChannelItem struct {
	ID                 string              `json:"id"`
	Payloads           []Payload           `json:"payloads"`
	LocalizedResources []LocalizedResource `json:"localizedResources"`
}

// ChannelManifest is the top-level channel document.
type ChannelManifest struct {
	ChannelItems []ChannelItem `json:"channelItems"`
}

// Item returns the channel item with exactly the given id.
func (m *ChannelManifest) Item(id string) (*ChannelItem, error) {
	for i := range m.ChannelItems {
		if m.ChannelItems[i].ID == id {
			return &m.ChannelItems[i], nil
		}
	}
	return nil, &UnknownPackageError{ID: id}
}

// ProductManifestURL returns the URL of the nested product manifest the
// channel points at.
func (m *ChannelManifest) ProductManifestURL(preview bool) (string, error) {
	id := ManifestItemID
	if preview {
		id = ManifestPreviewItemID
	}
	item, err := m.Item(id)
	if err != nil {
		return "", err
	}
	if len(item.Payloads) == 0 {
		return "", fmt.Errorf("channel item %s carries no payloads", id)
	}
	return item.Payloads[0].URL, nil
}

// LicenseURL returns the license link for the Build Tools product in the
// given language (the channel uses lowercase tags like "en-us").
func (m *ChannelManifest) LicenseURL(language string) (string, error) {
	item, err := m.Item(BuildToolsItemID)
	if err != nil {
		return "", err
	}
	for _, res := range item.LocalizedResources {
		if res.Language == language {
			return res.License, nil
		}
	}
	return "", fmt.Errorf("no %s license resource on %s", language, BuildToolsItemID)
}

// DependencySet lists dependency package ids in the order the manifest
// document declares them. The manifest encodes dependencies as a JSON object;
// decoding into a map would lose that order, and "first dependency" selection
// depends on it.
type DependencySet []string

func (d *DependencySet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dependencies: expected object, got %v", tok)
	}

	var ids []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dependencies: non-string key %v", keyTok)
		}
		// Values are either a version string or a constraint object;
		// neither matters for one-level expansion.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return err
		}
		ids = append(ids, key)
	}
	*d = ids
	return nil
}

// PackageRecord is one entry in the product manifest. Ids are not unique:
// several records may share an id and differ only by Language or Chip.
type PackageRecord struct {
	ID           string        `json:"id"`
	Language     string        `json:"language"`
	Chip         string        `json:"chip"`
	Payloads     []Payload     `json:"payloads"`
	Dependencies DependencySet `json:"dependencies"`
}

// ProductManifest is the nested manifest listing every installable package.
type ProductManifest struct {
	Packages []PackageRecord `json:"packages"`
}
