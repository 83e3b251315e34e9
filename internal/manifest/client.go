package manifest

import (
	"encoding/json"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

// Getter is the single network primitive manifest decoding builds on.
// *network.Client satisfies it.
type Getter interface {
	Get(url string) ([]byte, error)
}

// FetchChannel downloads and decodes the channel manifest.
func FetchChannel(c Getter, url string) (*ChannelManifest, error) {
	data, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	var m ChannelManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &network.FetchError{URL: url, Err: err}
	}
	logger.Logger().Debugf("channel manifest: %d items", len(m.ChannelItems))
	return &m, nil
}

// FetchProduct downloads and decodes the nested product manifest.
func FetchProduct(c Getter, url string) (*ProductManifest, error) {
	data, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	var m ProductManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &network.FetchError{URL: url, Err: err}
	}
	logger.Logger().Debugf("product manifest: %d packages", len(m.Packages))
	return &m, nil
}
