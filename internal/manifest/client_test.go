package manifest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

const channelDoc = `{
	"channelItems": [
		{
			"id": "Microsoft.VisualStudio.Manifests.VisualStudio",
			"payloads": [{"url": "https://example.invalid/release.vsman"}]
		},
		{
			"id": "Microsoft.VisualStudio.Manifests.VisualStudioPreview",
			"payloads": [{"url": "https://example.invalid/preview.vsman"}]
		},
		{
			"id": "Microsoft.VisualStudio.Product.BuildTools",
			"localizedResources": [
				{"language": "de-de", "license": "https://example.invalid/license.de"},
				{"language": "en-us", "license": "https://example.invalid/license.en"}
			]
		}
	]
}`

func TestFetchChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, channelDoc)
	}))
	defer srv.Close()

	ch, err := FetchChannel(network.NewClient(""), srv.URL)
	require.NoError(t, err)
	require.Len(t, ch.ChannelItems, 3)

	url, err := ch.ProductManifestURL(false)
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/release.vsman", url)

	url, err = ch.ProductManifestURL(true)
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/preview.vsman", url)

	license, err := ch.LicenseURL("en-us")
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/license.en", license)

	_, err = ch.LicenseURL("fr-fr")
	require.Error(t, err)
}

func TestFetchChannelBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not a manifest</html>")
	}))
	defer srv.Close()

	_, err := FetchChannel(network.NewClient(""), srv.URL)
	var fetchErr *network.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, srv.URL, fetchErr.URL)
}

func TestFetchChannelHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchChannel(network.NewClient(""), srv.URL)
	var fetchErr *network.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"packages": [
				{"id": "Microsoft.VisualStudio.Component.VC.14.40.17.10.x86.x64"},
				{"id": "Microsoft.VC.14.40.17.10.CRT.Headers.base", "language": "neutral"}
			]
		}`)
	}))
	defer srv.Close()

	prod, err := FetchProduct(network.NewClient(""), srv.URL)
	require.NoError(t, err)
	require.Len(t, prod.Packages, 2)
	assert.Equal(t, "neutral", prod.Packages[1].Language)
}

func TestItemUnknownID(t *testing.T) {
	m := &ChannelManifest{}
	_, err := m.Item("Missing.Item")
	var unknown *UnknownPackageError
	require.ErrorAs(t, err, &unknown)
}
