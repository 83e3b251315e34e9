package network

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
)

// FetchError is any transport-level failure: DNS, TLS handshake other than
// trust-store problems, or a non-200 HTTP status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetching %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// CertificateError is a trust-store failure that survived (or could not use)
// the one-shot retry with the alternate CA bundle.
type CertificateError struct {
	URL string
	Err error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("certificate verification for %s: %v", e.URL, e.Err)
}
func (e *CertificateError) Unwrap() error { return e.Err }

// Client wraps http.Client with the TLS floor this tool requires and a
// recovery policy for broken host trust stores: when verification fails and
// an alternate CA bundle is configured, the transport is swapped for one
// rooted in that bundle and the request is retried exactly once per client.
type Client struct {
	caBundle string

	mu      sync.Mutex
	http    *http.Client
	swapped bool
}

// NewClient returns a client verifying against the system roots. caBundle
// may be empty; it is only consulted after a trust-store failure.
func NewClient(caBundle string) *Client {
	return &Client{
		caBundle: caBundle,
		http:     &http.Client{Transport: newTransport(nil)},
	}
}

func newTransport(roots *x509.CertPool) *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    roots,
		},
		ForceAttemptHTTP2: true,
	}
}

// Open issues a GET and returns the response with its body still open.
// The caller owns resp.Body.
func (c *Client) Open(url string) (*http.Response, error) {
	resp, err := c.client().Get(url)
	if err == nil {
		return checkStatus(url, resp)
	}
	if !isTrustFailure(err) {
		return nil, &FetchError{URL: url, Err: err}
	}
	if rerr := c.swapRoots(); rerr != nil {
		return nil, &CertificateError{URL: url, Err: errors.Join(err, rerr)}
	}
	logger.Logger().Warnf("certificate verification failed, retrying with bundle %s", c.caBundle)
	resp, err = c.client().Get(url)
	if err != nil {
		return nil, &CertificateError{URL: url, Err: err}
	}
	return checkStatus(url, resp)
}

// Get fetches the full response body.
func (c *Client) Get(url string) ([]byte, error) {
	resp, err := c.Open(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return data, nil
}

func (c *Client) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.http
}

// swapRoots replaces the transport with one rooted in the configured CA
// bundle. A second trust failure after the swap is final.
func (c *Client) swapRoots() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.swapped {
		return errors.New("alternate CA bundle already in use")
	}
	if c.caBundle == "" {
		return errors.New("no alternate CA bundle configured")
	}
	pem, err := os.ReadFile(c.caBundle)
	if err != nil {
		return fmt.Errorf("reading CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return fmt.Errorf("no certificates found in %s", c.caBundle)
	}
	c.http = &http.Client{Transport: newTransport(pool)}
	c.swapped = true
	return nil
}

func checkStatus(url string, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return resp, nil
}

func isTrustFailure(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	var systemRoots x509.SystemRootsError
	return errors.As(err, &unknownAuthority) || errors.As(err, &systemRoots)
}
