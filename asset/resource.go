package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// The Resource class wraps a streamable file or remote Resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Return the remote path to this resource. If this is a remote resource then
// this method returns the base path (without leading /) of the remote URL.
// Otherwise, this method returns the same value as Path().
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Return a path on the local filesystem holding the resource contents. Image
// decoders can only open files so remote resources are streamed to a temp file
// that is removed when the returned cleanup function is invoked. For local
// resources the cleanup function is a no-op.
func (r *Resource) LocalFile() (string, func(), error) {
	if !r.IsRemote() {
		return r.url.Path, func() {}, nil
	}

	f, err := os.CreateTemp("", "*-"+r.RemotePath())
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }

	_, err = io.Copy(f, r)
	f.Close()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("resource: could not stream '%s' to disk: %s", r.Path(), err)
	}

	return f.Name(), cleanup, nil
}

// Create a new Resource data stream.
//
// This function can handle http/https URLs by delegating to the net/http package.
// The caller must make sure to close the returned io.ReadCloser to prevent mem leaks.
func NewResource(pathToResource string) (*Resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	u, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// Windows drive letters parse as a single letter scheme
	if len(u.Scheme) == 1 {
		u = &url.URL{Path: pathToResource}
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "":
		// Keep the path verbatim; '#', '?' and '%' are valid in file names
		u = &url.URL{Path: pathToResource}
		reader, err = os.Open(filepath.Clean(pathToResource))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", u.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", u.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", u.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        u,
	}, nil
}
