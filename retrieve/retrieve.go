// Package retrieve provides documents loaders for the Retrieve option of
// package jsonschema.
//
// A URLLoader loads the document at an absolute url. Sync and Async adapt
// a URLLoader to an index.Retrieve:
//
//	opts := &jsonschema.Options{
//		Retrieve: retrieve.Async(retrieve.Default(false)),
//	}
package retrieve

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	gourl "net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/future"
	"github.com/schemakit/jsonschema/index"
)

// URLLoader knows how to load json from given url.
type URLLoader interface {
	// Load loads json from given absolute url.
	Load(url string) (any, error)
}

// Sync returns a Retrieve that loads in the calling goroutine, so that
// compilation never waits on pending futures.
func Sync(l URLLoader) index.Retrieve {
	return func(uri string) *future.Future[any] {
		return future.From(l.Load(uri))
	}
}

// Async returns a Retrieve that loads each document in its own
// goroutine. Documents referenced together are fetched concurrently.
func Async(l URLLoader) index.Retrieve {
	return func(uri string) *future.Future[any] {
		return future.Go(func() (any, error) {
			return l.Load(uri)
		})
	}
}

// Default returns a loader for file, http and https urls. With insecure,
// TLS certificates are not verified.
func Default(insecure bool) SchemeURLLoader {
	httpLoader := HTTPLoader(http.Client{
		Timeout: 15 * time.Second,
	})
	if insecure {
		httpLoader.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return SchemeURLLoader{
		"file":  FileLoader{},
		"http":  &httpLoader,
		"https": &httpLoader,
	}
}

// --

// FileLoader loads file urls. Files with .yaml or .yml extension are
// decoded as YAML.
type FileLoader struct{}

func (l FileLoader) Load(url string) (any, error) {
	path, err := l.ToFile(url)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		return decodeYAML(f)
	}
	return jsonschema.UnmarshalJSON(f)
}

// ToFile returns the file path of a file url.
func (l FileLoader) ToFile(url string) (string, error) {
	u, err := gourl.Parse(url)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("invalid file url: %s", u)
	}
	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
		path = filepath.FromSlash(path)
	}
	return path, nil
}

// ToURL returns the file url of path.
func ToURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	u := gourl.URL{Scheme: "file", Path: abs}
	return u.String(), nil
}

// --

// HTTPLoader loads http and https urls. Responses are decoded as YAML
// when the url or the Content-Type says so.
type HTTPLoader http.Client

func (l *HTTPLoader) Load(url string) (any, error) {
	client := (*http.Client)(l)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}

	isYAML := strings.HasSuffix(url, ".yaml") || strings.HasSuffix(url, ".yml")
	if !isYAML {
		ctype := resp.Header.Get("Content-Type")
		isYAML = strings.HasSuffix(ctype, "/yaml") || strings.HasSuffix(ctype, "-yaml")
	}
	if isYAML {
		return decodeYAML(resp.Body)
	}
	return jsonschema.UnmarshalJSON(resp.Body)
}

// --

// SchemeURLLoader delegates to other URLLoaders based on url scheme.
type SchemeURLLoader map[string]URLLoader

func (l SchemeURLLoader) Load(url string) (any, error) {
	u, err := gourl.Parse(url)
	if err != nil {
		return nil, err
	}
	ll, ok := l[u.Scheme]
	if !ok {
		return nil, &UnsupportedURLSchemeError{u.String()}
	}
	return ll.Load(url)
}

type UnsupportedURLSchemeError struct {
	url string
}

func (e *UnsupportedURLSchemeError) Error() string {
	return fmt.Sprintf("no URLLoader registered for %q", e.url)
}

// --

// MapLoader serves documents from memory, keyed by url.
type MapLoader map[string]any

func (l MapLoader) Load(url string) (any, error) {
	doc, ok := l[url]
	if !ok {
		return nil, fmt.Errorf("no document for %q", url)
	}
	return doc, nil
}

func decodeYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return jsonschema.FromYAML(v)
}
