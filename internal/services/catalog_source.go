package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CatalogSource retrieves the raw catalog document. Each call is a single
// attempt; callers decide what to do on failure.
type CatalogSource interface {
	Fetch() ([]byte, error)
}

// HTTPSource fetches the catalog with a GET request.
type HTTPSource struct {
	URL     string
	Timeout time.Duration
}

// Fetch performs one GET against URL and returns the body of a 2xx response.
func (s HTTPSource) Fetch() ([]byte, error) {
	agent := fiber.Get(s.URL)
	if s.Timeout > 0 {
		agent.Timeout(s.Timeout)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch catalog from %s: %w", s.URL, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch catalog from %s: unexpected status %d", s.URL, code)
	}
	return body, nil
}

// FileSource reads a catalog bundled on disk.
type FileSource struct {
	Path string
}

// Fetch reads the whole file.
func (s FileSource) Fetch() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return data, nil
}

// NewCatalogSource picks an HTTPSource for http(s) locations and a
// FileSource otherwise. An empty location yields nil.
func NewCatalogSource(location string, timeout time.Duration) CatalogSource {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return HTTPSource{URL: location, Timeout: timeout}
	default:
		return FileSource{Path: location}
	}
}
