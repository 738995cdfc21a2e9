package converter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/marketcli/internal/catalog"
)

// ExportOptions contains options for catalog export
type ExportOptions struct {
	OutputDir  string
	BaseURL    string
	Format     string // http, json, yaml (default: http)
	OrganizeBy string // market or flat (default: market), .http only
	Templated  bool   // emit {{name}} placeholders instead of default values, .http only
}

// Document is the serialised form of the whole catalog
type Document struct {
	BaseURL   string          `json:"baseUrl" yaml:"baseUrl"`
	Endpoints []EndpointEntry `json:"endpoints" yaml:"endpoints"`
}

// EndpointEntry is one catalog endpoint with its derived default request
type EndpointEntry struct {
	catalog.Endpoint `yaml:",inline"`
	URL              string `json:"url" yaml:"url"`
	Curl             string `json:"curl" yaml:"curl"`
}

// NewDocument builds the export document for baseURL
func NewDocument(baseURL string, endpoints []catalog.Endpoint) Document {
	doc := Document{BaseURL: baseURL, Endpoints: make([]EndpointEntry, 0, len(endpoints))}
	for _, ep := range endpoints {
		values := catalog.DefaultValues(ep)
		doc.Endpoints = append(doc.Endpoints, EndpointEntry{
			Endpoint: ep,
			URL:      catalog.DeriveURL(baseURL, ep, values),
			Curl:     catalog.DeriveCommand(baseURL, ep, values),
		})
	}
	return doc
}

// Export writes the catalog to opts.OutputDir and returns the paths written
func Export(opts ExportOptions) ([]string, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = catalog.DefaultBaseURL
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	switch strings.ToLower(opts.Format) {
	case "", "http":
		return exportHTTP(opts)
	case "json", "yaml", "yml":
		path, err := exportDocument(opts)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s (use http, json, or yaml)", opts.Format)
	}
}

func exportDocument(opts ExportOptions) (string, error) {
	doc := NewDocument(opts.BaseURL, catalog.All())

	var data []byte
	var err error
	ext := ".json"
	if strings.ToLower(opts.Format) == "json" {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		ext = ".yaml"
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal catalog: %w", err)
	}

	path := filepath.Join(opts.OutputDir, "catalog"+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func exportHTTP(opts ExportOptions) ([]string, error) {
	var written []string
	for _, ep := range catalog.All() {
		dir := opts.OutputDir
		if opts.OrganizeBy != "flat" {
			dir = filepath.Join(dir, string(ep.Market))
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return written, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		path := filepath.Join(dir, sanitizeFilename(ep.Path)+".http")
		content := EndpointHTTPFile(ep, opts.BaseURL, opts.Templated)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// EndpointHTTPFile renders one endpoint as a .http request file
func EndpointHTTPFile(ep catalog.Endpoint, baseURL string, templated bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n", ep.Name))
	sb.WriteString(fmt.Sprintf("# @description %s\n", ep.Description))
	sb.WriteString(fmt.Sprintf("# @tag %s\n", ep.Market))

	for _, p := range ep.Params {
		required := "optional"
		if p.Required {
			required = "required"
		}
		sb.WriteString(fmt.Sprintf("# @param %s {%s} %s - %s\n", p.Name, p.Kind, required, p.Description))
	}
	sb.WriteString("\n")

	var fullURL string
	if templated {
		base := baseURL
		if base == "" {
			base = "{{baseUrl}}"
		}
		query := make([]string, 0, len(ep.Params))
		for _, p := range ep.Params {
			query = append(query, fmt.Sprintf("%s={{%s}}", p.Name, p.Name))
		}
		fullURL = base + ep.Path
		if len(query) > 0 {
			fullURL += "?" + strings.Join(query, "&")
		}
	} else {
		fullURL = catalog.DeriveURL(baseURL, ep, catalog.DefaultValues(ep))
	}

	sb.WriteString(fmt.Sprintf("%s %s\n", ep.Method, fullURL))
	sb.WriteString("Accept: application/json\n")

	return sb.String()
}

func sanitizeFilename(path string) string {
	path = strings.Trim(path, "/")
	path = strings.ReplaceAll(path, "/", "_")
	path = strings.ReplaceAll(path, " ", "_")
	path = strings.ReplaceAll(path, ":", "_")

	if path == "" {
		path = "root"
	}

	return path
}
