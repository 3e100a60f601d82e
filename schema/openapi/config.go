package openapi

import "strings"

// Info is the document's info block. Title and Version are required by
// OpenAPI and default to "Query Parameters" and "1.0.0".
type Info struct {
	Title       string
	Version     string
	Description string
}

// Route is the operation the query parameters are attached to. An empty
// OperationID becomes "<method>:<path>".
type Route struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
}

// Response documents one status code of the route.
type Response struct {
	Description string
	ContentType string
}

// ListStyle selects how list parameters travel in the query string.
type ListStyle int

const (
	// ListRepeated repeats the key: tag=a&tag=b.
	ListRepeated ListStyle = iota
	// ListCommaSeparated joins values into one key: tag=a,b.
	ListCommaSeparated
)

type config struct {
	version   string
	info      Info
	route     Route
	responses map[string]Response
	listStyle ListStyle
}

func defaultConfig() config {
	return config{
		version:   "3.0.3",
		info:      Info{Title: "Query Parameters", Version: "1.0.0"},
		route:     Route{Path: "/", Method: "get"},
		responses: map[string]Response{"200": {Description: "OK"}},
		listStyle: ListRepeated,
	}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*config)

// WithOpenAPIVersion overrides the OpenAPI version string.
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *config) {
		if version != "" {
			cfg.version = version
		}
	}
}

// WithInfo merges the non-empty fields of info into the info block.
func WithInfo(info Info) GeneratorOption {
	return func(cfg *config) {
		cfg.info.Title = pick(info.Title, cfg.info.Title)
		cfg.info.Version = pick(info.Version, cfg.info.Version)
		cfg.info.Description = pick(info.Description, cfg.info.Description)
	}
}

// WithRoute merges the non-empty fields of route into the documented route.
func WithRoute(route Route) GeneratorOption {
	return func(cfg *config) {
		cfg.route.Path = pick(route.Path, cfg.route.Path)
		cfg.route.Method = strings.ToLower(pick(route.Method, cfg.route.Method))
		cfg.route.OperationID = pick(route.OperationID, cfg.route.OperationID)
		cfg.route.Summary = pick(route.Summary, cfg.route.Summary)
	}
}

// WithResponse documents status, replacing an earlier entry for it.
func WithResponse(status string, resp Response) GeneratorOption {
	return func(cfg *config) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]Response{}
		}
		cfg.responses[status] = resp
	}
}

// WithListStyle selects how list parameters are serialized.
func WithListStyle(style ListStyle) GeneratorOption {
	return func(cfg *config) {
		cfg.listStyle = style
	}
}

func pick(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
