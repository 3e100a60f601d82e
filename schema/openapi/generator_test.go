package openapi

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo(Info{Title: "Catalog", Version: "2.0.0", Description: "catalog filters"}),
		WithRoute(Route{Path: "/products", Method: "GET", OperationID: "listProducts", Summary: "List products"}),
		WithResponse("400", Response{Description: "Bad query", ContentType: "application/problem+json"}),
		WithListStyle(ListCommaSeparated),
	)

	if got := custom.config.version; got != "3.1.0" {
		t.Fatalf("expected openapi version 3.1.0, got %q", got)
	}
	if got := custom.config.info; got != (Info{Title: "Catalog", Version: "2.0.0", Description: "catalog filters"}) {
		t.Fatalf("unexpected info %+v", got)
	}
	if got := custom.config.route.Method; got != "get" {
		t.Fatalf("expected method get, got %q", got)
	}
	if got := custom.config.route.Summary; got != "List products" {
		t.Fatalf("expected route summary, got %q", got)
	}
	if got := custom.config.responses["400"].ContentType; got != "application/problem+json" {
		t.Fatalf("expected response content type, got %q", got)
	}
	if _, exists := custom.config.responses["200"]; !exists {
		t.Fatalf("expected default 200 response to remain configured")
	}
	if custom.config.listStyle != ListCommaSeparated {
		t.Fatalf("expected comma separated lists")
	}
}

func TestPartialOptionsKeepDefaults(t *testing.T) {
	g := NewGenerator(
		WithInfo(Info{Description: "only a description"}),
		WithRoute(Route{Summary: "  "}),
		WithResponse("", Response{Description: "ignored"}),
	)
	if g.config.info.Title != "Query Parameters" || g.config.info.Version != "1.0.0" {
		t.Fatalf("expected default title and version, got %+v", g.config.info)
	}
	if g.config.route != (Route{Path: "/", Method: "get"}) {
		t.Fatalf("expected default route, got %+v", g.config.route)
	}
	if len(g.config.responses) != 1 {
		t.Fatalf("expected empty status to be ignored, got %v", g.config.responses)
	}
}

func TestGenerateQueryParameters(t *testing.T) {
	generator := NewGenerator(
		WithRoute(Route{Path: "/products", Method: "GET", OperationID: "listProducts", Summary: "List products"}),
	)

	doc, err := generator.Generate([]Parameter{
		{Name: "tag", Default: []string{"a"}, List: true},
		{Name: "page", Description: "Page number", Default: 1},
		{Name: "q"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := `{
		"openapi": "3.0.3",
		"info": {"title": "Query Parameters", "version": "1.0.0"},
		"paths": {"/products": {"get": {
			"operationId": "listProducts",
			"summary": "List products",
			"responses": {"200": {"description": "OK"}},
			"parameters": [
				{"name": "page", "in": "query", "required": false, "description": "Page number",
				 "allowEmptyValue": true, "schema": {"type": "integer", "default": 1}},
				{"name": "q", "in": "query", "required": false,
				 "allowEmptyValue": true, "schema": {"type": "string"}},
				{"name": "tag", "in": "query", "required": false, "style": "form", "explode": true,
				 "schema": {"type": "array", "items": {"type": "string"}, "default": ["a"]}}
			]
		}}}
	}`
	assertJSONEqual(t, decode(t, want), doc)

	if err := validateDocument(doc); err != nil {
		t.Fatalf("document failed validation: %v", err)
	}
}

func TestParameterSchema(t *testing.T) {
	cases := []struct {
		name  string
		param Parameter
		want  string
	}{
		{"bool", Parameter{Name: "debug", Default: false}, `{"type":"boolean","default":false}`},
		{"float", Parameter{Name: "ratio", Default: 0.5}, `{"type":"number","default":0.5}`},
		{"time", Parameter{Name: "since", Default: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			`{"type":"string","format":"date-time","default":"2024-01-02T00:00:00Z"}`},
		{"list without default", Parameter{Name: "tag", List: true}, `{"type":"array","items":{"type":"string"}}`},
		{"override", Parameter{Name: "sort", Default: "name", Schema: map[string]any{"type": "string", "enum": []string{"name", "price"}}},
			`{"type":"string","enum":["name","price"]}`},
		{"struct", Parameter{Name: "filters", Default: struct {
			Status string `json:"status"`
		}{Status: "open"}}, `{"type":"object","properties":{"status":{"type":"string"}},"default":{"status":"open"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParameterSchema(tc.param)
			if err != nil {
				t.Fatalf("ParameterSchema returned error: %v", err)
			}
			assertJSONEqual(t, decode(t, tc.want), got)
		})
	}
}

func TestGenerateRejectsInvalidParameters(t *testing.T) {
	generator := NewGenerator()
	if _, err := generator.Generate([]Parameter{{Name: ""}}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := generator.Generate([]Parameter{{Name: "a"}, {Name: "a"}}); err == nil {
		t.Fatalf("expected error for duplicate name")
	}
	if _, err := generator.Generate([]Parameter{{Name: "m", Default: map[int]string{1: "x"}}}); err == nil {
		t.Fatalf("expected error for unsupported map key")
	}
	if _, err := NewGenerator(WithRoute(Route{Path: "products"})).Generate(nil); err == nil {
		t.Fatalf("expected error for relative path")
	}
}

func TestGenerateEmptyParameterList(t *testing.T) {
	doc, err := NewGenerator().Generate(nil)
	if err != nil {
		t.Fatalf("Generate(nil) returned error: %v", err)
	}
	if err := validateDocument(doc); err != nil {
		t.Fatalf("empty parameter list produced invalid document: %v", err)
	}
}

func TestGeneratorConcurrentAccess(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	params := []Parameter{{Name: "page", Default: 1}, {Name: "tag", List: true}}

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			doc, err := generator.Generate(params)
			if err != nil {
				t.Errorf("Generate returned error: %v", err)
				return
			}
			if doc["paths"] == nil {
				t.Errorf("expected paths in document")
			}
		}()
	}
	wg.Wait()
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	return out
}

func assertJSONEqual(t *testing.T, want, got map[string]any) {
	t.Helper()

	wantBytes := mustMarshal(t, want)
	gotBytes := mustMarshal(t, got)

	if !bytes.Equal(wantBytes, gotBytes) {
		t.Fatalf("schema mismatch\nwant: %s\ngot:  %s", wantBytes, gotBytes)
	}
}

func mustMarshal(t *testing.T, value any) []byte {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return raw
}

func TestCommaSeparatedListsDisableExplode(t *testing.T) {
	doc, err := NewGenerator(WithListStyle(ListCommaSeparated)).Generate([]Parameter{
		{Name: "tag", List: true},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	operation := doc["paths"].(map[string]any)["/"].(map[string]any)["get"].(map[string]any)
	param := operation["parameters"].([]any)[0].(map[string]any)
	if param["explode"] != false || param["style"] != "form" {
		t.Fatalf("expected form style without explode, got %v", param)
	}
	if operation["operationId"] != "get:/" {
		t.Fatalf("expected derived operationId, got %v", operation["operationId"])
	}
}
