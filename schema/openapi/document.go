package openapi

import (
	"fmt"
	"sort"
	"strings"
)

type openAPIDocumentBuilder struct {
	config config
	params []Parameter
}

func newOpenAPIDocumentBuilder(cfg config, params []Parameter) *openAPIDocumentBuilder {
	return &openAPIDocumentBuilder{
		config: cfg,
		params: params,
	}
}

func (b *openAPIDocumentBuilder) build() (map[string]any, error) {
	parameters, err := b.buildParameters()
	if err != nil {
		return nil, err
	}

	document := map[string]any{
		"openapi": b.config.version,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(parameters),
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	return document, nil
}

func (b *openAPIDocumentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *openAPIDocumentBuilder) buildParameters() ([]any, error) {
	params := append([]Parameter{}, b.params...)
	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Name < params[j].Name
	})

	out := make([]any, 0, len(params))
	for _, param := range params {
		schema, err := ParameterSchema(param)
		if err != nil {
			return nil, err
		}
		entry := map[string]any{
			"name":     param.Name,
			"in":       "query",
			"required": param.Required,
			"schema":   schema,
		}
		if description := strings.TrimSpace(param.Description); description != "" {
			entry["description"] = description
		}
		if schema["type"] == "array" {
			entry["style"] = "form"
			entry["explode"] = b.config.listStyle == ListRepeated
		} else {
			entry["allowEmptyValue"] = true
		}
		out = append(out, entry)
	}
	return out, nil
}

func (b *openAPIDocumentBuilder) buildPaths(parameters []any) map[string]any {
	method := strings.ToLower(b.config.route.Method)
	if method == "" {
		method = "get"
	}

	responses := make(map[string]any, len(b.config.responses))
	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		resp := b.config.responses[status]
		response := map[string]any{
			"description": resp.Description,
		}
		if resp.ContentType != "" {
			response["content"] = map[string]any{
				resp.ContentType: map[string]any{},
			}
		}
		responses[status] = response
	}

	operation := map[string]any{
		"operationId": b.operationID(),
		"parameters":  parameters,
		"responses":   responses,
	}
	if summary := strings.TrimSpace(b.config.route.Summary); summary != "" {
		operation["summary"] = summary
	}

	return map[string]any{
		b.config.route.Path: map[string]any{
			method: operation,
		},
	}
}

func (b *openAPIDocumentBuilder) operationID() string {
	if b.config.route.OperationID != "" {
		return b.config.route.OperationID
	}
	method := strings.ToLower(b.config.route.Method)
	if method == "" {
		method = "get"
	}
	return fmt.Sprintf("%s:%s", method, b.config.route.Path)
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		if !strings.HasPrefix(pathKey, "/") {
			return fmt.Errorf("openapi: path %q must start with /", pathKey)
		}
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["parameters"].([]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing parameters", method, pathKey)
			}
			responses, _ := operation["responses"].(map[string]any)
			if len(responses) == 0 {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
