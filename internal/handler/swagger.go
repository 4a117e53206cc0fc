package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/fortuna/ledger-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// transformRefs rewrites $ref values from #/definitions/ to #/components/schemas/.
// Operations have their parameters converted as well.
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if params, ok := v["parameters"].([]interface{}); ok {
			if _, isOperation := v["responses"]; isOperation {
				return transformOperation(v, params)
			}
		}

		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformOperation moves a Swagger 2.0 body parameter into requestBody and
// wraps the type fields of every other parameter in a schema
func transformOperation(op map[string]interface{}, params []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		if key != "parameters" {
			result[key] = transformRefs(value)
		}
	}

	var converted []interface{}
	for _, p := range params {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if param["in"] == "body" {
			body := map[string]interface{}{
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{"schema": transformRefs(param["schema"])},
				},
			}
			if required, ok := param["required"]; ok {
				body["required"] = required
			}
			if desc, ok := param["description"]; ok {
				body["description"] = desc
			}
			result["requestBody"] = body
			continue
		}
		converted = append(converted, transformParameter(param))
	}
	if len(converted) > 0 {
		result["parameters"] = converted
	}
	return result
}

// transformParameter converts a non-body Swagger 2.0 parameter to OpenAPI 3.0 format
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = transformRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}

	return result
}

// NewOpenAPI3Handler serves the swagger spec converted to OpenAPI 3.0, listing the given servers
func NewOpenAPI3Handler(servers []Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return NewInternalError(c, "Failed to read swagger doc")
		}

		var swagger2 map[string]interface{}
		if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
			return NewInternalError(c, "Failed to parse swagger doc")
		}

		info, _ := swagger2["info"].(map[string]interface{})

		paths, _ := swagger2["paths"].(map[string]interface{})
		transformedPaths, _ := transformRefs(paths).(map[string]interface{})

		// securityDefinitions become components/securitySchemes
		components := make(map[string]interface{})
		if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
			components["securitySchemes"] = secDefs
		}
		if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
			components["schemas"] = transformRefs(definitions)
		}

		return c.JSON(http.StatusOK, OpenAPI3Spec{
			OpenAPI:    "3.0.3",
			Info:       info,
			Servers:    servers,
			Paths:      transformedPaths,
			Components: components,
		})
	}
}

// DefaultServers lists the local server for the given port
func DefaultServers(port string) []Server {
	return []Server{{URL: "http://localhost:" + port + "/api/v1", Description: "Local Development"}}
}
