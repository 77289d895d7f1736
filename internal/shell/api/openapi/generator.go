// Package openapi provides reflective OpenAPI 3.0 specification generation.
// Response schemas are derived from the Go types the handlers encode, so the
// document cannot drift from the JSON actually served.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces OpenAPI 3.0 specifications by reflecting on registered endpoints.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	endpoints   []EndpointInfo
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// EndpointInfo describes one read-only JSON endpoint.
type EndpointInfo struct {
	Path        string // e.g., "/api/v1/retention"
	OperationID string
	Summary     string
	Tag         string
	Response    any            // Value whose type is encoded on success
	Query       []QueryParam   // Optional query parameters
	Errors      map[int]string // Status code -> description, encoded as the Error schema
}

// QueryParam describes an integer or string query parameter.
type QueryParam struct {
	Name        string
	Description string
	Type        string // "integer" or "string"
	Minimum     *float64
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Release Retention API",
		version:     "1.0.0",
		description: "Decides which releases to keep per project and environment",
		endpoints:   make([]EndpointInfo, 0),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterEndpoint adds an endpoint to the generator for spec generation.
func (g *Generator) RegisterEndpoint(info EndpointInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.endpoints = append(g.endpoints, info)
	g.cachedSpec = nil // Invalidate cache
}

// Generate produces the complete OpenAPI 3.0 specification.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: make(openapi3.Servers, 0, len(g.servers)),
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	g.addCommonSchemas(spec)

	for _, ep := range g.endpoints {
		g.addEndpointToSpec(spec, ep)
	}

	g.cachedSpec = spec
	return spec
}

// Handler returns an HTTP handler that serves the OpenAPI specification.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Schema Generation
// =============================================================================

// ErrorSchemaName is the component name of the error body.
const ErrorSchemaName = "Error"

func (g *Generator) addCommonSchemas(spec *openapi3.T) {
	spec.Components.Schemas[ErrorSchemaName] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"code": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
			},
			Required: []string{"error", "code"},
		},
	}
}

// addEndpointToSpec adds the GET operation and the schemas it references.
func (g *Generator) addEndpointToSpec(spec *openapi3.T, ep EndpointInfo) {
	responses := make([]openapi3.NewResponsesOption, 0, len(ep.Errors)+1)

	okSchema := g.goTypeToSchema(spec.Components.Schemas, reflect.TypeOf(ep.Response))
	responses = append(responses, openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("OK").WithJSONSchemaRef(okSchema),
	}))

	for status, description := range ep.Errors {
		responses = append(responses, openapi3.WithStatus(status, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(description).
				WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/" + ErrorSchemaName}),
		}))
	}

	op := &openapi3.Operation{
		OperationID: ep.OperationID,
		Summary:     ep.Summary,
		Responses:   openapi3.NewResponses(responses...),
	}
	if ep.Tag != "" {
		op.Tags = []string{ep.Tag}
	}

	for _, q := range ep.Query {
		schema := &openapi3.Schema{Type: &openapi3.Types{q.Type}}
		if q.Minimum != nil {
			schema.Min = q.Minimum
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:        q.Name,
				In:          "query",
				Description: q.Description,
				Schema:      &openapi3.SchemaRef{Value: schema},
			},
		})
	}

	spec.Paths.Set(ep.Path, &openapi3.PathItem{Get: op})
}

// extractSchema extracts an OpenAPI object schema from a Go struct type.
func (g *Generator) extractSchema(schemas openapi3.Schemas, t reflect.Type) *openapi3.Schema {
	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		omitEmpty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}

		propSchema := g.goTypeToSchema(schemas, field.Type)
		if propSchema != nil {
			schema.Properties[name] = propSchema
			if !omitEmpty {
				schema.Required = append(schema.Required, name)
			}
		}
	}

	return schema
}

// goTypeToSchema converts a Go type to an OpenAPI schema. Named structs are
// registered as components and referenced.
func (g *Generator) goTypeToSchema(schemas openapi3.Schemas, t reflect.Type) *openapi3.SchemaRef {
	if t == nil {
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}

	switch t.Kind() {
	case reflect.String:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}

	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}

	case reflect.Float32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "float"}}

	case reflect.Float64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: g.goTypeToSchema(schemas, t.Elem()),
			},
		}

	case reflect.Map:
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:                 &openapi3.Types{"object"},
				AdditionalProperties: openapi3.AdditionalProperties{Schema: g.goTypeToSchema(schemas, t.Elem())},
			},
		}

	case reflect.Ptr:
		schema := g.goTypeToSchema(schemas, t.Elem())
		if schema.Ref != "" {
			return schema
		}
		schema.Value.Nullable = true
		return schema

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
			}
		}
		if t.Name() == "" {
			return &openapi3.SchemaRef{Value: g.extractSchema(schemas, t)}
		}
		name := t.Name()
		if _, ok := schemas[name]; !ok {
			// Reserve the name first so self-referencing types terminate.
			schemas[name] = &openapi3.SchemaRef{Value: &openapi3.Schema{}}
			schemas[name].Value = g.extractSchema(schemas, t)
		}
		return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}

	default:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}
}
