package tools

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parameter is one named argument a tool accepts.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Schema is the machine-readable description of a tool advertised to the model.
type Schema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Parameter returns the declared parameter with the given name.
func (s Schema) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Required lists the names of required parameters in declaration order.
func (s Schema) Required() []string {
	out := []string{}
	for _, p := range s.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Properties renders the parameters as JSON Schema properties, keeping
// declaration order in the encoded output.
func (s Schema) Properties() *orderedmap.OrderedMap[string, any] {
	props := orderedmap.New[string, any]()
	for _, p := range s.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props.Set(p.Name, prop)
	}
	return props
}

// JSONSchema returns the object schema for the tool's parameters.
func (s Schema) JSONSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": s.Properties(),
		"required":   s.Required(),
	}
}

// GenerateSchema derives a Schema from the input struct T. Fields are taken
// from their json tags; fields without omitempty are required, and
// jsonschema_description tags become parameter descriptions.
func GenerateSchema[T any](name, description string) Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	reflected := reflector.Reflect(v)

	required := make(map[string]bool, len(reflected.Required))
	for _, r := range reflected.Required {
		required[r] = true
	}

	params := []Parameter{}
	if reflected.Properties != nil {
		for pair := reflected.Properties.Oldest(); pair != nil; pair = pair.Next() {
			params = append(params, Parameter{
				Name:        pair.Key,
				Type:        pair.Value.Type,
				Description: pair.Value.Description,
				Required:    required[pair.Key],
			})
		}
	}
	return Schema{Name: name, Description: description, Parameters: params}
}
