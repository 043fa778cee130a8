package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ConfigReflector returns the reflector shared by every configuration schema.
// Fields are inlined and unknown properties are rejected.
func ConfigReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}
}

// GetSchemaFromConfig reflects config into an indented JSON schema document.
func GetSchemaFromConfig(config any) (string, error) {
	schema := ConfigReflector().Reflect(config)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
