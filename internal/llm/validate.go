package llm

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// ValidateDraftJSON checks a provider's generation response against the
// draft contract before it is accepted.
func ValidateDraftJSON(jsonText string) error {
	return validateAgainst("schemas/draft.json", jsonText)
}

// ValidateEvaluationJSON checks a provider's evaluation response against the
// evaluation contract before it is accepted.
func ValidateEvaluationJSON(jsonText string) error {
	return validateAgainst("schemas/evaluation.json", jsonText)
}

func validateAgainst(schemaPath, jsonText string) error {
	schemaBytes, err := schemaFiles.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewStringLoader(jsonText)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("response does not match %s: %s", schemaPath, strings.Join(details, "; "))
	}
	return nil
}
