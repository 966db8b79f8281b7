package intent

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"aiinfra/internal/domain/entity"
)

var requestSchemas = make(map[entity.ActionKind]*gojsonschema.Schema)

func init() {
	for _, kind := range entity.SupportedActions {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaFor(kind)))
		if err != nil {
			panic(fmt.Sprintf("compile %s schema: %v", kind, err))
		}
		requestSchemas[kind] = schema
	}
}

func schemaFor(kind entity.ActionKind) map[string]interface{} {
	nonEmpty := map[string]interface{}{"type": "string", "pattern": `\S`}
	properties := map[string]interface{}{
		entity.KeyAction: map[string]interface{}{
			"type": "string",
			"enum": []interface{}{string(kind)},
		},
	}
	for _, key := range entity.RequiredKeys(kind) {
		if key == entity.KeyAction {
			continue
		}
		properties[key] = nonEmpty
	}
	if kind == entity.ActionCreateStorage {
		properties[entity.KeyStorageAccountName] = map[string]interface{}{
			"type":    "string",
			"pattern": StorageNamePattern.String(),
		}
	}

	required := make([]interface{}, 0, len(properties))
	for _, key := range entity.RequiredKeys(kind) {
		required = append(required, key)
	}
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

// CheckRequest asserts that every field the action's template needs is set
// and that names satisfy provider rules.
func CheckRequest(req entity.ActionRequest) error {
	schema, ok := requestSchemas[req.Action]
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedAction, req.Action)
	}

	doc := make(map[string]interface{})
	for k, v := range req.Vars() {
		doc[k] = v
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate %s record: %w", req.Action, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", entity.ErrInvalidRecord, strings.Join(msgs, "; "))
}
