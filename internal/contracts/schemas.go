package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"search-service/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed schemas
var schemasFS embed.FS

const schemasRoot = "schemas"

// Ключи зарегистрированных схем
const (
	SearchRequestV1       = "SearchRequest/1.0.0"
	PropertyViewedEventV1 = "PropertyViewedEvent/1.0.0"
	PropertyListedEventV1 = "PropertyListedEvent/1.0.0"
)

var compiledSchemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiled, err := compileSchemas(schemasFS)
	if err != nil {
		panic(fmt.Sprintf("contracts: %v", err))
	}
	return compiled
}

// compileSchemas добавляет все схемы как ресурсы, чтобы работали $ref,
// затем компилирует каждую.
func compileSchemas(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, schemasRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		resource := strings.TrimPrefix(path, schemasRoot+"/")
		if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, resource)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking schema resources: %w", err)
	}

	compiled := make(map[string]*jsonschema.Schema, len(paths))
	for _, resource := range paths {
		schema, err := compiler.Compile(resource)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", resource, err)
		}
		key := keyFromPath(resource)
		if key == "" {
			return nil, fmt.Errorf("schema path %s does not follow <name>/v<N>.json", resource)
		}
		compiled[key] = schema
	}
	return compiled, nil
}

// keyFromPath: "search-request/v1.json" -> "SearchRequest/1.0.0".
func keyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(p))
	}
	return fmt.Sprintf("%s/%s.0.0", name.String(), strings.TrimPrefix(parts[1], "v"))
}

// Validate проверяет JSON-документ по схеме. Нарушение схемы возвращается
// как *domain.ValidationError с именем первого поля, где оно найдено.
func Validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema %q not found", key)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return domain.NewValidationError("body", "not a valid JSON document: %v", err)
	}

	if err := schema.Validate(v); err != nil {
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			leaf := deepestCause(vErr)
			return domain.NewValidationError(fieldFromLocation(leaf.InstanceLocation), "%s", leaf.Message)
		}
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

func deepestCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func fieldFromLocation(location string) string {
	location = strings.TrimPrefix(location, "/")
	if location == "" {
		return "body"
	}
	return strings.SplitN(location, "/", 2)[0]
}
