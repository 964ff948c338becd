// Package scenario implements the on-disk YAML scenario schema of spec
// §4.5/§4.7/§6: a multi-document stream where each document is a
// StaticMockDefinition with a "when" section (requirement families) and a
// "then" section (response template). Grounded on gopkg.in/yaml.v3, the
// consistent YAML library across the example pack, and on
// other_examples/c6c00254_getmockd-mockd__pkg-mock-types.go.go's
// yaml.Node-based scalar-or-object decoding idiom for response bodies.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goodmock/goodmock/internal/types"
	"gopkg.in/yaml.v3"
)

// Definition is one YAML document in a scenario stream.
type Definition struct {
	When types.RequirementsDoc
	Then types.ResponseTemplate
}

type wireDefinition struct {
	When yaml.Node `yaml:"when"`
	Then yaml.Node `yaml:"then"`
}

// Parse reads every YAML document from r and decodes each into a
// Definition, preserving document order (spec: "order of documents is the
// order mocks are installed").
func Parse(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	var defs []Definition
	for {
		var wire wireDefinition
		err := dec.Decode(&wire)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing scenario document: %w", err)
		}
		def, err := decodeDefinition(wire)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// decodeDefinition bridges YAML's native decoding to the JSON-tagged wire
// structs (RequirementsDoc/ResponseTemplate) by round-tripping each node
// through JSON, so the scenario schema's field names stay identical to the
// admin API's JSON field names without a second set of struct tags.
func decodeDefinition(wire wireDefinition) (Definition, error) {
	var def Definition

	whenJSON, err := yamlNodeToJSON(&wire.When)
	if err != nil {
		return def, fmt.Errorf("when: %w", err)
	}
	if len(whenJSON) > 0 {
		if err := json.Unmarshal(whenJSON, &def.When); err != nil {
			return def, fmt.Errorf("when: %w", err)
		}
	}

	thenJSON, err := yamlNodeToJSON(&wire.Then)
	if err != nil {
		return def, fmt.Errorf("then: %w", err)
	}
	if len(thenJSON) > 0 {
		if err := json.Unmarshal(thenJSON, &def.Then); err != nil {
			return def, fmt.Errorf("then: %w", err)
		}
	}
	return def, nil
}

func yamlNodeToJSON(node *yaml.Node) ([]byte, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Write serialises defs as a multi-document YAML stream, one document per
// Definition, in order.
func Write(w io.Writer, defs []Definition) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	for _, def := range defs {
		whenJSON, err := json.Marshal(def.When)
		if err != nil {
			return err
		}
		thenJSON, err := json.Marshal(&def.Then)
		if err != nil {
			return err
		}

		var whenVal, thenVal any
		if err := json.Unmarshal(whenJSON, &whenVal); err != nil {
			return err
		}
		if err := json.Unmarshal(thenJSON, &thenVal); err != nil {
			return err
		}

		doc := map[string]any{"when": whenVal, "then": thenVal}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

// Bytes is a convenience wrapper returning the YAML bytes directly.
func Bytes(defs []Definition) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, defs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
