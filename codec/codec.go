// Package codec converts syntax trees to and from their document encodings.
//
// JSON is the primary encoding (see ast.Script.MarshalJSON). YAML and CBOR
// carry the same document shape, so a tree written in one format can be
// read back from any other.
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/risor-io/shparse/ast"
)

// Format names a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported encodings.
var Formats = []Format{JSON, YAML, CBOR}

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case JSON, YAML, CBOR:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q (expected json, yaml or cbor)", name)
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(err)
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes the script in the given format.
func Marshal(script *ast.Script, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return script.MarshalJSON()
	case YAML:
		return MarshalYAML(script)
	case CBOR:
		return MarshalCBOR(script)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Unmarshal decodes a script from the given format.
func Unmarshal(data []byte, format Format) (*ast.Script, error) {
	switch format {
	case JSON:
		var script ast.Script
		if err := json.Unmarshal(data, &script); err != nil {
			return nil, err
		}
		return &script, nil
	case YAML:
		return UnmarshalYAML(data)
	case CBOR:
		return UnmarshalCBOR(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// MarshalYAML encodes the script as a YAML document.
func MarshalYAML(script *ast.Script) ([]byte, error) {
	doc, err := toDocument(script)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yaml encoding failed: %w", err)
	}
	return out, nil
}

// UnmarshalYAML decodes a script from a YAML document.
func UnmarshalYAML(data []byte) (*ast.Script, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml decoding failed: %w", err)
	}
	return fromDocument(doc)
}

// MarshalCBOR encodes the script using canonical CBOR. Equal trees always
// produce identical bytes.
func MarshalCBOR(script *ast.Script) ([]byte, error) {
	doc, err := toDocument(script)
	if err != nil {
		return nil, err
	}
	out, err := cborEnc.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cbor encoding failed: %w", err)
	}
	return out, nil
}

// UnmarshalCBOR decodes a script from CBOR.
func UnmarshalCBOR(data []byte) (*ast.Script, error) {
	var doc any
	if err := cborDec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cbor decoding failed: %w", err)
	}
	return fromDocument(doc)
}

// Fingerprint returns the BLAKE2b-256 digest of the script's canonical CBOR
// encoding. Positions are not encoded, so scripts that differ only in
// spacing share a fingerprint.
func Fingerprint(script *ast.Script) ([32]byte, error) {
	data, err := MarshalCBOR(script)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// toDocument converts the script into plain maps and slices. Whole numbers
// are kept as integers so every encoding writes them the same way.
func toDocument(script *ast.Script) (any, error) {
	data, err := script.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return integers(doc), nil
}

func fromDocument(doc any) (*ast.Script, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("unsupported document: %w", err)
	}
	var script ast.Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

func integers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = integers(item)
		}
	case []any:
		for i, item := range x {
			x[i] = integers(item)
		}
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
	}
	return v
}
