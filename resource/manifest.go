package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type KindEncoding string

// KindEncoding constants which reflect the string used for a Content-Type header.
const (
	KindEncodingJSON    KindEncoding = "application/json"
	KindEncodingYAML    KindEncoding = "application/yaml"
	KindEncodingUnknown KindEncoding = ""
)

// Manifest is the flattened structured value describing a resource instance.
// It is the payload handed to an API object at construction time, and is what gets serialized on synthesis.
type Manifest map[string]any

// MergeManifest returns a new Manifest with the keys of each of the overrides shallow-merged on top of base, in order.
// Later maps win on key collisions. Neither base nor overrides are modified.
func MergeManifest(base map[string]any, overrides ...map[string]any) Manifest {
	merged := make(Manifest, len(base))
	for k, v := range base {
		merged[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

// APIVersionKind returns the apiVersion and kind keys of the Manifest.
// It returns an error if either is missing or not a non-empty string.
func (m Manifest) APIVersionKind() (APIVersionKind, error) {
	apiVersion, ok := m["apiVersion"].(string)
	if !ok || apiVersion == "" {
		return APIVersionKind{}, errors.New("manifest is missing a string 'apiVersion'")
	}
	kind, ok := m["kind"].(string)
	if !ok || kind == "" {
		return APIVersionKind{}, errors.New("manifest is missing a string 'kind'")
	}
	return APIVersionKind{
		APIVersion: apiVersion,
		Kind:       kind,
	}, nil
}

// Copy returns a shallow copy of the Manifest
func (m Manifest) Copy() Manifest {
	return MergeManifest(m)
}

// WriteManifests writes the provided manifests to out in the provided encoding.
// YAML output is a multi-document stream, JSON output is a single JSON array.
func WriteManifests(out io.Writer, encoding KindEncoding, manifests ...map[string]any) error {
	switch encoding {
	case KindEncodingJSON:
		if manifests == nil {
			manifests = make([]map[string]any, 0)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(manifests)
	case KindEncodingYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		for _, m := range manifests {
			if err := enc.Encode(m); err != nil {
				return err
			}
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot marshal unknown content encoding '%s'", encoding)
	}
}

// ReadManifests reads all manifests from in, which must be in the provided encoding.
// It is the inverse of WriteManifests. YAML documents are normalized through JSON,
// so both encodings decode to the same types (all numbers are float64).
func ReadManifests(in io.Reader, encoding KindEncoding) ([]Manifest, error) {
	if in == nil {
		return nil, fmt.Errorf("in io.Reader cannot be nil")
	}
	switch encoding {
	case KindEncodingJSON:
		manifests := make([]Manifest, 0)
		if err := json.NewDecoder(in).Decode(&manifests); err != nil {
			return nil, err
		}
		return manifests, nil
	case KindEncodingYAML:
		manifests := make([]Manifest, 0)
		dec := yaml.NewDecoder(in)
		for {
			m := make(Manifest)
			err := dec.Decode(&m)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			normalized, err := normalizeJSON(m)
			if err != nil {
				return nil, err
			}
			manifests = append(manifests, normalized)
		}
		return manifests, nil
	}
	return nil, fmt.Errorf("cannot unmarshal unknown content encoding '%s'", encoding)
}

func normalizeJSON(m Manifest) (Manifest, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	normalized := make(Manifest)
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// EncodingExtension returns the file extension conventionally used for the encoding
func EncodingExtension(encoding KindEncoding) string {
	switch encoding {
	case KindEncodingJSON:
		return "json"
	case KindEncodingYAML:
		return "yaml"
	default:
		return ""
	}
}
