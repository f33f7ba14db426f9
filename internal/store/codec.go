package store

import (
	"encoding/json"
	"fmt"
)

// Encode converts a model into document fields. The "id" field is dropped
// because the id lives in the document key.
func Encode(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// Decode fills dst from a stored document, including its id
func Decode(doc Document, dst interface{}) error {
	fields := make(map[string]interface{}, len(doc.Data)+1)
	for k, v := range doc.Data {
		fields[k] = v
	}
	fields["id"] = doc.ID

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
	}
	return nil
}

// DecodeAll decodes a list of documents into a slice of T
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := Decode(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Normalize converts partial-update values into the same representation
// Encode produces, so stored fields stay comparable across write paths.
func Normalize(data map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update: %w", err)
	}
	return out, nil
}
