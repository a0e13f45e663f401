package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/viralify/edgecraft/pkg/errors"
)

// Marshal encodes the diagram as indented JSON.
func Marshal(d *Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling diagram: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a diagram from JSON.
func Unmarshal(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshaling diagram")
	}
	return &d, nil
}

// Write serializes the diagram to the writer as indented JSON.
func Write(w io.Writer, d *Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding diagram: %w", err)
	}
	return nil
}

// Read deserializes a diagram from the reader.
func Read(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding diagram")
	}
	return &d, nil
}

// ReadFile loads a diagram from a JSON file.
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", path)
		}
		return nil, fmt.Errorf("opening diagram file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile saves a diagram to a JSON file.
func WriteFile(path string, d *Diagram) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating diagram file: %w", err)
	}
	defer f.Close()
	return Write(f, d)
}
