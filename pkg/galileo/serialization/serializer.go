package serialization

import (
	"bytes"
	"os"
)

// Serialize encodes the given value into a standalone byte slice.
func Serialize(s Serializable) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Serialize(NewWriter(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Persist writes the serialized form of the value to the given path.
func Persist(s Serializable, path string) error {
	data, err := Serialize(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Restore reads the file at path and hands a Reader over its contents
// to the given decode function.
func Restore(path string, decode func(r *Reader) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(NewReader(data))
}
