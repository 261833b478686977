package types

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// Block is the unit of stored data: a payload plus the metadata that
// describes and indexes it. Metadata is serialized first so it can be
// read back without loading the whole payload.
type Block struct {
	Metadata Metadata
	Data     []byte
}

func NewBlock(metadata Metadata, data []byte) *Block {
	return &Block{Metadata: metadata, Data: data}
}

func (b *Block) Serialize(w *serialization.Writer) error {
	if err := w.WriteSerializable(&b.Metadata); err != nil {
		return err
	}
	return w.WriteBytes(b.Data)
}

func DeserializeBlock(r *serialization.Reader) (*Block, error) {
	nested, err := r.ReadSerializable()
	if err != nil {
		return nil, err
	}
	metadata, err := DeserializeMetadata(nested)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return &Block{Metadata: *metadata, Data: data}, nil
}

// DeserializeBlockMetadata reads only the metadata prefix of a
// serialized block, skipping the payload entirely.
func DeserializeBlockMetadata(r *serialization.Reader) (*Metadata, error) {
	nested, err := r.ReadSerializable()
	if err != nil {
		return nil, err
	}
	return DeserializeMetadata(nested)
}
