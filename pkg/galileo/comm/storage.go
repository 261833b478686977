package comm

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/event"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// StorageRequest asks the receiving node to place a block somewhere in
// the overlay. The receiver partitions on the block's metadata and
// forwards; there is no acknowledgement to the originator.
type StorageRequest struct {
	Block *types.Block
}

func (s *StorageRequest) EventType() event.Type {
	return event.StorageRequest
}

func (s *StorageRequest) Serialize(w *serialization.Writer) error {
	return w.WriteSerializable(s.Block)
}

func DeserializeStorageRequest(r *serialization.Reader) (event.Event, error) {
	nested, err := r.ReadSerializable()
	if err != nil {
		return nil, err
	}
	block, err := types.DeserializeBlock(nested)
	if err != nil {
		return nil, err
	}
	return &StorageRequest{Block: block}, nil
}

// StorageEvent carries a block to the node that owns it; the receiver
// persists it locally.
type StorageEvent struct {
	Block *types.Block
}

func (s *StorageEvent) EventType() event.Type {
	return event.Storage
}

func (s *StorageEvent) Serialize(w *serialization.Writer) error {
	return w.WriteSerializable(s.Block)
}

func DeserializeStorageEvent(r *serialization.Reader) (event.Event, error) {
	nested, err := r.ReadSerializable()
	if err != nil {
		return nil, err
	}
	block, err := types.DeserializeBlock(nested)
	if err != nil {
		return nil, err
	}
	return &StorageEvent{Block: block}, nil
}
