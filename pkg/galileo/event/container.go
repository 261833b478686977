package event

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// Container wraps an event body with its type tag for transmission.
// Bodies are opaque to the routing layers; only the reactor's event
// map knows how to decode them.
type Container struct {
	Type Type
	Body []byte
}

// Wrap serializes an event into a container ready for the wire.
func Wrap(e Event) (*Container, error) {
	body, err := serialization.Serialize(e)
	if err != nil {
		return nil, err
	}
	return &Container{Type: e.EventType(), Body: body}, nil
}

// Marshal produces the on-wire form of an event: a serialized
// container holding the serialized event body.
func Marshal(e Event) ([]byte, error) {
	container, err := Wrap(e)
	if err != nil {
		return nil, err
	}
	return serialization.Serialize(container)
}

func (c *Container) Serialize(w *serialization.Writer) error {
	if err := w.WriteInt32(int32(c.Type)); err != nil {
		return err
	}
	return w.WriteBytes(c.Body)
}

func DeserializeContainer(r *serialization.Reader) (*Container, error) {
	tag, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	body, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return &Container{Type: Type(tag), Body: body}, nil
}
