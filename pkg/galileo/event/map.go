package event

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// Deserializer turns an event body back into a typed event.
type Deserializer func(r *serialization.Reader) (Event, error)

// Map associates type tags with the deserializers that reconstruct
// their bodies. Registration happens once at node startup; lookups are
// read-only after that.
type Map struct {
	deserializers map[Type]Deserializer
}

func NewMap() *Map {
	return &Map{deserializers: make(map[Type]Deserializer)}
}

func (m *Map) Register(t Type, d Deserializer) {
	m.deserializers[t] = d
}

func (m *Map) lookup(t Type) (Deserializer, bool) {
	d, ok := m.deserializers[t]
	return d, ok
}
