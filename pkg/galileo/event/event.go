package event

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// Type tags an event on the wire. The tag set is closed and the values
// are stable; peers of different builds must agree on them.
type Type int32

const (
	Storage        Type = 1
	StorageRequest Type = 2
	Query          Type = 3
	QueryRequest   Type = 4
	QueryResponse  Type = 5
	QueryPreamble  Type = 6
)

func (t Type) String() string {
	switch t {
	case Storage:
		return "STORAGE"
	case StorageRequest:
		return "STORAGE_REQUEST"
	case Query:
		return "QUERY"
	case QueryRequest:
		return "QUERY_REQUEST"
	case QueryResponse:
		return "QUERY_RESPONSE"
	case QueryPreamble:
		return "QUERY_PREAMBLE"
	}
	return "UNKNOWN"
}

// Event is the unit of the application protocol: a serializable body
// with a fixed type tag.
type Event interface {
	serialization.Serializable
	EventType() Type
}
