package comm

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/event"
)

// StorageNodeEventMap is the event map a storage node runs with: the
// five event types it handles.
func StorageNodeEventMap() *event.Map {
	m := event.NewMap()
	m.Register(event.Storage, DeserializeStorageEvent)
	m.Register(event.StorageRequest, DeserializeStorageRequest)
	m.Register(event.Query, DeserializeQuery)
	m.Register(event.QueryRequest, DeserializeQueryRequest)
	m.Register(event.QueryResponse, DeserializeQueryResponse)
	return m
}

// ClientEventMap covers the events a querying client receives back:
// the preamble and the per-peer responses.
func ClientEventMap() *event.Map {
	m := event.NewMap()
	m.Register(event.QueryPreamble, DeserializeQueryPreamble)
	m.Register(event.QueryResponse, DeserializeQueryResponse)
	return m
}
