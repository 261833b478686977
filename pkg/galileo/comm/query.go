package comm

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/event"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// QueryRequest is a client asking a node to run a feature query across
// the overlay. The query string is opaque at this layer; the file
// system evaluates it.
type QueryRequest struct {
	Query string
}

func (q *QueryRequest) EventType() event.Type {
	return event.QueryRequest
}

func (q *QueryRequest) Serialize(w *serialization.Writer) error {
	return w.WriteString(q.Query)
}

func DeserializeQueryRequest(r *serialization.Reader) (event.Event, error) {
	query, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &QueryRequest{Query: query}, nil
}

// Query is the fan-out form of a client query request, forwarded from
// the coordinating node to its peers. Id names the in-flight query so
// responses can be stitched back to the originating client.
type Query struct {
	Id    string
	Query string
}

func (q *Query) EventType() event.Type {
	return event.Query
}

func (q *Query) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(q.Id); err != nil {
		return err
	}
	return w.WriteString(q.Query)
}

func DeserializeQuery(r *serialization.Reader) (event.Event, error) {
	id, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	query, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &Query{Id: id, Query: query}, nil
}
