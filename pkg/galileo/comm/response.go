package comm

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/event"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// QueryResponse carries one peer's results for an in-flight query back
// to the coordinating node, which forwards the frame unchanged to the
// originating client.
type QueryResponse struct {
	Id      string
	Results types.MetaArray
}

func (q *QueryResponse) EventType() event.Type {
	return event.QueryResponse
}

func (q *QueryResponse) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(q.Id); err != nil {
		return err
	}
	return w.WriteSerializable(q.Results)
}

func DeserializeQueryResponse(r *serialization.Reader) (event.Event, error) {
	id, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	nested, err := r.ReadSerializable()
	if err != nil {
		return nil, err
	}
	results, err := types.DeserializeMetaArray(nested)
	if err != nil {
		return nil, err
	}
	return &QueryResponse{Id: id, Results: results}, nil
}

// QueryPreamble tells the originating client which peers its query was
// forwarded to and under which id, so the client knows how many
// responses to expect. Guaranteed to be sent before any response for
// the same id.
type QueryPreamble struct {
	Id    string
	Query string
	Nodes []types.NodeInfo
}

func (q *QueryPreamble) EventType() event.Type {
	return event.QueryPreamble
}

func (q *QueryPreamble) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(q.Id); err != nil {
		return err
	}
	if err := w.WriteString(q.Query); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(q.Nodes))); err != nil {
		return err
	}
	for i := range q.Nodes {
		if err := q.Nodes[i].Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func DeserializeQueryPreamble(r *serialization.Reader) (event.Event, error) {
	preamble := &QueryPreamble{}
	var err error
	if preamble.Id, err = r.ReadString(); err != nil {
		return nil, err
	}
	if preamble.Query, err = r.ReadString(); err != nil {
		return nil, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		node, err := types.DeserializeNodeInfo(r)
		if err != nil {
			return nil, err
		}
		preamble.Nodes = append(preamble.Nodes, node)
	}
	return preamble, nil
}
