package types

import (
	"fmt"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// NodeInfo identifies a storage node in the overlay.
type NodeInfo struct {
	Hostname string
	Port     int
	Group    string
}

func (n NodeInfo) String() string {
	return fmt.Sprintf("%s:%d", n.Hostname, n.Port)
}

func (n *NodeInfo) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(n.Hostname); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(n.Port)); err != nil {
		return err
	}
	return w.WriteString(n.Group)
}

func DeserializeNodeInfo(r *serialization.Reader) (NodeInfo, error) {
	var n NodeInfo
	var err error
	if n.Hostname, err = r.ReadString(); err != nil {
		return n, err
	}
	port, err := r.ReadInt32()
	if err != nil {
		return n, err
	}
	n.Port = int(port)
	if n.Group, err = r.ReadString(); err != nil {
		return n, err
	}
	return n, nil
}
