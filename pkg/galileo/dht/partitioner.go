package dht

import (
	"fmt"

	"github.com/buraksezer/consistent"
	"github.com/cespare/xxhash/v2"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// PartitionError reports that a block could not be placed on the
// overlay; the coordinator logs it and drops the storage request.
type PartitionError struct {
	Reason string
}

func (e *PartitionError) Error() string {
	return "partition error: " + e.Reason
}

// Partitioner decides placement on the overlay: which node owns a
// block, and which peers a query fans out to.
type Partitioner interface {
	// Locate maps block metadata to the node that should store it.
	Locate(metadata *types.Metadata) (types.NodeInfo, error)

	// QueryTargets selects the peer set a query is forwarded to. The
	// query string is opaque here, so the baseline policy answers
	// with every node in the overlay.
	QueryTargets(query string) []types.NodeInfo
}

// Geohash precision used for placement keys. Coarse on purpose:
// blocks from the same region land on the same ring partition.
const placementPrecision = 4

type ringMember string

func (m ringMember) String() string {
	return string(m)
}

type xxHasher struct{}

func (xxHasher) Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// RingPartitioner places blocks with a consistent hash ring keyed by
// the geohash of the block's spatial location, falling back to the
// block name for non-spatial data.
type RingPartitioner struct {
	ring    *consistent.Consistent
	nodes   map[string]types.NodeInfo
	network *NetworkInfo
}

func NewRingPartitioner(network *NetworkInfo) (*RingPartitioner, error) {
	all := network.AllNodes()
	if len(all) == 0 {
		return nil, &PartitionError{Reason: "network has no nodes"}
	}

	members := make([]consistent.Member, 0, len(all))
	nodes := make(map[string]types.NodeInfo, len(all))
	for _, node := range all {
		members = append(members, ringMember(node.String()))
		nodes[node.String()] = node
	}

	ring := consistent.New(members, consistent.Config{
		PartitionCount:    271,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            xxHasher{},
	})
	return &RingPartitioner{ring: ring, nodes: nodes, network: network}, nil
}

// Locate implements the Partitioner interface.
func (p *RingPartitioner) Locate(metadata *types.Metadata) (types.NodeInfo, error) {
	key := p.placementKey(metadata)
	if key == "" {
		return types.NodeInfo{}, &PartitionError{
			Reason: "metadata has neither spatial properties nor a name",
		}
	}

	member := p.ring.LocateKey([]byte(key))
	node, ok := p.nodes[member.String()]
	if !ok {
		return types.NodeInfo{}, &PartitionError{
			Reason: fmt.Sprintf("ring member %s is not a known node", member.String()),
		}
	}
	return node, nil
}

// QueryTargets implements the Partitioner interface.
func (p *RingPartitioner) QueryTargets(query string) []types.NodeInfo {
	return p.network.AllNodes()
}

func (p *RingPartitioner) placementKey(metadata *types.Metadata) string {
	if metadata.Spatial != nil {
		return Geohash(metadata.Spatial.Latitude, metadata.Spatial.Longitude, placementPrecision)
	}
	return metadata.Name
}
