package dht

import (
	"testing"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

func Test_GeohashKnownValues(t *testing.T) {
	cases := []struct {
		lat, lon  float64
		precision int
		expected  string
	}{
		{42.605, -5.603, 5, "ezs42"},
		{57.64911, 10.40744, 11, "u4pruydqqvj"},
		{0, 0, 4, "s000"},
	}
	for _, c := range cases {
		if got := Geohash(c.lat, c.lon, c.precision); got != c.expected {
			t.Errorf("Geohash(%v, %v, %d) = %q, expected %q",
				c.lat, c.lon, c.precision, got, c.expected)
		}
	}
}

func testNetwork() *NetworkInfo {
	network := &NetworkInfo{}
	network.AddNode(types.NodeInfo{Hostname: "alpha", Port: 5555, Group: "west"})
	network.AddNode(types.NodeInfo{Hostname: "beta", Port: 5555, Group: "west"})
	network.AddNode(types.NodeInfo{Hostname: "gamma", Port: 5555, Group: "east"})
	return network
}

func Test_LocateIsDeterministic(t *testing.T) {
	partitioner, err := NewRingPartitioner(testNetwork())
	if err != nil {
		t.Fatalf("new partitioner: %v", err)
	}

	metadata := &types.Metadata{
		Name:    "obs-1",
		Spatial: &types.SpatialProperties{Latitude: 40.57, Longitude: -105.08},
	}
	first, err := partitioner.Locate(metadata)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := partitioner.Locate(metadata)
		if err != nil {
			t.Fatalf("locate: %v", err)
		}
		if again != first {
			t.Fatalf("placement moved from %s to %s", first, again)
		}
	}
}

func Test_LocateFallsBackToName(t *testing.T) {
	partitioner, err := NewRingPartitioner(testNetwork())
	if err != nil {
		t.Fatalf("new partitioner: %v", err)
	}

	if _, err := partitioner.Locate(&types.Metadata{Name: "named-only"}); err != nil {
		t.Errorf("metadata with a name must be placeable: %v", err)
	}

	_, err = partitioner.Locate(&types.Metadata{})
	if err == nil {
		t.Fatal("expected a partition error for anonymous metadata")
	}
	if _, ok := err.(*PartitionError); !ok {
		t.Errorf("expected *PartitionError, got %T", err)
	}
}

func Test_QueryTargetsCoverNetwork(t *testing.T) {
	network := testNetwork()
	partitioner, err := NewRingPartitioner(network)
	if err != nil {
		t.Fatalf("new partitioner: %v", err)
	}
	targets := partitioner.QueryTargets("temperature<300")
	if len(targets) != network.Size() {
		t.Errorf("expected %d targets, got %d", network.Size(), len(targets))
	}
}

func Test_EmptyNetworkRejected(t *testing.T) {
	if _, err := NewRingPartitioner(&NetworkInfo{}); err == nil {
		t.Error("expected an error for an empty network")
	}
}
