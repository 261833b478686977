package galileo

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/dht"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/fs"
)

// NewStorageNode assembles and starts a storage node with the default
// configuration.
func NewStorageNode() (*dht.StorageNode, error) {
	return NewStorageNodeConfigured(DefaultConfiguration())
}

// NewStorageNodeConfigured assembles a storage node from the given
// configuration: network description, file system with metadata
// recovery, partitioner, and the node itself, started and online when
// this returns without error.
func NewStorageNodeConfigured(conf *Configuration) (*dht.StorageNode, error) {
	if conf.Logger == nil {
		conf.Logger = NewDefaultLogger()
	}

	network, err := dht.ReadNetworkDescription(conf.System.ConfigDir)
	if err != nil {
		return nil, err
	}

	filesystem, err := fs.NewFileSystem(conf.Logger, conf.System.StorageDir)
	if err != nil {
		return nil, err
	}
	if err := filesystem.RecoverMetadata(); err != nil {
		return nil, err
	}

	partitioner, err := dht.NewRingPartitioner(network)
	if err != nil {
		return nil, err
	}

	node := dht.NewStorageNode(dht.StorageNodeConfig{
		Port:          conf.Port,
		Threads:       conf.Threads,
		QueryDeadline: conf.QueryDeadline,
		Network:       network,
		FileSystem:    filesystem,
		Partitioner:   partitioner,
		Logger:        conf.Logger,
	})
	if err := node.Start(); err != nil {
		return nil, err
	}
	return node, nil
}
