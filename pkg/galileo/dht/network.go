package dht

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/config"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// GroupExtension marks network description files: one file per group,
// one "hostname" or "hostname:port" entry per line.
const GroupExtension = ".group"

// NetworkInfo is the static snapshot of the overlay read at startup,
// immutable for the node's lifetime. Node order follows the group
// files sorted by file name, then line order within each file.
type NetworkInfo struct {
	nodes []types.NodeInfo
}

func (n *NetworkInfo) AddNode(node types.NodeInfo) {
	n.nodes = append(n.nodes, node)
}

// AllNodes returns the ordered node list. Callers must not mutate it.
func (n *NetworkInfo) AllNodes() []types.NodeInfo {
	return n.nodes
}

func (n *NetworkInfo) Size() int {
	return len(n.nodes)
}

// ReadNetworkDescription loads every group file under the given
// configuration directory.
func ReadNetworkDescription(confDir string) (*NetworkInfo, error) {
	entries, err := os.ReadDir(confDir)
	if err != nil {
		return nil, fmt.Errorf("could not read network configuration: %w", err)
	}

	network := &NetworkInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), GroupExtension) {
			continue
		}
		group := strings.TrimSuffix(entry.Name(), GroupExtension)
		if err := readGroupFile(network, filepath.Join(confDir, entry.Name()), group); err != nil {
			return nil, err
		}
	}
	if network.Size() == 0 {
		return nil, fmt.Errorf("no nodes found in network configuration at %s", confDir)
	}
	return network, nil
}

func readGroupFile(network *NetworkInfo, path, group string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		node, err := parseNodeLine(line, group)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		network.AddNode(node)
	}
	return scanner.Err()
}

func parseNodeLine(line, group string) (types.NodeInfo, error) {
	hostname, port := line, config.DefaultPort
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		hostname = line[:idx]
		parsed, err := strconv.Atoi(line[idx+1:])
		if err != nil {
			return types.NodeInfo{}, fmt.Errorf("malformed node entry %q: %w", line, err)
		}
		port = parsed
	}
	return types.NodeInfo{Hostname: hostname, Port: port, Group: group}, nil
}
