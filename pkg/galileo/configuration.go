package galileo

import (
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/config"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/dht"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// Configuration for bringing a storage node online.
type Configuration struct {
	// TCP listen port.
	Port int

	// Event reactor worker pool size.
	Threads int

	// How long a fan-out query waits for silent peers.
	QueryDeadline time.Duration

	// Directory layout, usually read from the environment.
	System config.SystemConfig

	// Logger used by every component.
	Logger types.Logger
}

// DefaultConfiguration reads the environment and fills in the standard
// defaults.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Port:          config.DefaultPort,
		Threads:       4,
		QueryDeadline: dht.DefaultQueryDeadline,
		System:        config.Load(),
		Logger:        NewDefaultLogger(),
	}
}
