package net

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// ClientConnectionPool is the shared client-side router a node hands
// to its event handlers for outbound sends. Connections to peers are
// created on first use and reused; a connection that drops is
// re-established on the next send.
type ClientConnectionPool struct {
	router *ClientMessageRouter
}

func NewClientConnectionPool(logger types.Logger) *ClientConnectionPool {
	return &ClientConnectionPool{router: NewClientMessageRouter(logger)}
}

func (p *ClientConnectionPool) AddListener(l MessageListener) {
	p.router.AddListener(l)
}

func (p *ClientConnectionPool) SendMessage(destination NetworkDestination, message *GalileoMessage) error {
	return p.router.SendMessage(destination, message)
}

func (p *ClientConnectionPool) Broadcast(destinations []NetworkDestination, message *GalileoMessage) error {
	return p.router.Broadcast(destinations, message)
}

func (p *ClientConnectionPool) Shutdown() error {
	return p.router.Shutdown()
}

func (p *ClientConnectionPool) ForceShutdown() error {
	return p.router.ForceShutdown()
}
