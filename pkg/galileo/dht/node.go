package dht

import (
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/comm"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/event"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/fs"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/helper"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/net"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// StorageNodeConfig collects everything a node needs before it can go
// online. Zero values fall back to sane defaults where one exists.
type StorageNodeConfig struct {
	// TCP listen port. Port 0 asks the OS for a free one.
	Port int

	// Number of event reactor workers.
	Threads int

	// Per-query deadline; DefaultQueryDeadline when zero.
	QueryDeadline time.Duration

	Network     *NetworkInfo
	FileSystem  fs.PhysicalGraph
	Partitioner Partitioner
	Logger      types.Logger
}

// StorageNode is the primary communication component of the DHT: it
// services client requests and storage-node traffic, gluing the
// message routers, the event reactor, the partitioner and the file
// system together.
type StorageNode struct {
	config StorageNodeConfig
	logger types.Logger

	network     *NetworkInfo
	fs          fs.PhysicalGraph
	partitioner Partitioner

	messageRouter  *net.ServerMessageRouter
	connectionPool *net.ClientConnectionPool
	reactor        *event.ConcurrentReactor
	trackers       *QueryTrackerTable

	sessionId string
}

func NewStorageNode(config StorageNodeConfig) *StorageNode {
	if config.Threads <= 0 {
		config.Threads = 1
	}
	return &StorageNode{
		config:      config,
		logger:      config.Logger,
		network:     config.Network,
		fs:          config.FileSystem,
		partitioner: config.Partitioner,
	}
}

// Start brings the node online. It fails fast: the listen socket is
// bound before any other component spins up, so wrapper scripts get
// immediate feedback on a port conflict.
func (s *StorageNode) Start() error {
	s.messageRouter = net.NewServerMessageRouter(s.logger, s.config.Port)
	if err := s.messageRouter.Listen(); err != nil {
		return err
	}

	s.sessionId = helper.SessionID(s.messageRouter.Port())
	s.trackers = NewQueryTrackerTable(s.logger, s.sessionId, s.config.QueryDeadline)
	s.connectionPool = net.NewClientConnectionPool(s.logger)

	s.reactor = event.NewConcurrentReactor(s.logger, comm.StorageNodeEventMap(), s.config.Threads)
	s.reactor.RegisterHandler(event.Storage, s.storageHandler)
	s.reactor.RegisterHandler(event.StorageRequest, s.storageRequestHandler)
	s.reactor.RegisterHandler(event.Query, s.queryHandler)
	s.reactor.RegisterHandler(event.QueryRequest, s.queryRequestHandler)
	s.reactor.RegisterHandler(event.QueryResponse, s.queryResponseHandler)

	// Frames from both the inbound and the outbound side feed the
	// same reactor queue.
	s.messageRouter.AddListener(s.reactor)
	s.connectionPool.AddListener(s.reactor)

	s.reactor.Start()
	s.logger.Infof("storage node online, session %s, port %d", s.sessionId, s.messageRouter.Port())
	return nil
}

// Port reports the node's actual listen port.
func (s *StorageNode) Port() int {
	return s.messageRouter.Port()
}

func (s *StorageNode) SessionId() string {
	return s.sessionId
}

// Trackers exposes the query tracker table.
func (s *StorageNode) Trackers() *QueryTrackerTable {
	return s.trackers
}

// Shutdown drains and stops every component; pending write queues are
// given the chance to empty.
func (s *StorageNode) Shutdown() {
	s.reactor.Stop()
	s.trackers.Stop()
	s.messageRouter.Shutdown()
	s.connectionPool.Shutdown()
	s.fs.Shutdown()
}

// ForceShutdown stops immediately, discarding queued traffic. The
// routers go down first so a handler blocked on a full write queue is
// released before the reactor waits for its workers.
func (s *StorageNode) ForceShutdown() {
	s.messageRouter.ForceShutdown()
	s.connectionPool.ForceShutdown()
	s.reactor.Stop()
	s.trackers.Stop()
	s.fs.Shutdown()
}

// publishEvent sends an event to a peer node through the connection
// pool.
func (s *StorageNode) publishEvent(e event.Event, node types.NodeInfo) error {
	payload, err := event.Marshal(e)
	if err != nil {
		return err
	}
	destination := net.NewNetworkDestination(node.Hostname, node.Port)
	return s.connectionPool.SendMessage(destination, net.NewGalileoMessage(payload))
}

// publishResponse replies over the connection the triggering message
// arrived on, so the answer reaches the exact socket the requester
// used.
func (s *StorageNode) publishResponse(origin *net.Connection, e event.Event) error {
	payload, err := event.Marshal(e)
	if err != nil {
		return err
	}
	return origin.Send(payload)
}

// storageRequestHandler determines where a block belongs via the
// partitioner and forwards it there. The originator gets no reply.
func (s *StorageNode) storageRequestHandler(ctx *event.HandlerContext) {
	request := ctx.Event.(*comm.StorageRequest)

	node, err := s.partitioner.Locate(&request.Block.Metadata)
	if err != nil {
		s.logger.Errorf("could not partition block %q: %v", request.Block.Metadata.Name, err)
		return
	}

	s.logger.Debugf("storage destination: %s", node)
	if err := s.publishEvent(&comm.StorageEvent{Block: request.Block}, node); err != nil {
		s.logger.Warnf("failed to forward block to %s: %v", node, err)
	}
}

// storageHandler persists a block this node owns.
func (s *StorageNode) storageHandler(ctx *event.HandlerContext) {
	store := ctx.Event.(*comm.StorageEvent)

	s.logger.Debugf("storing block: %s", store.Block.Metadata.Name)
	if _, err := s.fs.StoreBlock(store.Block); err != nil {
		s.logger.Warnf("failed to store block %q: %v", store.Block.Metadata.Name, err)
	}
}

// queryRequestHandler fans a client query out across the overlay. The
// preamble goes back to the client before any query is forwarded, so
// the client learns the id and peer set ahead of the first response.
func (s *StorageNode) queryRequestHandler(ctx *event.HandlerContext) {
	request := ctx.Event.(*comm.QueryRequest)
	s.logger.Debugf("query request: %s", request.Query)

	targets := s.partitioner.QueryTargets(request.Query)
	id := s.trackers.Open(ctx.Message.Origin(), targets)

	preamble := &comm.QueryPreamble{Id: id, Query: request.Query, Nodes: targets}
	if err := s.publishResponse(ctx.Message.Origin(), preamble); err != nil {
		s.logger.Warnf("failed to send query preamble for %s: %v", id, err)
		s.trackers.Close(id)
		return
	}

	query := &comm.Query{Id: id, Query: request.Query}
	for _, node := range targets {
		if err := s.publishEvent(query, node); err != nil {
			s.logger.Warnf("failed to forward query %s to %s: %v", id, node, err)
		}
	}
}

// queryHandler evaluates a forwarded query against the local file
// system and replies over the same connection it arrived on.
func (s *StorageNode) queryHandler(ctx *event.HandlerContext) {
	query := ctx.Event.(*comm.Query)

	results, err := s.fs.Query(query.Query)
	if err != nil {
		s.logger.Warnf("query %s failed: %v", query.Id, err)
	}
	s.logger.Debugf("query %s matched %d blocks", query.Id, len(results))

	response := &comm.QueryResponse{Id: query.Id, Results: results}
	if err := s.publishResponse(ctx.Message.Origin(), response); err != nil {
		s.logger.Warnf("failed to send response for query %s: %v", query.Id, err)
	}
}

// queryResponseHandler stitches a peer response back to the
// originating client, forwarding the frame untouched over the
// connection captured at request time.
func (s *StorageNode) queryResponseHandler(ctx *event.HandlerContext) {
	response := ctx.Event.(*comm.QueryResponse)

	peer := peerIdentity(ctx.Message)
	done, tracker := s.trackers.Record(response.Id, peer, ctx.Message.Payload)
	if tracker == nil {
		return
	}

	if err := tracker.Origin().Send(ctx.Message.Payload); err != nil {
		s.logger.Warnf("failed to forward response for query %s: %v", response.Id, err)
	}
	if done {
		s.trackers.Close(response.Id)
	}
}

func peerIdentity(message *net.GalileoMessage) string {
	if origin := message.Origin(); origin != nil {
		return origin.Destination().String()
	}
	return "unknown"
}
