package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/object"
)

// GameServer is what a client needs from the shared simulation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, in input.Input)
	GetSnapshot() *Snapshot
	SpawnPlayer(clientID int)
}

// Server owns one collision world and the actors living in it, and ticks
// them for every connected client.
type Server struct {
	cfg   config.Demo
	log   *zap.Logger
	world *collision.World
	state worldState
	swarm *object.Swarm
	rng   *rand.Rand

	snapshot atomic.Pointer[Snapshot]
	targets  []mgl64.Vec3

	clients      map[int]*ClientHandle
	nextClientID int
	inputCh      chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	done         chan struct{}
	stopOnce     sync.Once
	mu           sync.RWMutex
}

var _ GameServer = (*Server)(nil)

// ClientHandle is a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string
	Player   *object.Player
	EventsCh chan ClientEvent
}

// ClientInput is one frame of input from a client.
type ClientInput struct {
	ClientID int
	Input    input.Input
}

// ClientEventType identifies a server-to-client notification.
type ClientEventType int

const (
	EventPlayerSpawned ClientEventType = iota
	EventServerShutdown
)

// ClientEvent is sent from the server to one client.
type ClientEvent struct {
	Type ClientEventType
}

// New creates a server for cfg. Fixtures are placed immediately; the swarm
// spawns on the first tick.
func New(cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Server{
		cfg:          cfg.Demo,
		log:          log,
		world:        collision.NewWorld(cfg.Engine, collision.WithLogger(log.Named("collision"))),
		swarm:        object.NewSwarm(cfg.Demo, rng),
		rng:          rng,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputCh:      make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		done:         make(chan struct{}),
	}
	for _, a := range object.Scatter(s.world, cfg.Demo, rng) {
		s.state.add(a)
	}
	s.state.add(s.swarm)
	s.snapshot.Store(&Snapshot{})
	return s
}

// World exposes the collision world, mainly for inspection.
func (s *Server) World() *collision.World {
	return s.world
}

// Run ticks the simulation at the configured rate until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer s.stopOnce.Do(func() { close(s.done) })

	ticker := time.NewTicker(s.cfg.TickTime())
	defer ticker.Stop()

	s.log.Info("simulation started",
		zap.Int("enemies", s.cfg.Enemies),
		zap.Int("tick_rate", s.cfg.TickRate))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation stopped", zap.Uint64("ticks", s.world.Stats().Ticks))
			return
		case now := <-ticker.C:
			s.step(now.Sub(last))
			last = now
		}
	}
}

// step runs one frame: registrations, inputs, actor updates, collision tick
// and snapshot.
func (s *Server) step(dt time.Duration) {
	s.processRegistrations()
	s.collectInputs()
	s.update(dt)
	s.world.Tick()
	s.createSnapshot()
}

// Shutdown notifies every client and waits for them to leave, up to timeout.
// The caller cancels the Run context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, h := range s.clients {
		select {
		case h.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	h := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}
	select {
	case s.registerCh <- h:
	case <-s.done:
	}
	return h
}

// UnregisterClient removes a client and its player.
func (s *Server) UnregisterClient(clientID int) {
	select {
	case s.unregisterCh <- clientID:
	case <-s.done:
	}
}

// SendInput forwards one frame of input. Input is dropped when the server
// is behind.
func (s *Server) SendInput(clientID int, in input.Input) {
	select {
	case s.inputCh <- ClientInput{ClientID: clientID, Input: in}:
	default:
	}
}

// GetSnapshot returns the latest snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// SpawnPlayer places a player for the client at a random point of the
// inner spawn square, replacing any previous one.
func (s *Server) SpawnPlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.clients[clientID]
	if !ok {
		return
	}
	if h.Player != nil {
		s.removePlayerLocked(h)
	}

	half := s.cfg.SpawnExtent / 2
	pos := mgl64.Vec3{(s.rng.Float64()*2 - 1) * half, 0, (s.rng.Float64()*2 - 1) * half}
	p := object.NewPlayer(s.world, pos, s.cfg.PlayerSpeed)
	p.Username = h.Username
	p.OwnerID = clientID
	h.Player = p

	s.log.Info("player spawned",
		zap.Int("client", clientID),
		zap.String("username", h.Username),
		zap.Uint64("shape", uint64(p.ID())))

	select {
	case h.EventsCh <- ClientEvent{Type: EventPlayerSpawned}:
	default:
	}
}

func (s *Server) removePlayerLocked(h *ClientHandle) {
	if err := h.Player.Remove(); err != nil {
		s.log.Debug("player already gone", zap.Int("client", h.ID), zap.Error(err))
	}
	h.Player = nil
}

func (s *Server) processRegistrations() {
	for {
		select {
		case h := <-s.registerCh:
			s.mu.Lock()
			s.clients[h.ID] = h
			s.mu.Unlock()
			s.log.Info("client joined", zap.Int("client", h.ID), zap.String("username", h.Username))
		case id := <-s.unregisterCh:
			s.mu.Lock()
			if h, ok := s.clients[id]; ok {
				if h.Player != nil {
					s.removePlayerLocked(h)
				}
				close(h.EventsCh)
				delete(s.clients, id)
				s.log.Info("client left", zap.Int("client", id))
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case ci := <-s.inputCh:
			if h, ok := s.clients[ci.ClientID]; ok && h.Player != nil {
				h.Player.Input = ci.Input
			}
		default:
			return
		}
	}
}

// update steers every actor for the coming tick.
func (s *Server) update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.targets = s.targets[:0]
	for _, h := range s.clients {
		if h.Player == nil {
			continue
		}
		if pos, ok := h.Player.Position(); ok {
			s.targets = append(s.targets, pos)
		}
	}

	ctx := object.UpdateContext{
		Delta:   dt,
		World:   s.world,
		Targets: s.targets,
		Spawner: &s.state,
	}

	for _, h := range s.clients {
		if h.Player != nil {
			s.check(h.Player.Update(ctx))
		}
	}

	kept := s.state.actors[:0]
	for _, a := range s.state.actors {
		remove, err := a.Update(ctx)
		s.check(remove, err)
		if !remove {
			kept = append(kept, a)
		}
	}
	clear(s.state.actors[len(kept):])
	s.state.actors = kept
	s.state.flushSpawned()
}

func (s *Server) check(_ bool, err error) {
	switch {
	case err == nil:
	case errors.Is(err, collision.ErrUnknownID):
		s.log.Debug("actor lost its shape", zap.Error(err))
	default:
		s.log.Warn("actor update failed", zap.Error(err))
	}
}

// createSnapshot publishes the state after the tick. Each snapshot owns
// its slices, so readers can keep one for as long as they like.
func (s *Server) createSnapshot() {
	prev := s.snapshot.Load()
	snap := &Snapshot{
		Shapes: s.world.Snapshot(make([]collision.ShapeState, 0, len(prev.Shapes))),
		Stats:  s.world.Stats(),
	}
	snap.Tick = snap.Stats.Ticks

	s.mu.RLock()
	snap.Clients = len(s.clients)
	for _, h := range s.clients {
		if h.Player == nil {
			continue
		}
		pos, ok := h.Player.Position()
		if !ok {
			continue
		}
		snap.Players = append(snap.Players, PlayerView{
			ClientID: h.ID,
			Username: h.Username,
			ID:       h.Player.ID(),
			Position: pos,
			Touching: h.Player.Touching(),
		})
	}
	for _, sensor := range s.state.sensors {
		pos, _ := sensor.Position()
		snap.Sensors = append(snap.Sensors, SensorView{
			ID:        sensor.ID(),
			Position:  pos,
			Occupants: sensor.Occupants(),
		})
	}
	s.mu.RUnlock()

	s.snapshot.Store(snap)
}
