package cache

import (
	"sort"
	"sync"

	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// NodeRegistry maps token ids (and the ball) to their live visual handles.
// Renderers register handles when nodes mount and remove them on unmount.
type NodeRegistry struct {
	m     sync.RWMutex
	nodes map[string]playback.Handle
}

func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{
		nodes: make(map[string]playback.Handle),
	}
}

func (c *NodeRegistry) Register(id string, h playback.Handle) {
	c.m.Lock()
	defer c.m.Unlock()
	c.nodes[id] = h
}

func (c *NodeRegistry) Unregister(id string) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.nodes, id)
}

// Resolve implements playback.Resolver.
func (c *NodeRegistry) Resolve(id string) (playback.Handle, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	h, ok := c.nodes[id]
	return h, ok
}

func (c *NodeRegistry) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.nodes = make(map[string]playback.Handle)
}

// IDs returns the registered ids sorted.
func (c *NodeRegistry) IDs() []string {
	c.m.RLock()
	defer c.m.RUnlock()
	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PointHandle is a headless handle that only remembers where it was put.
type PointHandle struct {
	mu  sync.Mutex
	pos core.Point
	set int
}

func (h *PointHandle) SetPosition(p core.Point) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pos = p
	h.set++
}

// Position returns the last position and how many updates were received.
func (h *PointHandle) Position() (core.Point, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos, h.set
}

// RegisterFrame registers a PointHandle for every token of f placed at its
// frame position, plus the ball when possession is set.
func (c *NodeRegistry) RegisterFrame(f *core.Frame, ballOffset core.Point) map[string]*PointHandle {
	out := make(map[string]*PointHandle, len(f.Tokens)+1)
	for id, p := range f.Tokens {
		h := &PointHandle{pos: p}
		c.Register(id, h)
		out[id] = h
	}
	if holder, ok := f.Tokens[f.Possession]; ok && f.Possession != "" {
		h := &PointHandle{pos: holder.Add(ballOffset)}
		c.Register(playback.BallID, h)
		out[playback.BallID] = h
	}
	return out
}
