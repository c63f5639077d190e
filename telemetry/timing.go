package telemetry

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robinvdvleuten/finboard/output"
)

// TimingCollector builds a tree of timed operations.
type TimingCollector struct {
	root    *timerNode
	current *timerNode
	logger  *slog.Logger
	mu      sync.Mutex
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// CollectorOption configures a TimingCollector.
type CollectorOption func(*TimingCollector)

// WithLogger logs every finished timer at debug level.
func WithLogger(logger *slog.Logger) CollectorOption {
	return func(c *TimingCollector) {
		c.logger = logger
	}
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector(opts ...CollectorOption) *TimingCollector {
	c := &TimingCollector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins timing an operation. The first timer becomes the root; later
// ones nest under the timer that is currently running.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{
		name:  name,
		start: time.Now(),
	}

	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Total returns the duration of the root timer, or zero when it has not
// finished.
func (c *TimingCollector) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return 0
	}
	return c.root.duration()
}

// Report writes the timing tree to w.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}

	formatTimingTree(w, c.root, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()

	if t.node.parent != nil && t.collector.current == t.node {
		t.collector.current = t.node.parent
	}

	if t.collector.logger != nil {
		t.collector.logger.Debug("stage finished", "stage", t.node.name, "duration", t.node.duration())
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{
		name:   name,
		start:  time.Now(),
		parent: t.node,
	}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: t.collector, node: node}
}
