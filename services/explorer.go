package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNodeNotFound is returned for operations on a uid absent from the tree.
var ErrNodeNotFound = errors.New("tree node not found")

// NodeState is the per-node lifecycle of the explorer:
// Collapsed -> Loading -> Expanded -> Collapsed (children discarded) -> ...
type NodeState int

const (
	StateCollapsed NodeState = iota
	StateLoading
	StateExpanded
)

func (s NodeState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateExpanded:
		return "expanded"
	default:
		return "collapsed"
	}
}

// ChildFetcher returns raw delimited records for the tree roots and for the
// children of a node.
type ChildFetcher interface {
	FetchRoots(ctx context.Context) ([]string, error)
	FetchChildren(ctx context.Context, node TreeNode) ([]string, error)
}

// Explorer owns one expandable tree. It is safe for concurrent use; fetches
// run outside the lock and a node already loading ignores further expands.
type Explorer struct {
	fetcher ChildFetcher
	parser  RecordParser
	log     logrus.FieldLogger

	mu      sync.Mutex
	roots   []TreeNode
	loading map[string]bool
}

func NewExplorer(fetcher ChildFetcher, parser RecordParser, log logrus.FieldLogger) *Explorer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Explorer{
		fetcher: fetcher,
		parser:  parser,
		log:     log.WithField("component", "cost_explorer"),
		loading: make(map[string]bool),
	}
}

// LoadRoots replaces the whole tree with a fresh root list. On failure the
// previous tree is kept.
func (x *Explorer) LoadRoots(ctx context.Context) error {
	raws, err := x.fetcher.FetchRoots(ctx)
	if err != nil {
		x.log.WithError(err).Warn("loading roots failed")
		return fmt.Errorf("load roots: %w", err)
	}
	roots := SortNodes(x.parser.ParseAll(raws, 0, KindPart, x.log))

	x.mu.Lock()
	x.roots = roots
	x.loading = make(map[string]bool)
	x.mu.Unlock()
	return nil
}

// Expand fetches and attaches the children of uid. A failed fetch leaves the
// node collapsed; the error is logged and returned for the caller to record,
// not to show.
func (x *Explorer) Expand(ctx context.Context, uid string) error {
	x.mu.Lock()
	node, ok := FindNode(x.roots, uid)
	if !ok {
		x.mu.Unlock()
		return ErrNodeNotFound
	}
	if node.Expanded || x.loading[uid] {
		x.mu.Unlock()
		return nil
	}
	x.loading[uid] = true
	x.mu.Unlock()

	raws, err := x.fetcher.FetchChildren(ctx, node)

	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.loading, uid)
	if err != nil {
		x.log.WithError(err).WithField("node", uid).Warn("expanding node failed")
		return fmt.Errorf("expand %s: %w", uid, err)
	}

	children := SortNodes(x.parser.ParseAll(raws, node.Depth+1, KindPart, x.log))
	// The node is gone if the roots were reloaded while fetching.
	if roots, found := WithChildren(x.roots, uid, children); found {
		x.roots = roots
	}
	return nil
}

// Collapse discards the children of uid. No fetch occurs.
func (x *Explorer) Collapse(uid string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	roots, found := CollapseNode(x.roots, uid)
	if !found {
		return ErrNodeNotFound
	}
	x.roots = roots
	return nil
}

// Toggle collapses an expanded node and expands any other.
func (x *Explorer) Toggle(ctx context.Context, uid string) error {
	if x.State(uid) == StateExpanded {
		return x.Collapse(uid)
	}
	return x.Expand(ctx, uid)
}

func (x *Explorer) State(uid string) NodeState {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.loading[uid] {
		return StateLoading
	}
	if n, ok := FindNode(x.roots, uid); ok && n.Expanded {
		return StateExpanded
	}
	return StateCollapsed
}

// Node returns the current copy of one node.
func (x *Explorer) Node(uid string) (TreeNode, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return FindNode(x.roots, uid)
}

// Snapshot returns the current root list. Callers must not modify it.
func (x *Explorer) Snapshot() []TreeNode {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.roots
}
