package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNotEnterable is returned when entering a node that has no children query.
var ErrNotEnterable = errors.New("node cannot be entered")

// Navigator is the folder-card view of the cost hierarchy: a breadcrumb path
// of entered nodes and the item list of the last one. Every move refetches;
// a failed fetch leaves path and items unchanged.
type Navigator struct {
	fetcher ChildFetcher
	parser  RecordParser
	log     logrus.FieldLogger

	mu    sync.Mutex
	path  []TreeNode
	items []TreeNode
}

func NewNavigator(fetcher ChildFetcher, parser RecordParser, log logrus.FieldLogger) *Navigator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Navigator{
		fetcher: fetcher,
		parser:  parser,
		log:     log.WithField("component", "cost_navigator"),
	}
}

// Home clears the path and lists the roots.
func (n *Navigator) Home(ctx context.Context) error {
	raws, err := n.fetcher.FetchRoots(ctx)
	if err != nil {
		n.log.WithError(err).Warn("loading roots failed")
		return fmt.Errorf("load roots: %w", err)
	}
	items := SortNodes(n.parser.ParseAll(raws, 0, KindPart, n.log))

	n.mu.Lock()
	n.path = nil
	n.items = items
	n.mu.Unlock()
	return nil
}

// Enter opens an item of the current list by uid.
func (n *Navigator) Enter(ctx context.Context, uid string) error {
	n.mu.Lock()
	idx := slices.IndexFunc(n.items, func(t TreeNode) bool { return t.UniqueID == uid })
	if idx < 0 {
		n.mu.Unlock()
		return ErrNodeNotFound
	}
	target := n.items[idx]
	path := append(slices.Clone(n.path), target)
	n.mu.Unlock()

	if !target.HasChildren() {
		return ErrNotEnterable
	}
	return n.load(ctx, path)
}

// Up leaves the last entered node; at depth one it returns Home.
func (n *Navigator) Up(ctx context.Context) error {
	n.mu.Lock()
	path := slices.Clone(n.path)
	n.mu.Unlock()

	if len(path) <= 1 {
		return n.Home(ctx)
	}
	return n.load(ctx, path[:len(path)-1])
}

// JumpTo truncates the path after the breadcrumb at index; a negative index
// goes Home.
func (n *Navigator) JumpTo(ctx context.Context, index int) error {
	n.mu.Lock()
	path := slices.Clone(n.path)
	n.mu.Unlock()

	if index < 0 {
		return n.Home(ctx)
	}
	if index >= len(path) {
		return fmt.Errorf("breadcrumb %d out of range", index)
	}
	return n.load(ctx, path[:index+1])
}

// Refresh reloads the current list.
func (n *Navigator) Refresh(ctx context.Context) error {
	n.mu.Lock()
	path := slices.Clone(n.path)
	n.mu.Unlock()

	if len(path) == 0 {
		return n.Home(ctx)
	}
	return n.load(ctx, path)
}

func (n *Navigator) load(ctx context.Context, path []TreeNode) error {
	current := path[len(path)-1]
	raws, err := n.fetcher.FetchChildren(ctx, current)
	if err != nil {
		n.log.WithError(err).WithField("node", current.UniqueID).Warn("loading children failed")
		return fmt.Errorf("load %s: %w", current.UniqueID, err)
	}
	items := SortNodes(n.parser.ParseAll(raws, len(path), KindPart, n.log))

	n.mu.Lock()
	n.path = path
	n.items = items
	n.mu.Unlock()
	return nil
}

// Path returns the breadcrumb trail.
func (n *Navigator) Path() []TreeNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.path)
}

// Items returns the current list, keeping only names containing filter
// (case-insensitive) when filter is not blank.
func (n *Navigator) Items(filter string) []TreeNode {
	n.mu.Lock()
	items := slices.Clone(n.items)
	n.mu.Unlock()

	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return items
	}
	return slices.DeleteFunc(items, func(t TreeNode) bool {
		return !strings.Contains(strings.ToLower(t.DisplayName), filter)
	})
}
