package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"costconsole/locales"
	"costconsole/services"
	"costconsole/templates"
)

func treeData(t locales.Translator, x *services.Explorer) templates.CostTreeData {
	roots := x.Snapshot()
	loading := make(map[string]bool)
	for _, n := range services.VisibleNodes(roots) {
		if x.State(n.UniqueID) == services.StateLoading {
			loading[n.UniqueID] = true
		}
	}
	return templates.CostTreeData{T: t, Roots: roots, Loading: loading}
}

// HandleCostTree renders the expandable explorer, loading the roots while
// the session has none.
func HandleCostTree(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		x, fresh := env.Sessions.Get(e).Explorer(t.Lang())
		if fresh || len(x.Snapshot()) == 0 {
			if err := x.LoadRoots(e.Request.Context()); err != nil {
				Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.Unexpected")})
			}
		}
		c := templates.CostTree(treeData(t, x))
		return renderScreen(e, t, "Cost.Title", c, c)
	}
}

// HandleCostToggle expands or collapses one node and re-renders the tree.
// A failed expand leaves the node collapsed.
func HandleCostToggle(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		x, _ := env.Sessions.Get(e).Explorer(t.Lang())
		uid := strings.TrimSpace(e.Request.URL.Query().Get("uid"))

		err := x.Toggle(e.Request.Context(), uid)
		switch {
		case errors.Is(err, services.ErrNodeNotFound):
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		case err != nil:
			env.logger("cost_tree").WithError(err).WithField("uid", uid).Warn("toggle failed")
			Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.Unexpected")})
		}
		return renderPartial(e, templates.CostTree(treeData(t, x)))
	}
}

// HandleCostRefresh reloads the roots, discarding every expanded branch.
func HandleCostRefresh(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		x, _ := env.Sessions.Get(e).Explorer(t.Lang())
		if err := x.LoadRoots(e.Request.Context()); err != nil {
			Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.Unexpected")})
		}
		return renderPartial(e, templates.CostTree(treeData(t, x)))
	}
}

func browseData(t locales.Translator, n *services.Navigator, filter string) templates.CostBrowseData {
	return templates.CostBrowseData{
		T:      t,
		Path:   n.Path(),
		Items:  n.Items(filter),
		Filter: filter,
	}
}

// HandleCostBrowse renders the breadcrumb view; ?filter narrows the cards.
func HandleCostBrowse(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		n, fresh := env.Sessions.Get(e).Navigator(t.Lang())
		if fresh || (len(n.Path()) == 0 && len(n.Items("")) == 0) {
			if err := n.Home(e.Request.Context()); err != nil {
				Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.Unexpected")})
			}
		}
		c := templates.CostBrowse(browseData(t, n, e.Request.URL.Query().Get("filter")))
		return renderScreen(e, t, "Nav.Browse", c, c)
	}
}

type browseMove func(e *core.RequestEvent, n *services.Navigator) error

// handleBrowseMove runs one navigator move and re-renders. A failed move
// keeps the previous path and items.
func handleBrowseMove(env *Env, move browseMove) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		n, _ := env.Sessions.Get(e).Navigator(t.Lang())

		err := move(e, n)
		switch {
		case errors.Is(err, services.ErrNodeNotFound):
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		case errors.Is(err, services.ErrNotEnterable):
			Notify(e, Outcome{Kind: OutcomeInfo, Message: t.T("Cost.Empty")})
		case err != nil:
			env.logger("cost_browse").WithError(err).Warn("navigation failed")
			Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.Unexpected")})
		}
		return renderPartial(e, templates.CostBrowse(browseData(t, n, "")))
	}
}

func HandleCostBrowseEnter(env *Env) func(*core.RequestEvent) error {
	return handleBrowseMove(env, func(e *core.RequestEvent, n *services.Navigator) error {
		return n.Enter(e.Request.Context(), strings.TrimSpace(e.Request.URL.Query().Get("uid")))
	})
}

func HandleCostBrowseUp(env *Env) func(*core.RequestEvent) error {
	return handleBrowseMove(env, func(e *core.RequestEvent, n *services.Navigator) error {
		return n.Up(e.Request.Context())
	})
}

// HandleCostBrowseJump truncates the path at ?index; a negative or
// unparseable index goes home.
func HandleCostBrowseJump(env *Env) func(*core.RequestEvent) error {
	return handleBrowseMove(env, func(e *core.RequestEvent, n *services.Navigator) error {
		index, err := strconv.Atoi(e.Request.URL.Query().Get("index"))
		if err != nil {
			index = -1
		}
		return n.JumpTo(e.Request.Context(), index)
	})
}

func HandleCostBrowseRefresh(env *Env) func(*core.RequestEvent) error {
	return handleBrowseMove(env, func(e *core.RequestEvent, n *services.Navigator) error {
		return n.Refresh(e.Request.Context())
	})
}
