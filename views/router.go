package views

import (
	"net/url"
	"sync"
)

// View names the portal's top-level panels. Social aliases the chat
// container with different content, so it is a first-class view here.
type View string

const (
	ViewHome    View = "home"
	ViewProfile View = "profile"
	ViewChat    View = "chat"
	ViewSocial  View = "social"
)

// canonicalView maps any name onto a known view; unknown names fall back
// to home silently.
func canonicalView(name string) View {
	switch View(name) {
	case ViewHome, ViewProfile, ViewChat, ViewSocial:
		return View(name)
	default:
		return ViewHome
	}
}

// needsRefresh reports whether a view has view-specific data
// dependencies that must be refreshed on entry.
func needsRefresh(v View) bool {
	return v == ViewProfile || v == ViewChat || v == ViewSocial
}

// Transition describes what the UI adapter must do after a navigation:
// which panel becomes active, whether its refresh routine runs, and
// whether the viewport scrolls to top. Pure data, no DOM.
type Transition struct {
	View      View
	Refresh   bool
	ScrollTop bool
	PushState bool
}

// Router is the view state machine with browser-style history. Explicit
// navigation pushes an entry; Back/Forward walk the stack without
// pushing.
type Router struct {
	mu      sync.Mutex
	current View
	back    []View
	forward []View
}

func NewRouter() *Router {
	return &Router{current: ViewHome}
}

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate switches to the named view. Navigating to the already-active
// view is a no-op: no history entry, no refresh, changed=false.
func (r *Router) Navigate(name string) (Transition, bool) {
	target := canonicalView(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if target == r.current {
		return Transition{View: target}, false
	}
	r.back = append(r.back, r.current)
	r.forward = nil
	r.current = target
	return Transition{View: target, Refresh: needsRefresh(target), ScrollTop: true, PushState: true}, true
}

// Back restores the previous view without pushing a new history entry.
// Cached data is reused, so no refresh fires.
func (r *Router) Back() (Transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.back) == 0 {
		return Transition{View: r.current}, false
	}
	r.forward = append(r.forward, r.current)
	r.current = r.back[len(r.back)-1]
	r.back = r.back[:len(r.back)-1]
	return Transition{View: r.current, ScrollTop: true}, true
}

// Forward is the inverse of Back.
func (r *Router) Forward() (Transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.forward) == 0 {
		return Transition{View: r.current}, false
	}
	r.back = append(r.back, r.current)
	r.current = r.forward[len(r.forward)-1]
	r.forward = r.forward[:len(r.forward)-1]
	return Transition{View: r.current, ScrollTop: true}, true
}

// Navigation is the parsed query-string surface: the requested view and
// an optional game to auto-launch.
type Navigation struct {
	View   View
	GameID string
}

// ParseNavigation reads the ?view=...&game=... query surface. Malformed
// queries and unknown views land on home.
func ParseNavigation(rawQuery string) Navigation {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Navigation{View: ViewHome}
	}
	return Navigation{
		View:   canonicalView(values.Get("view")),
		GameID: values.Get("game"),
	}
}

// QueryString renders a navigation back into the query surface.
func QueryString(nav Navigation) string {
	values := url.Values{}
	if nav.View != ViewHome {
		values.Set("view", string(nav.View))
	}
	if nav.GameID != "" {
		values.Set("game", nav.GameID)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
