// Package session is the view state machine of minifeed. A Session owns
// the sync state of one client: the active scope, the cursors, the unread
// counter, the pagination flags and the rendered list. It decides which
// fetch to issue next and folds completed fetches into the list.
//
// A Session performs no I/O and is not safe for concurrent use. The UI
// drives it from the Bubble Tea update loop, runs the Requests it returns
// as commands and hands every completion back to Apply.
package session

import (
	"github.com/google/uuid"

	"github.com/abelbrown/minifeed/internal/cursor"
	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/merge"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
)

const comp = "session"

// Renderer receives every change to the rendered list.
type Renderer interface {
	Render(merge.Instruction)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(merge.Instruction)

// Render calls f(in).
func (f RenderFunc) Render(in merge.Instruction) { f(in) }

// Phase is the lifecycle stage of the active scope.
type Phase int

const (
	// Idle is the phase before the first RequestScope.
	Idle Phase = iota
	// Loading waits for the full reload of the active scope.
	Loading
	// Ready accepts polls and pagination.
	Ready
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Scroll is the viewport position the UI reports after user scrolling.
type Scroll struct {
	AtTop    bool
	AtBottom bool
}

// State is a read-only snapshot of the sync state.
type State struct {
	Scope               model.Scope
	Phase               Phase
	Epoch               uint64
	HighWaterMark       int64
	UnreadCount         int
	OldestLoadedItemID  string
	PaginationExhausted bool
	FirstLoad           bool
	PageInFlight        bool
	Rendered            int
}

// Option configures a Session.
type Option func(*Session)

// WithPageSize sets the limit sent with every item request.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithEvents attaches a structured event logger.
func WithEvents(l *otel.Logger) Option {
	return func(s *Session) { s.events = l }
}

// WithIDFunc replaces the request ID generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Session is the sync state machine for one client.
type Session struct {
	renderer Renderer
	list     merge.List
	cursor   cursor.Tracker

	scope     model.Scope
	phase     Phase
	epoch     uint64
	unread    int
	exhausted bool
	firstLoad bool
	unseen    map[string]struct{}

	// IDs of the outstanding reload and pagination requests, empty when
	// none is in flight.
	reloadID string
	pageID   string

	lastErr error

	pageSize int
	events   *otel.Logger
	newID    func() string
}

// New creates an idle Session rendering into r.
func New(r Renderer, opts ...Option) *Session {
	s := &Session{
		renderer: r,
		pageSize: model.DefaultLimit,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the sync state.
func (s *Session) State() State {
	oldest, _ := s.cursor.OldestID()
	return State{
		Scope:               s.scope,
		Phase:               s.phase,
		Epoch:               s.epoch,
		HighWaterMark:       s.cursor.HighWaterMark(),
		UnreadCount:         s.unread,
		OldestLoadedItemID:  oldest,
		PaginationExhausted: s.exhausted,
		FirstLoad:           s.firstLoad,
		PageInFlight:        s.pageID != "",
		Rendered:            s.list.Len(),
	}
}

// Scope returns the active scope.
func (s *Session) Scope() model.Scope { return s.scope }

// Items returns the rendered sequence, top to bottom.
func (s *Session) Items() []model.Item { return s.list.Items() }

// Unseen reports whether id arrived by poll and has not been scrolled to.
func (s *Session) Unseen(id string) bool {
	_, ok := s.unseen[id]
	return ok
}

// LastError returns the error of the most recent failed fetch, or nil once
// a later fetch succeeded.
func (s *Session) LastError() error { return s.lastErr }

func (s *Session) request(mode merge.Mode) Request {
	return Request{
		ID:    s.newID(),
		Mode:  mode,
		Scope: s.scope,
		Epoch: s.epoch,
		Limit: s.pageSize,
	}
}

func (s *Session) render(in merge.Instruction) {
	if in.IsNoop() || s.renderer == nil {
		return
	}
	s.renderer.Render(in)
}

// RequestScope switches to scope and returns the full reload to run.
// It is allowed in any phase; a reload still in flight for the previous
// scope becomes stale.
func (s *Session) RequestScope(scope model.Scope) Request {
	prev := s.scope
	s.epoch++
	s.scope = scope
	s.phase = Loading
	s.unread = 0
	s.exhausted = false
	s.firstLoad = true
	s.unseen = nil
	s.pageID = ""
	s.cursor.ResetScope()
	s.render(s.list.Clear())

	req := s.request(merge.Initial)
	s.reloadID = req.ID

	s.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindScopeChange,
		Comp:  comp,
		ReqID: req.ID,
		Scope: scope.String(),
		Extra: map[string]any{"from": prev.String(), "epoch": s.epoch},
	})
	logging.Debug("scope change", "from", prev, "to", scope, "epoch", s.epoch)
	return req
}

// Poll turns a scheduler tick into a request. It returns false before the
// first scope is set and while the reload of the active scope is still
// pending. A scope whose reload failed gets the reload reissued instead.
func (s *Session) Poll() (Request, bool) {
	switch s.phase {
	case Idle:
		return Request{}, false
	case Loading:
		if s.reloadID != "" {
			return Request{}, false
		}
		req := s.request(merge.Initial)
		s.reloadID = req.ID
		s.events.Emit(otel.Event{
			Kind:  otel.KindPollTick,
			Comp:  comp,
			ReqID: req.ID,
			Scope: s.scope.String(),
			Mode:  req.Mode.String(),
			Msg:   "retry reload",
		})
		return req, true
	}

	req := s.request(merge.PollAppend)
	req.Since = s.cursor.HighWaterMark()
	s.events.Emit(otel.Event{
		Kind:  otel.KindPollTick,
		Comp:  comp,
		ReqID: req.ID,
		Scope: s.scope.String(),
		Mode:  req.Mode.String(),
		Extra: map[string]any{"since": req.Since},
	})
	return req, true
}

// ScrollChanged reacts to the viewport position. Reaching the top clears
// the unread counter; reaching the bottom may return a pagination request.
func (s *Session) ScrollChanged(pos Scroll) (Request, bool) {
	if pos.AtTop && (s.unread > 0 || len(s.unseen) > 0) {
		s.unread = 0
		s.unseen = nil
		s.render(merge.Instruction{Op: merge.OpMarkSeen})
		s.events.Emit(otel.Event{Kind: otel.KindUnreadReset, Comp: comp, Scope: s.scope.String()})
	}
	if !pos.AtBottom {
		return Request{}, false
	}
	return s.nextPage()
}

func (s *Session) nextPage() (Request, bool) {
	if s.phase != Ready || s.firstLoad || s.exhausted || s.pageID != "" {
		return Request{}, false
	}
	oldest, ok := s.cursor.OldestID()
	if !ok {
		return Request{}, false
	}

	req := s.request(merge.PaginationAppend)
	req.After = oldest
	s.pageID = req.ID

	s.events.Emit(otel.Event{
		Kind:  otel.KindPageRequest,
		Comp:  comp,
		ReqID: req.ID,
		Scope: s.scope.String(),
		Mode:  req.Mode.String(),
		Extra: map[string]any{"after": oldest},
	})
	return req, true
}

// Apply folds a completed fetch into the session. Results tagged with a
// scope or epoch other than the current one are discarded untouched.
func (s *Session) Apply(res Result) Outcome {
	req := res.Request
	if req.Epoch != s.epoch || req.Scope != s.scope {
		s.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindStaleDiscard,
			Comp:  comp,
			ReqID: req.ID,
			Scope: req.Scope.String(),
			Mode:  req.Mode.String(),
			Count: len(res.Items),
			Extra: map[string]any{"epoch": req.Epoch, "current_epoch": s.epoch},
		})
		logging.Debug("stale result discarded", "req", req.ID, "scope", req.Scope, "current", s.scope)
		return Stale
	}

	switch req.Mode {
	case merge.Initial:
		if req.ID == s.reloadID {
			s.reloadID = ""
		}
	case merge.PaginationAppend:
		if req.ID == s.pageID {
			s.pageID = ""
		}
	}

	if res.Err != nil {
		s.lastErr = res.Err
		s.events.Emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindFetchError,
			Comp:  comp,
			ReqID: req.ID,
			Scope: req.Scope.String(),
			Mode:  req.Mode.String(),
			Dur:   res.Dur,
			Err:   res.Err.Error(),
		})
		logging.Warn("fetch failed", "mode", req.Mode, "scope", req.Scope, "err", res.Err)
		return Failed
	}
	s.lastErr = nil

	if req.Mode != merge.Initial && s.phase != Ready {
		s.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindStaleDiscard,
			Comp:  comp,
			ReqID: req.ID,
			Scope: req.Scope.String(),
			Mode:  req.Mode.String(),
			Count: len(res.Items),
			Msg:   "scope still loading",
		})
		return Skipped
	}

	mr := s.list.Merge(res.Items, req.Mode)
	if req.Mode != merge.PaginationAppend {
		s.cursor.Advance(mr.MaxAdded)
	}
	s.cursor.SetOldest(mr.OldestID)

	switch req.Mode {
	case merge.Initial:
		s.phase = Ready
		s.firstLoad = false
	case merge.PollAppend:
		s.unread += mr.Inserted
		if mr.Inserted > 0 && s.unseen == nil {
			s.unseen = make(map[string]struct{}, mr.Inserted)
		}
		for _, it := range mr.Instruction.Items {
			s.unseen[it.ID] = struct{}{}
		}
	case merge.PaginationAppend:
		if mr.Exhausted {
			s.exhausted = true
			s.events.Emit(otel.Event{
				Level: otel.LevelInfo,
				Kind:  otel.KindPageExhausted,
				Comp:  comp,
				ReqID: req.ID,
				Scope: req.Scope.String(),
			})
		}
	}

	s.render(mr.Instruction)

	s.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindMergeApply,
		Comp:  comp,
		ReqID: req.ID,
		Scope: req.Scope.String(),
		Mode:  req.Mode.String(),
		Dur:   res.Dur,
		Count: mr.Inserted,
		Extra: map[string]any{
			"dropped": mr.Dropped,
			"op":      mr.Instruction.Op.String(),
			"hwm":     s.cursor.HighWaterMark(),
			"unread":  s.unread,
		},
	})
	logging.Debug("merge applied", "mode", req.Mode, "inserted", mr.Inserted, "dropped", mr.Dropped)
	return Applied
}
