// Package server is a small reference implementation of the remote item
// source. It serves a store.Store over the three read endpoints the
// minifeed client polls.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
	"github.com/abelbrown/minifeed/internal/store"
)

const comp = "server"

// Server is the HTTP front of a store.
type Server struct {
	store  *store.Store
	mux    *http.ServeMux
	events *otel.Logger
}

// New creates a Server over st. events may be nil.
func New(st *store.Store, events *otel.Logger) *Server {
	s := &Server{store: st, mux: http.NewServeMux(), events: events}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/getGroups", s.handleGroups)
	s.mux.HandleFunc("GET /api/getFeeds", s.handleFeeds)
	s.mux.HandleFunc("GET /api/getItems", s.handleItems)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.Groups(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.store.Feeds(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	q, msg := parseItemQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	start := time.Now()
	items, err := s.store.Items(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.events.Emit(otel.Event{
		Kind:  otel.KindServeRequest,
		Comp:  comp,
		Scope: q.Scope.String(),
		Count: len(items),
		Dur:   time.Since(start),
		Msg:   r.URL.RawQuery,
	})
	writeJSON(w, http.StatusOK, items)
}

// parseItemQuery reads getItems parameters. feed_id wins over group_id
// when both are present. It returns a non-empty message for bad input.
func parseItemQuery(r *http.Request) (model.Query, string) {
	v := r.URL.Query()
	q := model.Query{Scope: model.All(), After: v.Get("after")}

	if g := v.Get("group_id"); g != "" {
		q.Scope = model.GroupScope(g)
	}
	if f := v.Get("feed_id"); f != "" {
		q.Scope = model.FeedScope(f)
	}

	if raw := v.Get("since"); raw != "" {
		since, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || since < 0 {
			return q, "since must be a non-negative integer"
		}
		q.Since = since
	}
	if raw := v.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return q, "limit must be a positive integer"
		}
		q.Limit = limit
	}
	if q.Since > 0 && q.After != "" {
		return q, "since and after are mutually exclusive"
	}
	return q, ""
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("request failed", "path", r.URL.Path, "err", err)
	s.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindError, Comp: comp, Err: err.Error()})
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("encode response", "err", err)
	}
}

// Drip releases held items one per interval until they run out or ctx is
// canceled. Each release is stamped added = now, and published = now when
// unset, so polling clients see it as a new arrival.
func (s *Server) Drip(ctx context.Context, held []model.Item, interval time.Duration, now func() time.Time) {
	if len(held) == 0 || interval <= 0 {
		return
	}
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for len(held) > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		it := held[0]
		held = held[1:]
		t := now().Unix()
		it.Added = t
		if it.Published == 0 {
			it.Published = t
		}

		if _, err := s.store.SaveItems(ctx, []model.Item{it}); err != nil {
			logging.Warn("drip insert failed", "id", it.ID, "err", err)
			continue
		}
		logging.Info("drip released", "id", it.ID, "feed", it.Feed, "remaining", len(held))
		s.events.Emit(otel.Event{Kind: otel.KindDrip, Comp: comp, Count: len(held), Msg: it.ID})
	}
}
