package session

import (
	"time"

	"github.com/abelbrown/minifeed/internal/merge"
	"github.com/abelbrown/minifeed/internal/model"
)

// Request describes one fetch the caller must perform against the remote
// item source. The Scope and Epoch fields are the tag Apply checks the
// completion against.
type Request struct {
	ID    string
	Mode  merge.Mode
	Scope model.Scope
	Epoch uint64
	Since int64
	After string
	Limit int
}

// Query converts the request to remote query parameters.
func (r Request) Query() model.Query {
	return model.Query{
		Scope: r.Scope,
		Since: r.Since,
		After: r.After,
		Limit: r.Limit,
	}
}

// Result is the completion of a Request.
type Result struct {
	Request Request
	Items   []model.Item
	Err     error
	Dur     time.Duration
}

// Outcome reports what Apply did with a Result.
type Outcome int

const (
	// Applied means the batch went through the merge engine.
	Applied Outcome = iota
	// Stale means the result belonged to a superseded scope or epoch.
	Stale
	// Failed means the fetch returned an error and was abandoned.
	Failed
	// Skipped means a poll landed before the scope's initial load.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Stale:
		return "stale"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}
