// Package ui provides the Bubble Tea TUI for minifeed.
package ui

import (
	"time"

	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/session"
)

// CatalogLoaded is sent once groups and feeds are known.
type CatalogLoaded struct {
	Catalog *model.Catalog
}

// CatalogFailed is sent when loading the catalog failed. The coordinator
// retries on its own.
type CatalogFailed struct {
	Err error
}

// PollTick asks the session for an incremental fetch.
type PollTick struct {
	At time.Time
}

// ItemsFetched carries the completion of a session request.
type ItemsFetched struct {
	Result session.Result
}
