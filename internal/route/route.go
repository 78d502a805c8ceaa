// Package route converts between scopes and hash-style route descriptors
// such as "#/feed/<id>".
package route

import (
	"strings"

	"github.com/abelbrown/minifeed/internal/model"
)

// Parse reads "#/all", "#/group/<id>" or "#/feed/<id>". The leading '#'
// is optional. Anything it does not understand, including a group or
// feed route with no ID, resolves to the all scope.
func Parse(s string) model.Scope {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "/")

	kind, id, _ := strings.Cut(s, "/")
	id = strings.Trim(id, "/")
	if id == "" {
		return model.All()
	}

	switch kind {
	case "group":
		return model.GroupScope(id)
	case "feed":
		return model.FeedScope(id)
	default:
		return model.All()
	}
}

// Format is the inverse of Parse.
func Format(s model.Scope) string {
	if s.Kind == model.ScopeAll || s.ID == "" {
		return "#/all"
	}
	return "#/" + s.Kind.String() + "/" + s.ID
}
