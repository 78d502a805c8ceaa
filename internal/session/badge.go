package session

import "strconv"

// BadgeCap is the largest count Badge prints verbatim.
const BadgeCap = 99

// Badge formats the unread count for the header: empty at zero, the
// decimal count up to BadgeCap, "99+" beyond. Negative counts render empty.
func Badge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > BadgeCap:
		return strconv.Itoa(BadgeCap) + "+"
	default:
		return strconv.Itoa(n)
	}
}

// Title formats the window title as "base (n)". Unlike Badge it never
// saturates, so 150 unread items read "base (150)".
func Title(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + " (" + strconv.Itoa(n) + ")"
}
