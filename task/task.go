// Package task defines the unit of crawl work and its status taxonomy.
package task

// SeedSentinel is the FirstFoundOn value used for the seed Task, which
// by definition was not discovered on any page.
const SeedSentinel = "target_url"

// Status classifies the outcome of fetching a Task's URL.
type Status int

const (
	NotVisited Status = iota
	Visited
	NoSuchDomain
	NoSuchPage
	HTTPInsteadOfHTTPS
	OtherError
)

// String renders the Status the way reports display it: lowercase,
// matching the original crawler's link.status.name.lower().
func (s Status) String() string {
	switch s {
	case NotVisited:
		return "not_visited"
	case Visited:
		return "visited"
	case NoSuchDomain:
		return "no_such_domain"
	case NoSuchPage:
		return "no_such_page"
	case HTTPInsteadOfHTTPS:
		return "http_instead_of_https"
	case OtherError:
		return "other_error"
	default:
		return "unknown"
	}
}

// IsBroken reports whether a Status belongs in the broken-links
// registry (as opposed to the fetch-error registry).
func (s Status) IsBroken() bool {
	switch s {
	case NoSuchDomain, NoSuchPage, HTTPInsteadOfHTTPS:
		return true
	default:
		return false
	}
}

// Task is a discovered link with depth and provenance. Identity is
// the URL alone: two Tasks are equal iff their URL fields are equal.
type Task struct {
	URL          string
	Depth        int
	FirstFoundOn string
	Status       Status
	Err          string
}

// Key returns the Task's identity for use in a Keyed container
// (queue.DedupQueue). It is the canonical URL, nothing else.
func (t Task) Key() string { return t.URL }

// Seed builds the Task for a crawl's starting URL.
func Seed(canonicalURL string) Task {
	return Task{
		URL:          canonicalURL,
		Depth:        0,
		FirstFoundOn: SeedSentinel,
		Status:       NotVisited,
	}
}

// Child builds a discovered Task with the given depth, inheriting its
// provenance from the page it was found on.
func Child(canonicalURL string, depth int, foundOn string) Task {
	return Task{
		URL:          canonicalURL,
		Depth:        depth,
		FirstFoundOn: foundOn,
		Status:       NotVisited,
	}
}

// WithStatus returns a copy of t stamped with the given terminal
// status and diagnostic message.
func (t Task) WithStatus(status Status, errMsg string) Task {
	t.Status = status
	t.Err = errMsg
	return t
}
