// Package session holds the in-memory conversation history of a single
// dispatch session. History is append-only and is discarded when the process
// exits; durable records live in pkg/storage.
package session

// DefaultWindow is the number of trailing turns fed back as context.
const DefaultWindow = 10

// Turn is one query and the response it produced.
type Turn struct {
	Query    string
	Response string
}

// History is the ordered sequence of turns for a session.
// It is owned by the session loop and is not safe for concurrent use.
type History struct {
	turns []Turn
}

func NewHistory() *History {
	return &History{}
}

// Append records a turn at the end of the history.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

// Len returns the number of turns recorded so far.
func (h *History) Len() int {
	return len(h.turns)
}

// Window returns a copy of the last n turns, oldest first. A non-positive n
// returns nil.
func (h *History) Window(n int) []Turn {
	if n <= 0 || len(h.turns) == 0 {
		return nil
	}

	start := max(len(h.turns)-n, 0)

	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}
