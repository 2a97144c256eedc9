package migration

// State is the remote state of a migration attempt.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Remote is the outcome of a migration attempt on the remote side, e.g. the
// pull request it opened.
type Remote struct {
	State State  `json:"state"`
	Link  string `json:"link,omitempty"`
}

// Record is one "I have attempted migration X" entry on a node.
type Record struct {
	UID    UID     `json:"data"`
	Remote *Remote `json:"remote"`
}

// Closed reports whether the attempt is merged or otherwise finished.
func (r Record) Closed() bool {
	return r.Remote != nil && r.Remote.State == StateClosed
}

// Open reports whether the attempt is still pending on the remote side.
func (r Record) Open() bool {
	return r.Remote != nil && r.Remote.State == StateOpen
}

// Malformed reports whether the record lacks the remote data written after a
// successful attempt. Such records mean a previous run died between mutation
// and bookkeeping.
func (r Record) Malformed() bool {
	return r.Remote == nil || r.Remote.State == ""
}

// Records is the append-only migration history of a node.
type Records []Record

// Find returns the most recent record for uid.
func (rs Records) Find(uid UID) (Record, bool) {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].UID == uid {
			return rs[i], true
		}
	}
	return Record{}, false
}

// Has reports whether any record matches uid.
func (rs Records) Has(uid UID) bool {
	_, ok := rs.Find(uid)
	return ok
}

// Clone returns a deep copy.
func (rs Records) Clone() Records {
	if rs == nil {
		return nil
	}
	out := make(Records, len(rs))
	for i, r := range rs {
		out[i] = r
		if r.Remote != nil {
			remote := *r.Remote
			out[i].Remote = &remote
		}
	}
	return out
}
