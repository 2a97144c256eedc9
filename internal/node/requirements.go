package node

import (
	"encoding/json"

	"github.com/juju/collections/set"
)

// Requirements groups dependency names by the phase that needs them.
type Requirements struct {
	Build set.Strings
	Host  set.Strings
	Run   set.Strings
	Test  set.Strings
}

// NewRequirements returns empty, writable sets.
func NewRequirements() Requirements {
	return Requirements{
		Build: set.NewStrings(),
		Host:  set.NewStrings(),
		Run:   set.NewStrings(),
		Test:  set.NewStrings(),
	}
}

// Relevant is the host, run and test closure used to decide whether a
// dependency edge matters for migration order.
func (r Requirements) Relevant() set.Strings {
	return orEmpty(r.Host).Union(orEmpty(r.Run)).Union(orEmpty(r.Test))
}

// All returns every requirement regardless of phase.
func (r Requirements) All() set.Strings {
	return r.Relevant().Union(orEmpty(r.Build))
}

// Clone returns independent copies of every set.
func (r Requirements) Clone() Requirements {
	return Requirements{
		Build: set.NewStrings(orEmpty(r.Build).Values()...),
		Host:  set.NewStrings(orEmpty(r.Host).Values()...),
		Run:   set.NewStrings(orEmpty(r.Run).Values()...),
		Test:  set.NewStrings(orEmpty(r.Test).Values()...),
	}
}

func orEmpty(s set.Strings) set.Strings {
	if s == nil {
		return set.NewStrings()
	}
	return s
}

type requirementsJSON struct {
	Build []string `json:"build,omitempty"`
	Host  []string `json:"host,omitempty"`
	Run   []string `json:"run,omitempty"`
	Test  []string `json:"test,omitempty"`
}

// MarshalJSON writes each set as a sorted list.
func (r Requirements) MarshalJSON() ([]byte, error) {
	return json.Marshal(requirementsJSON{
		Build: orEmpty(r.Build).SortedValues(),
		Host:  orEmpty(r.Host).SortedValues(),
		Run:   orEmpty(r.Run).SortedValues(),
		Test:  orEmpty(r.Test).SortedValues(),
	})
}

// UnmarshalJSON reads lists, dropping duplicates.
func (r *Requirements) UnmarshalJSON(data []byte) error {
	var raw requirementsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Requirements{
		Build: set.NewStrings(raw.Build...),
		Host:  set.NewStrings(raw.Host...),
		Run:   set.NewStrings(raw.Run...),
		Test:  set.NewStrings(raw.Test...),
	}
	return nil
}
