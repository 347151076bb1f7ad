// Package permissions implements the capability-based permission engine that
// guards every sensitive host operation a guest script can attempt: file
// reads and writes, network dials, environment variable access, subprocess
// execution, native plugin loading, and high-resolution timers.
//
// A Permissions value is constructed once from parsed CLI flags, shared by
// reference with every guest operation that needs to check authority, and
// mutated only through its Request* and Revoke* methods. Query and Check
// methods are read-only, take a shared read lock and are safe for concurrent
// use; Request* and Revoke* take the value's exclusive write lock for the
// duration of one verb call, so mutations are serialized internally.
package permissions

import "encoding/json"

// State is a tri-valued authority tag. The three values form a total order
// for escalation reasoning: Granted is the least restrictive, Denied the
// most. The zero value is Granted, so every constructor and decoder in this
// package sets Prompt explicitly for a State that hasn't been set.
type State int

const (
	// Granted means the operation proceeds without asking anyone.
	Granted State = iota
	// Prompt means the operator must be asked interactively.
	Prompt
	// Denied means the operation is refused outright.
	Denied
)

// String renders the state using the same three labels the wire format
// uses, so State can be used directly in fmt verbs and error messages.
func (s State) String() string {
	switch s {
	case Granted:
		return "Granted"
	case Denied:
		return "Denied"
	default:
		return "Prompt"
	}
}

// StateFromBool maps a boolean flag (e.g. --allow-read with no value) to a
// State. true becomes Granted, false becomes Prompt — a bare false flag
// never implies Denied, since Denied is reserved for explicit interactive
// or configured refusals.
func StateFromBool(allowed bool) State {
	if allowed {
		return Granted
	}
	return Prompt
}

// MarshalJSON renders State as one of "Granted", "Prompt", "Denied".
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the three string labels; any other value leaves the
// state at its default (Prompt) only if the field is entirely absent —
// an unrecognized string is an error.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "Granted":
		*s = Granted
	case "Prompt", "":
		*s = Prompt
	case "Denied":
		*s = Denied
	default:
		return &Error{Kind: InvalidArgument, Message: "unknown permission state: " + str}
	}
	return nil
}

// dominates reports whether parent's authority is at least as strict as
// child's — i.e. whether a fork from parent to child would NOT escalate.
// This is the pointwise partial-order check from §4.4:
//
//	FAIL if parent == Denied and child != Denied
//	FAIL if parent == Prompt and child == Granted
//	OK otherwise
func (parent State) dominates(child State) bool {
	if parent == Denied && child != Denied {
		return false
	}
	if parent == Prompt && child == Granted {
		return false
	}
	return true
}
