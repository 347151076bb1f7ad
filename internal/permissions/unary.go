package permissions

import (
	"bytes"
	"encoding/json"
	"sort"
)

// UnaryPermission represents authority over a resource family parameterized
// by key type T — an absolute path, or a host-or-host:port string. Both
// lists are sets: insertion order is irrelevant and duplicates collapse.
// T is constrained to string-like types so the set contents serialize
// directly to the JSON string arrays the wire format (§6) requires.
type UnaryPermission[T ~string] struct {
	GlobalState State          `json:"global_state"`
	GrantedList map[T]struct{} `json:"-"`
	DeniedList  map[T]struct{} `json:"-"`
}

// unaryPermissionWire is the JSON-visible shape of UnaryPermission: sets
// render as sorted string slices for deterministic output.
type unaryPermissionWire struct {
	GlobalState State    `json:"global_state"`
	GrantedList []string `json:"granted_list"`
	DeniedList  []string `json:"denied_list"`
}

func sortedKeys[T ~string](set map[T]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the permission as {"global_state","granted_list","denied_list"}.
func (u UnaryPermission[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(unaryPermissionWire{
		GlobalState: u.GlobalState,
		GrantedList: sortedKeys(u.GrantedList),
		DeniedList:  sortedKeys(u.DeniedList),
	})
}

// UnmarshalJSON rejects unknown fields, per §6, and defaults missing list
// fields to empty and a missing global_state to Prompt. The State zero value
// is Granted, so the wire value is pre-filled with Prompt before decoding.
func (u *UnaryPermission[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	wire := unaryPermissionWire{GlobalState: Prompt}
	if err := dec.Decode(&wire); err != nil {
		return &Error{Kind: InvalidArgument, Message: "invalid permission object: " + err.Error()}
	}
	u.GlobalState = wire.GlobalState
	u.GrantedList = make(map[T]struct{}, len(wire.GrantedList))
	for _, v := range wire.GrantedList {
		u.GrantedList[T(v)] = struct{}{}
	}
	u.DeniedList = make(map[T]struct{}, len(wire.DeniedList))
	for _, v := range wire.DeniedList {
		u.DeniedList[T(v)] = struct{}{}
	}
	return nil
}

// newUnaryPermission builds an empty UnaryPermission with the given default.
func newUnaryPermission[T ~string](global State) UnaryPermission[T] {
	return UnaryPermission[T]{
		GlobalState: global,
		GrantedList: make(map[T]struct{}),
		DeniedList:  make(map[T]struct{}),
	}
}

// clone returns a deep copy so callers (notably Fork) never share mutable
// set state between parent and child.
func (u UnaryPermission[T]) clone() UnaryPermission[T] {
	out := newUnaryPermission[T](u.GlobalState)
	for k := range u.GrantedList {
		out.GrantedList[k] = struct{}{}
	}
	for k := range u.DeniedList {
		out.DeniedList[k] = struct{}{}
	}
	return out
}

// isSuperset reports whether superset contains every element of subset —
// used by the fork predicate, which requires
// child.granted_list ⊆ parent.granted_list.
func isSuperset[T comparable](superset, subset map[T]struct{}) bool {
	for k := range subset {
		if _, ok := superset[k]; !ok {
			return false
		}
	}
	return true
}

// isSubset is isSuperset with the arguments flipped, for readability at
// call sites that check child.denied_list ⊇ parent.denied_list.
func isSubset[T comparable](subset, superset map[T]struct{}) bool {
	return isSuperset(superset, subset)
}

// dominates implements the fork non-escalation predicate for a unary
// permission (§4.4): parent ⊒ child iff the scalar predicate holds on
// GlobalState, child's granted list is contained in parent's, and child's
// denied list contains parent's.
func (parent UnaryPermission[T]) dominates(child UnaryPermission[T]) bool {
	if !parent.GlobalState.dominates(child.GlobalState) {
		return false
	}
	if !isSuperset(parent.GrantedList, child.GrantedList) {
		return false
	}
	if !isSubset(parent.DeniedList, child.DeniedList) {
		return false
	}
	return true
}
