package permissions

import "testing"

func TestUnaryPermissionClone(t *testing.T) {
	u := newUnaryPermission[Path](Prompt)
	u.GrantedList["/tmp"] = struct{}{}

	clone := u.clone()
	clone.GrantedList["/var"] = struct{}{}

	if _, ok := u.GrantedList["/var"]; ok {
		t.Error("mutating the clone's granted list should not affect the original")
	}
	if _, ok := clone.GrantedList["/tmp"]; !ok {
		t.Error("clone should carry over the original's entries")
	}
}

func TestUnaryPermissionDominates(t *testing.T) {
	parent := newUnaryPermission[Path](Granted)
	child := newUnaryPermission[Path](Prompt)
	child.GrantedList["/tmp"] = struct{}{}

	if !parent.dominates(child) {
		t.Error("a globally Granted parent should dominate any narrower child")
	}

	parent2 := newUnaryPermission[Path](Prompt)
	parent2.GrantedList["/tmp"] = struct{}{}
	child2 := newUnaryPermission[Path](Prompt)
	child2.GrantedList["/tmp"] = struct{}{}
	child2.GrantedList["/var"] = struct{}{}

	if parent2.dominates(child2) {
		t.Error("child granting /var beyond parent's allowlist should not be dominated")
	}

	child3 := newUnaryPermission[Path](Prompt)
	child3.GrantedList["/tmp"] = struct{}{}
	if !parent2.dominates(child3) {
		t.Error("child's granted list being a subset of parent's should dominate")
	}
}

func TestUnaryPermissionDominatesDeniedList(t *testing.T) {
	parent := newUnaryPermission[Path](Prompt)
	parent.DeniedList["/etc"] = struct{}{}

	child := newUnaryPermission[Path](Prompt)
	if parent.dominates(child) {
		t.Error("child must carry forward every parent denial to be dominated")
	}

	child.DeniedList["/etc"] = struct{}{}
	child.DeniedList["/var"] = struct{}{}
	if !parent.dominates(child) {
		t.Error("child denying a superset of parent's denials should be dominated")
	}
}

func TestUnaryPermissionJSONRoundTrip(t *testing.T) {
	u := newUnaryPermission[NetKey](Prompt)
	u.GrantedList["api.example.com"] = struct{}{}
	u.DeniedList["evil.example.com"] = struct{}{}

	data, err := u.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var round UnaryPermission[NetKey]
	if err := round.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if !unaryEqual(u, round) {
		t.Errorf("round trip lost information: %s", data)
	}
}

func TestUnaryPermissionUnmarshalRejectsUnknownFields(t *testing.T) {
	var u UnaryPermission[Path]
	err := u.UnmarshalJSON([]byte(`{"global_state":"Prompt","granted_list":[],"denied_list":[],"extra":1}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestIsSupersetAndSubset(t *testing.T) {
	super := map[Path]struct{}{"/tmp": {}, "/var": {}}
	sub := map[Path]struct{}{"/tmp": {}}

	if !isSuperset(super, sub) {
		t.Error("expected super to contain every element of sub")
	}
	if isSuperset(sub, super) {
		t.Error("sub should not be a superset of super")
	}
	if !isSubset(sub, super) {
		t.Error("isSubset(sub, super) should mirror isSuperset(super, sub)")
	}
}
