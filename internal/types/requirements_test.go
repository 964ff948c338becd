package types

import "testing"

func TestNewRequirementsRejectsBadPathRegex(t *testing.T) {
	_, err := NewRequirements(&RequirementsDoc{PathMatches: []string{"("}})
	if err == nil {
		t.Fatalf("expected an error compiling an invalid path_matches regex")
	}
}

func TestNewRequirementsRejectsBadHeaderKeyRegex(t *testing.T) {
	_, err := NewRequirements(&RequirementsDoc{
		HeaderMatches: []KeyRegex{{KeyRegex: "["}},
	})
	if err == nil {
		t.Fatalf("expected an error compiling an invalid header_matches key_regex")
	}
}

func TestNewRequirementsRejectsBadJSONBody(t *testing.T) {
	_, err := NewRequirements(&RequirementsDoc{JSONBody: []byte("{not json")})
	if err == nil {
		t.Fatalf("expected an error decoding invalid json_body")
	}
}

func TestNewRequirementsEmptyEqIsDontCare(t *testing.T) {
	r, err := NewRequirements(&RequirementsDoc{})
	if err != nil {
		t.Fatalf("NewRequirements: %v", err)
	}
	if r.Path.Eq != nil {
		t.Fatalf("expected a blank path to compile to a nil Eq (don't-care), got %q", *r.Path.Eq)
	}
}

func TestNewRequirementsCompilesEqAndRegex(t *testing.T) {
	r, err := NewRequirements(&RequirementsDoc{
		Path:        "/users/42",
		PathMatches: []string{`^/users/\d+$`},
	})
	if err != nil {
		t.Fatalf("NewRequirements: %v", err)
	}
	if r.Path.Eq == nil || *r.Path.Eq != "/users/42" {
		t.Fatalf("expected path eq to be compiled, got %+v", r.Path.Eq)
	}
	if len(r.Path.MatchesRe) != 1 || !r.Path.MatchesRe[0].MatchString("/users/42") {
		t.Fatalf("expected path_matches regex to compile and match")
	}
}
