package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	live := []Status{StatusToDo, StatusInProgress, StatusDone}

	// The live states reorder freely.
	for _, from := range live {
		for _, to := range live {
			if !from.CanTransition(to) {
				t.Errorf("CanTransition(%v, %v) = false, want true", from, to)
			}
		}
	}

	// Nothing enters or leaves Archived through an update.
	for _, s := range live {
		if s.CanTransition(StatusArchived) {
			t.Errorf("CanTransition(%v, archived) = true, want false", s)
		}
		if StatusArchived.CanTransition(s) {
			t.Errorf("CanTransition(archived, %v) = true, want false", s)
		}
	}

	if StatusToDo.CanTransition(Status(99)) {
		t.Error("transition to invalid status allowed")
	}
}

func TestParseStatus(t *testing.T) {
	for s, name := range statusNames {
		parsed, ok := ParseStatus(name)
		if !ok || parsed != s {
			t.Errorf("ParseStatus(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := ParseStatus("cancelled"); ok {
		t.Error("ParseStatus accepted unknown name")
	}
}

func TestParsePriority(t *testing.T) {
	for p, name := range priorityNames {
		parsed, ok := ParsePriority(name)
		if !ok || parsed != p {
			t.Errorf("ParsePriority(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("ParsePriority accepted unknown name")
	}
}

func TestParseRole(t *testing.T) {
	for r, name := range roleNames {
		parsed, ok := ParseRole(name)
		if !ok || parsed != r {
			t.Errorf("ParseRole(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := ParseRole("admin"); ok {
		t.Error("ParseRole accepted unknown name")
	}
	if RoleOwner.String() != "owner" || Role(7).String() != "unknown" {
		t.Error("unexpected role names")
	}
}
