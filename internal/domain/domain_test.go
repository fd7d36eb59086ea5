package domain

import "testing"

func TestContentTypePrice(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want int64
	}{
		{ContentInterview, 5},
		{ContentCorrection, 10},
		{ContentType("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			if got := tt.ct.Price(); got != tt.want {
				t.Errorf("Price(%q) = %d, want %d", tt.ct, got, tt.want)
			}
		})
	}
}

func TestContentTypeValid(t *testing.T) {
	if !ContentInterview.Valid() {
		t.Error("interview should be valid")
	}
	if !ContentCorrection.Valid() {
		t.Error("correction should be valid")
	}
	if ContentType("essay").Valid() {
		t.Error("unknown content type should be invalid")
	}
}

func TestRoleCanModerate(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleMember, false},
		{RoleModerator, true},
		{RoleAdmin, true},
		{Role(""), false},
	}

	for _, tt := range tests {
		if got := tt.role.CanModerate(); got != tt.want {
			t.Errorf("CanModerate(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleMember, RoleModerator, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("superuser").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestSelectionReward(t *testing.T) {
	// The reward is a fixed platform constant, not user-chosen.
	if SelectionReward != 10 {
		t.Errorf("SelectionReward = %d, want 10", SelectionReward)
	}
}

func TestPostVisibleTo(t *testing.T) {
	post := &Post{AuthorID: "alice", Status: StatusPending}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"author sees own pending post", Actor{ID: "alice", Role: RoleMember}, true},
		{"stranger blocked from pending post", Actor{ID: "bob", Role: RoleMember}, false},
		{"moderator sees pending post", Actor{ID: "mod", Role: RoleModerator}, true},
		{"admin sees pending post", Actor{ID: "root", Role: RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := post.VisibleTo(tt.actor); got != tt.want {
				t.Errorf("VisibleTo(%s) = %v, want %v", tt.actor.ID, got, tt.want)
			}
		})
	}

	approved := &Post{AuthorID: "alice", Status: StatusApproved}
	if !approved.VisibleTo(Actor{ID: "bob", Role: RoleMember}) {
		t.Error("approved post should be visible to everyone")
	}
	rejected := &Post{AuthorID: "alice", Status: StatusRejected}
	if rejected.VisibleTo(Actor{ID: "bob", Role: RoleMember}) {
		t.Error("rejected post should be hidden from strangers")
	}
}
