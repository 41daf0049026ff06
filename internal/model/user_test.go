package model

import "testing"

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleViewer, true},
		{Role(""), false},
		{Role("superadmin"), false},
		{Role("Admin"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestSessionPayload_IsAdmin(t *testing.T) {
	admin := SessionPayload{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("IsAdmin() = false for admin")
	}
	viewer := SessionPayload{Role: RoleViewer}
	if viewer.IsAdmin() {
		t.Error("IsAdmin() = true for viewer")
	}
}
