package model

import "testing"

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Role
	}{
		{"admin", "ADMIN", RoleAdmin},
		{"user", "USER", RoleUser},
		{"blank defaults to user", "", RoleUser},
		{"unknown defaults to user", "SUPERUSER", RoleUser},
		{"lowercase is not admin", "admin", RoleUser},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseRole(tt.in); got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRole_CanAccessUnowned(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.CanAccessUnowned() {
		t.Error("admin should be able to access unowned records")
	}
	if RoleUser.CanAccessUnowned() {
		t.Error("regular user should not be able to access unowned records")
	}
}

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	if !RoleUser.IsValid() || !RoleAdmin.IsValid() {
		t.Error("known roles should be valid")
	}
	if Role("ROOT").IsValid() {
		t.Error("unknown role should not be valid")
	}
}
