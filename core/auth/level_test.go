package auth

import "testing"

func TestLevelOrdering(t *testing.T) {
	if !Admin.Allows(Mod) || !Mod.Allows(User) || !User.Allows(Guest) {
		t.Fatal("higher levels must allow lower minimums")
	}
	if Guest.Allows(User) {
		t.Fatal("guest must not satisfy user minimum")
	}
	if User.Allows(Mod) {
		t.Fatal("user must not satisfy mod minimum")
	}
	if !Mod.Allows(Mod) {
		t.Fatal("a level must satisfy itself")
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, level := range []Level{Guest, User, Mod, Admin} {
		parsed, err := ParseLevel(level.String())
		if err != nil {
			t.Fatalf("parse %s: %v", level, err)
		}
		if parsed != level {
			t.Fatalf("round trip %s -> %s", level, parsed)
		}
	}
	if _, err := ParseLevel("owner"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestMatchPasswordPrefersStrongest(t *testing.T) {
	s := &Store{}
	s.passwords.UserPassword = "shared"
	s.passwords.ModPassword = "shared"
	s.passwords.AdminPassword = "top"

	if level, ok := s.matchPassword("shared"); !ok || level != Mod {
		t.Fatalf("shared password resolved to %v (ok=%v), expected mod", level, ok)
	}
	if level, ok := s.matchPassword("top"); !ok || level != Admin {
		t.Fatalf("admin password resolved to %v (ok=%v)", level, ok)
	}
	if _, ok := s.matchPassword("wrong"); ok {
		t.Fatal("unexpected match for wrong password")
	}
	if _, ok := s.matchPassword(""); ok {
		t.Fatal("empty password must never match")
	}
}
