package util

import "testing"

func TestHashPasswordVerifies(t *testing.T) {
	h, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "password" {
		t.Fatal("expected hash to differ from the plain password")
	}
	if !VerifyPassword(h, "password") {
		t.Fatal("expected password to verify against its hash")
	}
	if VerifyPassword(h, "wrong") {
		t.Fatal("expected wrong password to be rejected")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, _ := HashPassword("password")
	h2, _ := HashPassword("password")
	if h1 == h2 {
		t.Fatalf("expected different salts to give different hashes, both %s", h1)
	}
}
