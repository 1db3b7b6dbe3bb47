package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if h == "correct horse" || !strings.HasPrefix(h, "$2") {
		t.Fatalf("not a bcrypt hash: %q", h)
	}
	if !CheckPassword("correct horse", h) {
		t.Error("valid password rejected")
	}
	if CheckPassword("battery staple", h) {
		t.Error("wrong password accepted")
	}
}

func TestHashTooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", 73)); err == nil {
		t.Fatal("bcrypt should reject passwords over 72 bytes")
	}
}
