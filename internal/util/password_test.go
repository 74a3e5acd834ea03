package util

import (
	"bytes"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Short1a", false},
		{"alllowercase1x", false},
		{"ALLUPPERCASE1X", false},
		{"NoDigitsHereAtAll", false},
		{"GoodPass123", true},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.valid && err != nil {
			t.Fatalf("expected %q to be valid, got %v", tc.password, err)
		}
		if !tc.valid && err == nil {
			t.Fatalf("expected %q to be rejected", tc.password)
		}
	}
}

func TestDeriveAndVerifyPassword(t *testing.T) {
	hash, salt, err := DerivePassword("GoodPass123")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	if len(hash) == 0 || len(salt) == 0 {
		t.Fatal("expected non-empty hash and salt")
	}

	if !VerifyPassword("GoodPass123", salt, hash) {
		t.Fatal("correct password should verify")
	}
	if VerifyPassword("WrongPass123", salt, hash) {
		t.Fatal("wrong password should not verify")
	}
	if VerifyPassword("", salt, hash) {
		t.Fatal("empty password should not verify")
	}
}

func TestDerivePasswordUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := DerivePassword("GoodPass123")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	hash2, salt2, err := DerivePassword("GoodPass123")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Fatal("expected different salts per derivation")
	}
	if bytes.Equal(hash1, hash2) {
		t.Fatal("expected different hashes with different salts")
	}
}
