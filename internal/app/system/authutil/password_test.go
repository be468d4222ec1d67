package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		// Valid passwords
		{"valid minimum", "abc123xy", nil},
		{"valid medium", "mySecurePassword", nil},
		{"valid at byte limit", strings.Repeat("a", 72), nil},
		{"valid with special chars", "P@ssw0rd!123", nil},
		{"valid with spaces", "my secret password", nil},

		// Too short
		{"too short 7 chars", "abcdefg", ErrPasswordTooShort},
		{"too short empty", "", ErrPasswordTooShort},

		// Too long
		{"too long", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"multibyte over limit", strings.Repeat("é", 37), ErrPasswordTooLong},

		// Common passwords
		{"common password", "password", ErrPasswordCommon},
		{"common PASSWORD uppercase", "PASSWORD", ErrPasswordCommon},
		{"common portfolio", "Portfolio", ErrPasswordCommon},
		{"common admin123", "admin123", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	password := "mySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("HashPassword() = %q", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() hash does not appear to be bcrypt: %s", hash)
	}

	// Same password should produce different hashes (bcrypt uses salt)
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() second call error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes for same password")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"wrong password", "wrongPassword456", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", password, "", false},
		{"invalid hash format", password, "not-a-valid-hash", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword(%q, hash) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestBurnCompare(t *testing.T) {
	// Must not panic and must be callable repeatedly.
	BurnCompare("anything")
	BurnCompare("")
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Example.COM "); got != "admin@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@example.com", true},
		{"first.last@sub.example.co", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"a@b@example.com", false},
		{"a@example", false},
		{"a@.com", false},
		{"a@example.", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
