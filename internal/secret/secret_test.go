// Package secret 凭证加密单元测试
package secret

import (
	"encoding/base64"
	"testing"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

// ========== NewCipher 测试 ==========

func TestNewCipher_RandomKey(t *testing.T) {
	c, err := NewCipher("")
	if err != nil {
		t.Fatalf("NewCipher(\"\") error: %v", err)
	}
	if c == nil {
		t.Fatal("NewCipher(\"\") returned nil")
	}
}

func TestNewCipher_InvalidKey(t *testing.T) {
	if _, err := NewCipher("not-base64!!!"); err == nil {
		t.Error("invalid base64 key should fail")
	}

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := NewCipher(short); err == nil {
		t.Error("short key should fail")
	}
}

// ========== Encrypt / Decrypt 测试 ==========

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("NewCipher() error: %v", err)
	}

	enc, err := c.Encrypt("sk-secret-value")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if enc == "sk-secret-value" {
		t.Error("ciphertext should differ from plaintext")
	}

	plain, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if plain != "sk-secret-value" {
		t.Errorf("Decrypt() = %q, want 'sk-secret-value'", plain)
	}
}

func TestCipher_EmptyPassthrough(t *testing.T) {
	c, _ := NewCipher(testKey())

	enc, err := c.Encrypt("")
	if err != nil || enc != "" {
		t.Errorf("Encrypt(\"\") = %q, %v, want empty and nil", enc, err)
	}

	plain, err := c.Decrypt("")
	if err != nil || plain != "" {
		t.Errorf("Decrypt(\"\") = %q, %v, want empty and nil", plain, err)
	}
}

func TestCipher_NonceUniqueness(t *testing.T) {
	c, _ := NewCipher(testKey())

	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if a == b {
		t.Error("two encryptions of the same input should differ")
	}
}

func TestCipher_DecryptGarbage(t *testing.T) {
	c, _ := NewCipher(testKey())

	if _, err := c.Decrypt("%%%not base64%%%"); err == nil {
		t.Error("invalid base64 ciphertext should fail")
	}
	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString([]byte("xy"))); err == nil {
		t.Error("too-short ciphertext should fail")
	}
}

func TestCipher_WrongKey(t *testing.T) {
	a, _ := NewCipher("")
	b, _ := NewCipher("")

	enc, _ := a.Encrypt("secret")
	if _, err := b.Decrypt(enc); err == nil {
		t.Error("decrypting with a different key should fail")
	}
}
