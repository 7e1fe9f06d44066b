package vault

import (
	"strings"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return key
}

func TestNewAEADRejectsBadKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33} {
		if _, err := NewAEAD(make([]byte, size)); err != ErrKeySize {
			t.Fatalf("key size %d: expected ErrKeySize, got %v", size, err)
		}
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	v, err := NewAEAD(testKey())
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	sealed, err := v.Seal("135790")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if strings.Contains(sealed, "135790") {
		t.Fatal("sealed blob must not contain the plaintext")
	}

	plain, err := v.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if plain != "135790" {
		t.Fatalf("round trip = %q", plain)
	}
}

func TestSealUsesFreshNonces(t *testing.T) {
	v, err := NewAEAD(testKey())
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	a, err := v.Seal("135790")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	b, err := v.Seal("135790")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if a == b {
		t.Fatal("two seals of the same plaintext must differ")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	v, err := NewAEAD(testKey())
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	for _, blob := range []string{"", "!!!", "c2hvcnQ", strings.Repeat("A", 80)} {
		if _, err := v.Open(blob); err != ErrSealInvalid {
			t.Fatalf("Open(%q): expected ErrSealInvalid, got %v", blob, err)
		}
	}
}

func TestOpenRejectsTamperedBlob(t *testing.T) {
	v, err := NewAEAD(testKey())
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}
	sealed, err := v.Seal("135790")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	tampered := []byte(sealed)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}
	if _, err := v.Open(string(tampered)); err != ErrSealInvalid {
		t.Fatalf("expected ErrSealInvalid, got %v", err)
	}
}

func TestWrongKeyCannotOpen(t *testing.T) {
	v1, err := NewAEAD(testKey())
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}
	other := testKey()
	other[0] ^= 0xff
	v2, err := NewAEAD(other)
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	sealed, err := v1.Seal("135790")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := v2.Open(sealed); err != ErrSealInvalid {
		t.Fatalf("expected ErrSealInvalid, got %v", err)
	}
}
