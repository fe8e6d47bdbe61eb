package secret

import (
	"bytes"
	"errors"
	"testing"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

var testKey = []byte("01234567890123456789012345678901")

func TestSealer_TokenRoundTrip(t *testing.T) {
	sealer, err := NewSealer(testKey)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	original := &domain.Token{UserID: "user-1", AuthToken: "auth-abc"}

	blob, err := sealer.SealToken("https://chat.example.com", original)
	if err != nil {
		t.Fatalf("SealToken: %v", err)
	}

	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != sealVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], sealVersion)
	}
	if bytes.Contains(blob, []byte("auth-abc")) {
		t.Error("blob contains the plaintext token")
	}

	got, err := sealer.OpenToken("https://chat.example.com", blob)
	if err != nil {
		t.Fatalf("OpenToken: %v", err)
	}
	if *got != *original {
		t.Errorf("got %+v, want %+v", got, original)
	}
}

func TestSealer_BoundToServerURL(t *testing.T) {
	sealer, _ := NewSealer(testKey)

	blob, err := sealer.SealToken("https://a.example.com", &domain.Token{UserID: "u", AuthToken: "a"})
	if err != nil {
		t.Fatalf("SealToken: %v", err)
	}

	if _, err := sealer.OpenToken("https://b.example.com", blob); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("expected ErrOpenFailed, got %v", err)
	}
}

func TestSealer_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte("short")},
		{"too long", []byte("0123456789012345678901234567890123456789")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSealer(tt.key)
			if !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("expected ErrInvalidKeySize, got %v", err)
			}
		})
	}
}

func TestSealer_OpenInvalidBlob(t *testing.T) {
	sealer, _ := NewSealer(testKey)

	if _, err := sealer.Open([]byte{0x01, 0x02}, nil); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("short blob: expected ErrInvalidBlobSize, got %v", err)
	}

	blob, _ := sealer.Seal([]byte("payload"), nil)
	blob[0] = 0x7f
	if _, err := sealer.Open(blob, nil); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("bad version: expected ErrUnsupportedVersion, got %v", err)
	}

	blob, _ = sealer.Seal([]byte("payload"), nil)
	blob[len(blob)-1] ^= 0xff
	if _, err := sealer.Open(blob, nil); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("tampered blob: expected ErrOpenFailed, got %v", err)
	}
}

func TestSealer_WrongKey(t *testing.T) {
	sealer1, _ := NewSealer(testKey)
	sealer2, _ := NewSealer([]byte("abcdefghijklmnopqrstuvwxyz012345"))

	blob, _ := sealer1.Seal([]byte("secret"), nil)

	if _, err := sealer2.Open(blob, nil); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("expected ErrOpenFailed, got %v", err)
	}
}

func TestSealer_UniqueNonce(t *testing.T) {
	sealer, _ := NewSealer(testKey)

	blob1, _ := sealer.Seal([]byte("same"), nil)
	blob2, _ := sealer.Seal([]byte("same"), nil)

	if bytes.Equal(blob1[1:1+nonceSize], blob2[1:1+nonceSize]) {
		t.Error("nonces should differ between encryptions")
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey("passphrase", "postgres")
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if len(k1) != KeySize {
		t.Fatalf("key size: got %d, want %d", len(k1), KeySize)
	}

	k2, _ := DeriveKey("passphrase", "postgres")
	if !bytes.Equal(k1, k2) {
		t.Error("derivation should be deterministic")
	}

	k3, _ := DeriveKey("passphrase", "sqlite")
	if bytes.Equal(k1, k3) {
		t.Error("different salts should give different keys")
	}

	if _, err := DeriveKey("", "postgres"); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
}

func TestNewSealerFromSecret(t *testing.T) {
	a, err := NewSealerFromSecret("passphrase", "sqlite")
	if err != nil {
		t.Fatalf("NewSealerFromSecret: %v", err)
	}
	b, _ := NewSealerFromSecret("passphrase", "sqlite")

	blob, _ := a.Seal([]byte("shared"), []byte("aad"))
	got, err := b.Open(blob, []byte("aad"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(got) != "shared" {
		t.Errorf("got %q, want shared", got)
	}
}
