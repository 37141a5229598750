package postgres

import (
	"errors"
	"testing"
)

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	key := []byte("01234567890123456789012345678901")

	encryptor, err := NewSecretEncryptor(key)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	original := "api-key-for-acme-upstream"

	blob, err := encryptor.EncryptString(original)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	// Verify blob format
	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != secretVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], secretVersion)
	}

	decrypted, err := encryptor.DecryptString(blob)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if decrypted != original {
		t.Errorf("decrypted = %q, want %q", decrypted, original)
	}
}

func TestSecretEncryptor_NonceUniqueness(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, _ := NewSecretEncryptor(key)

	a, err := encryptor.EncryptString("same credential")
	if err != nil {
		t.Fatal(err)
	}
	b, err := encryptor.EncryptString("same credential")
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(b) {
		t.Error("two encryptions of the same value must not produce the same blob")
	}
}

func TestSecretEncryptor_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"too short", 16},
		{"too long", 64},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			_, err := NewSecretEncryptor(key)
			if !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("error = %v, want ErrInvalidKeySize", err)
			}
		})
	}
}

func TestSecretEncryptor_DecryptInvalidBlob(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, _ := NewSecretEncryptor(key)

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{0x01, 0x02}},
		{"wrong version", append([]byte{0x99}, make([]byte, 100)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result string
			if err := encryptor.Decrypt(tt.blob, &result); err == nil {
				t.Error("expected error for invalid blob")
			}
		})
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	key1 := []byte("01234567890123456789012345678901")
	key2 := []byte("10987654321098765432109876543210")

	enc1, _ := NewSecretEncryptor(key1)
	enc2, _ := NewSecretEncryptor(key2)

	blob, err := enc1.EncryptString("secret credential")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	if _, err := enc2.DecryptString(blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("error = %v, want ErrDecryptionFailed", err)
	}
}
