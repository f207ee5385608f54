package mfa

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestEncryptor(t *testing.T) *AESGCMEncryptor {
	t.Helper()

	keys, err := NewPassphraseKeyProvider("test-key-material")
	if err != nil {
		t.Fatalf("key provider failed: %v", err)
	}

	return NewAESGCMEncryptor(keys)
}

func TestEncryptDecrypt(t *testing.T) {
	e := newTestEncryptor(t)
	scope := Scope{UserID: "42", Purpose: PurposeOTPSeed}

	ciphertext, err := e.Encrypt([]byte("JBSWY3DPEHPK3PXP"), scope)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	plain, err := e.Decrypt(ciphertext, scope)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(plain, []byte("JBSWY3DPEHPK3PXP")) {
		t.Fatalf("round trip mismatch: got %q", plain)
	}
}

func TestDecryptRejectsWrongScope(t *testing.T) {
	e := newTestEncryptor(t)

	ciphertext, err := e.Encrypt([]byte("seed"), Scope{UserID: "42", Purpose: PurposeOTPSeed})
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if _, err := e.Decrypt(ciphertext, Scope{UserID: "43", Purpose: PurposeOTPSeed}); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected decrypt failure for foreign scope, got %v", err)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	e := newTestEncryptor(t)
	scope := Scope{UserID: "42", Purpose: PurposeOTPSeed}

	ciphertext, err := e.Encrypt([]byte("seed"), scope)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	ciphertext[len(ciphertext)-1] ^= 0x01

	if _, err := e.Decrypt(ciphertext, scope); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected decrypt failure for tampered ciphertext, got %v", err)
	}
}

func TestDecryptRejectsBadInput(t *testing.T) {
	e := newTestEncryptor(t)
	scope := Scope{UserID: "42", Purpose: PurposeOTPSeed}

	t.Run("TooShort", func(t *testing.T) {
		if _, err := e.Decrypt([]byte{0, 1, 2}, scope); !errors.Is(err, ErrCiphertextTooShort) {
			t.Fatalf("expected too-short error, got %v", err)
		}
	})

	t.Run("UnknownVersion", func(t *testing.T) {
		bad := make([]byte, 32)
		bad[1] = 9
		if _, err := e.Decrypt(bad, scope); !errors.Is(err, ErrUnsupportedCiphertextVersion) {
			t.Fatalf("expected version error, got %v", err)
		}
	})

	t.Run("EmptyPlaintext", func(t *testing.T) {
		if _, err := e.Encrypt(nil, scope); !errors.Is(err, ErrPlaintextEmpty) {
			t.Fatalf("expected empty plaintext error, got %v", err)
		}
	})
}

func TestSealOpenString(t *testing.T) {
	e := newTestEncryptor(t)
	scope := Scope{UserID: "7", Purpose: PurposeOTPSeed}

	stored, err := SealString(e, "JBSWY3DPEHPK3PXP", scope)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	if !strings.HasPrefix(stored, "enc:v1:") {
		t.Fatalf("expected envelope prefix, got %q", stored)
	}
	if !IsEncrypted(stored) {
		t.Fatalf("expected IsEncrypted to report true")
	}
	if IsEncrypted("JBSWY3DPEHPK3PXP") {
		t.Fatalf("expected legacy plaintext to report false")
	}

	plain, err := OpenString(e, stored, scope)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if plain != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("round trip mismatch: got %q", plain)
	}
}

func TestOpenStringRejectsGarbage(t *testing.T) {
	e := newTestEncryptor(t)

	if _, err := OpenString(e, "enc:v1:!!not-base64!!", Scope{UserID: "7", Purpose: PurposeOTPSeed}); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected decrypt failure for invalid base64, got %v", err)
	}
}

func TestPassphraseKeyProvider(t *testing.T) {
	t.Run("EmptyMaterial", func(t *testing.T) {
		if _, err := NewPassphraseKeyProvider(""); !errors.Is(err, ErrMissingStaticKey) {
			t.Fatalf("expected missing key error, got %v", err)
		}
	})

	t.Run("DerivesStableKey", func(t *testing.T) {
		a, err := NewPassphraseKeyProvider("material")
		if err != nil {
			t.Fatalf("key provider failed: %v", err)
		}
		b, err := NewPassphraseKeyProvider("material")
		if err != nil {
			t.Fatalf("key provider failed: %v", err)
		}

		ka, _ := a.Key(Scope{})
		kb, _ := b.Key(Scope{})
		if len(ka) != 32 || !bytes.Equal(ka, kb) {
			t.Fatalf("expected identical 32 byte keys")
		}
	})
}

func TestStaticKeyProvider(t *testing.T) {
	if _, err := (StaticKeyProvider{}).Key(Scope{}); !errors.Is(err, ErrMissingStaticKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
