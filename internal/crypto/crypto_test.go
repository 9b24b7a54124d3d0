package crypto_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gsarma/codetester/internal/crypto"
)

var rootKey = strings.Repeat("ab", 32)

func TestNewEncryptor_RejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "zz", strings.Repeat("ab", 16)} {
		if _, err := crypto.NewEncryptor(key); !errors.Is(err, crypto.ErrInvalidRootKey) {
			t.Errorf("key %q: expected ErrInvalidRootKey, got %v", key, err)
		}
	}
}

func TestEnvelope_SealsJudgeCredentials(t *testing.T) {
	enc, err := crypto.NewEncryptor(rootKey)
	if err != nil {
		t.Fatal(err)
	}
	plain, sealed, err := enc.NewDataKey()
	if err != nil {
		t.Fatal(err)
	}
	opened, err := enc.OpenDataKey(sealed)
	if err != nil {
		t.Fatalf("open data key: %v", err)
	}
	if string(opened) != string(plain) {
		t.Fatal("data key did not survive sealing")
	}

	type creds struct {
		URL       string `json:"url"`
		AuthToken string `json:"auth_token"`
	}
	box, err := crypto.SealJSON(opened, creds{URL: "http://judge0:2358", AuthToken: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(box), "s3cret") {
		t.Error("sealed config must not contain the plaintext secret")
	}

	var got creds
	if err := crypto.OpenJSON(plain, box, &got); err != nil {
		t.Fatalf("open json: %v", err)
	}
	if got.AuthToken != "s3cret" || got.URL != "http://judge0:2358" {
		t.Errorf("unexpected credentials: %+v", got)
	}
}

func TestOpen_WrongKeyAndTruncated(t *testing.T) {
	enc, _ := crypto.NewEncryptor(rootKey)
	keyA, _, _ := enc.NewDataKey()
	keyB, _, _ := enc.NewDataKey()

	box, err := crypto.Seal(keyA, []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := crypto.Open(keyB, box); err == nil {
		t.Error("expected error opening with another tenant's key")
	}
	if _, err := crypto.Open(keyA, box[:4]); !errors.Is(err, crypto.ErrCiphertextTooShort) {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}
