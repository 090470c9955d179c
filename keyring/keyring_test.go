package keyring

import (
	"crypto/sha256"
	"path/filepath"
	"testing"
)

// useTempLocalStore forces the encrypted local-file backend under a temp
// dir so tests never touch the system keyring.
func useTempLocalStore(t *testing.T) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	savedInit, savedLocal := initialized, useLocalStorage
	savedStore, savedFile, savedKey := localStore, localStoreFile, encryptionKey
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		initialized, useLocalStorage = savedInit, savedLocal
		localStore, localStoreFile, encryptionKey = savedStore, savedFile, savedKey
	})

	hash := sha256.Sum256([]byte("piactl-test-key"))
	initialized = true
	useLocalStorage = true
	localStore = make(map[string]string)
	localStoreFile = filepath.Join(t.TempDir(), ".credentials")
	encryptionKey = hash[:]
}

func setupTestCrypto(t *testing.T) {
	t.Helper()
	hash := sha256.Sum256([]byte("piactl-test-key"))
	encryptionKey = hash[:]
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	setupTestCrypto(t)

	plaintext := []byte(`{"pia-account":"{\"username\":\"p1234567\",\"password\":\"secret\"}"}`)

	encrypted, err := encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if string(encrypted) == string(plaintext) {
		t.Error("ciphertext matches plaintext")
	}

	decrypted, err := decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	setupTestCrypto(t)

	if _, err := decrypt([]byte("not base64 at all!!!")); err == nil {
		t.Error("expected error for invalid base64 input")
	}

	if _, err := decrypt([]byte("dG9vc2hvcnQ=")); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	setupTestCrypto(t)

	plaintext := []byte("same input")
	first, err := encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	second, err := encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if string(first) == string(second) {
		t.Error("expected distinct nonces to yield distinct ciphertexts")
	}
}

func TestAccountLifecycle(t *testing.T) {
	useTempLocalStore(t)

	if HasAccount() {
		t.Fatal("fresh store should hold no account")
	}

	account := Account{Username: "p1234567", Password: "secret"}
	if err := StoreAccount(account); err != nil {
		t.Fatalf("StoreAccount failed: %v", err)
	}

	if !HasAccount() {
		t.Error("HasAccount should report the stored account")
	}
	got, err := GetAccount()
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got != account {
		t.Errorf("GetAccount = %+v, want %+v", got, account)
	}

	if err := DeleteAccount(); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if HasAccount() {
		t.Error("account should be gone after DeleteAccount")
	}
	if _, err := GetAccount(); err != ErrNotFound {
		t.Errorf("GetAccount after delete = %v, want ErrNotFound", err)
	}
}

func TestStoreAccountRejectsEmptyFields(t *testing.T) {
	if err := StoreAccount(Account{Username: "", Password: "pw"}); err == nil {
		t.Error("expected error for empty username")
	}
	if err := StoreAccount(Account{Username: "p1234567", Password: ""}); err == nil {
		t.Error("expected error for empty password")
	}
}
