// Package keyring provides secure storage for the PIA account
// credentials. It uses the system keyring when available, falling back to
// an encrypted local file when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/dagrha/piactl/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "piactl"
	// accountKey is the single entry holding the PIA account.
	accountKey = "pia-account"
)

// ErrNotFound is returned when no credentials have been stored.
var ErrNotFound = common.ErrCredentialsNotFound

// Account is the stored PIA credential pair.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Storage backend state.
var (
	mu              sync.Mutex
	useLocalStorage bool
	localStore      map[string]string
	localStoreFile  string
	encryptionKey   []byte
	initialized     bool
)

func initStorage() {
	if initialized {
		return
	}

	// Probe the system keyring; fall back to the local file when the
	// session has no secret service.
	testKey := "piactl-test-init"
	if err := keyring.Set(serviceName, testKey, "test"); err == nil {
		keyring.Delete(serviceName, testKey)
		useLocalStorage = false
	} else {
		useLocalStorage = true
		initLocalStorage()
	}
	initialized = true
}

func initLocalStorage() {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", common.ConfigDirName)
	os.MkdirAll(configDir, 0700)
	localStoreFile = filepath.Join(configDir, ".credentials")

	// Derive the encryption key from machine-specific data so the file
	// is not portable between hosts.
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("piactl-%s-%s-%d", hostname, machineID(), os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	encryptionKey = hash[:]

	localStore = make(map[string]string)
	loadLocalStore()
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "default-machine-id"
	}
	return strings.TrimSpace(string(data))
}

func loadLocalStore() {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(data)
	if err != nil {
		return
	}

	json.Unmarshal(decrypted, &localStore)
}

func saveLocalStore() error {
	data, err := json.Marshal(localStore)
	if err != nil {
		return err
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}

	return os.WriteFile(localStoreFile, encrypted, 0600)
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// StoreAccount saves the PIA account credentials.
func StoreAccount(account Account) error {
	if account.Username == "" || account.Password == "" {
		return errors.New("username and password cannot be empty")
	}

	payload, err := json.Marshal(account)
	if err != nil {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}

	mu.Lock()
	defer mu.Unlock()
	initStorage()

	if useLocalStorage {
		localStore[accountKey] = string(payload)
		return saveLocalStore()
	}

	if err := keyring.Set(serviceName, accountKey, string(payload)); err != nil {
		// Fall back to local storage when the keyring rejects the write.
		useLocalStorage = true
		initLocalStorage()
		localStore[accountKey] = string(payload)
		return saveLocalStore()
	}
	return nil
}

// GetAccount retrieves the stored PIA account credentials.
func GetAccount() (Account, error) {
	mu.Lock()
	defer mu.Unlock()
	initStorage()

	var payload string
	if useLocalStorage {
		stored, exists := localStore[accountKey]
		if !exists {
			return Account{}, ErrNotFound
		}
		payload = stored
	} else {
		stored, err := keyring.Get(serviceName, accountKey)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return Account{}, ErrNotFound
			}
			return Account{}, common.WrapError(err, "reading keyring")
		}
		payload = stored
	}

	var account Account
	if err := json.Unmarshal([]byte(payload), &account); err != nil {
		return Account{}, common.WrapError(err, "decoding stored credentials")
	}
	return account, nil
}

// DeleteAccount removes the stored PIA account credentials.
func DeleteAccount() error {
	mu.Lock()
	defer mu.Unlock()
	initStorage()

	if useLocalStorage {
		delete(localStore, accountKey)
		return saveLocalStore()
	}

	keyring.Delete(serviceName, accountKey)
	return nil
}

// HasAccount checks whether credentials are stored.
func HasAccount() bool {
	_, err := GetAccount()
	return err == nil
}
