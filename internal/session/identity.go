package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const tokenPrefix = "session_"

// storageKey matches the key the web client kept in localStorage.
const storageKey = "quicky_session_id"

// Identity generates and persists the durable per-install session token.
// Storage failures degrade to a per-process token, never to an error.
type Identity struct {
	mu    sync.Mutex
	path  string
	token string
}

// New creates an identity backed by a JSON file at path.
func New(path string) *Identity {
	return &Identity{path: path}
}

// GetOrCreate returns the persisted token, creating and saving a new one
// on first use. Repeated calls return the identical token.
func (i *Identity) GetOrCreate() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.token != "" {
		return i.token
	}

	if token, ok := i.load(); ok {
		i.token = token
		return i.token
	}

	i.token = newToken()
	i.save(i.token)
	return i.token
}

// Reset removes the persisted token so the next call mints a fresh one.
func (i *Identity) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.token = ""
	if err := os.Remove(i.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// load reads the token file; any failure is treated as "no token yet".
func (i *Identity) load() (string, bool) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		return "", false
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", false
	}

	token, ok := stored[storageKey]
	return token, ok && token != ""
}

// save writes the token back; failures are swallowed so the token simply
// lives for the process lifetime.
func (i *Identity) save(token string) {
	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return
	}

	data, err := json.MarshalIndent(map[string]string{storageKey: token}, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(i.path, data, 0o644)
}

// newToken builds session_<random base36>_<unix millis>.
func newToken() string {
	return tokenPrefix + randomBase36(11) + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// randomBase36 returns n random base-36 characters.
func randomBase36(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for idx := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// Entropy exhaustion is not actionable here; fall back to time.
			out[idx] = alphabet[time.Now().UnixNano()%int64(len(alphabet))]
			continue
		}
		out[idx] = alphabet[v.Int64()]
	}
	return string(out)
}
