// Package keyspace implements the concurrent keyspace directory: named,
// independent key/value stores, each with its own background eviction
// policy bounded by process memory usage.
package keyspace

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/segment-dev/segment/internal/memstat"
)

// evictorTickInterval is how often a keyspace's background evictor wakes
// to check memory pressure.
const evictorTickInterval = 100 * time.Millisecond

// value is a single stored entry: an opaque payload plus the timestamp
// the Lru evictor samples against.
type value struct {
	data         []byte
	lastAccessed time.Time
}

// Keyspace is a named, independent key/value store with an immutable
// eviction policy. The zero value is not usable; construct via Manager.Create.
type Keyspace struct {
	name                string
	evictor             Evictor
	maxMemorySampleSize int
	serverMaxMemoryBytes uint64

	mu      sync.Mutex
	entries map[string]*value

	shutdownMu sync.Mutex
	shutdown   bool
	done       chan struct{}
}

func newKeyspace(name string, evictor Evictor, serverMaxMemoryBytes uint64, sampleSize int) *Keyspace {
	return &Keyspace{
		name:                 name,
		evictor:              evictor,
		maxMemorySampleSize:  sampleSize,
		serverMaxMemoryBytes: serverMaxMemoryBytes,
		entries:              make(map[string]*value),
		done:                 make(chan struct{}),
	}
}

// Get returns the value stored under key, refreshing its last-accessed
// timestamp, or (nil, false) if absent.
func (k *Keyspace) Get(key string) ([]byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	v, ok := k.entries[key]
	if !ok {
		return nil, false
	}
	v.lastAccessed = time.Now()
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out, true
}

// Set inserts or replaces key's value, always returning 1.
func (k *Keyspace) Set(key string, data []byte) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.entries[key] = &value{data: data, lastAccessed: time.Now()}
	return 1
}

// Del removes key, returning 1 if it was present and 0 otherwise.
func (k *Keyspace) Del(key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.entries[key]; !ok {
		return 0
	}
	delete(k.entries, key)
	return 1
}

// startEvictor launches the background evictor goroutine, unless the
// keyspace's policy is Noop.
func (k *Keyspace) startEvictor() {
	if k.evictor == EvictorNoop {
		return
	}
	go k.runEvictor()
}

// shutdownEvictor signals the background evictor to exit on its next
// wake-up. It is idempotent.
func (k *Keyspace) shutdownEvictor() {
	k.shutdownMu.Lock()
	defer k.shutdownMu.Unlock()
	if k.shutdown {
		return
	}
	k.shutdown = true
	close(k.done)
}

func (k *Keyspace) runEvictor() {
	ticker := time.NewTicker(evictorTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			k.sampleAndEvict(memstat.RSSBytes())
		}
	}
}

// sampleAndEvict performs at most one eviction, sampling the first S
// entries reached by map iteration (S = min(maxMemorySampleSize,
// store size)) and evicting a single candidate per the keyspace's
// policy. It is a no-op when rssBytes is below the server's cap.
func (k *Keyspace) sampleAndEvict(rssBytes uint64) {
	if rssBytes < k.serverMaxMemoryBytes {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	sampleSize := k.maxMemorySampleSize
	if sampleSize > len(k.entries) {
		sampleSize = len(k.entries)
	}
	if sampleSize == 0 {
		return
	}

	var (
		candidate    string
		haveCandidate bool
		minAccessed  = time.Now()
	)

	i := 0
	for key, v := range k.entries {
		if i == sampleSize {
			break
		}
		switch k.evictor {
		case EvictorRandom:
			if rand.Float32() < 0.5 {
				candidate = key
				haveCandidate = true
			}
		case EvictorLru:
			if !v.lastAccessed.After(minAccessed) {
				minAccessed = v.lastAccessed
				candidate = key
				haveCandidate = true
			}
		}
		i++
	}

	if haveCandidate {
		delete(k.entries, candidate)
	}
}

// Manager is the top-level keyspace directory: a concurrent map from name
// to Keyspace. Once a name is bound it is never replaced or removed for
// the remainder of the process's lifetime.
type Manager struct {
	serverMaxMemoryBytes uint64
	keyspaces            *xsync.MapOf[string, *Keyspace]
}

// NewManager constructs a Manager whose evictors trigger once the
// process's RSS reaches serverMaxMemoryBytes.
func NewManager(serverMaxMemoryBytes uint64) *Manager {
	return &Manager{
		serverMaxMemoryBytes: serverMaxMemoryBytes,
		keyspaces:            xsync.NewMapOf[string, *Keyspace](),
	}
}

// Create atomically inserts a new keyspace named name, starting its
// background evictor (if evictor != EvictorNoop). It returns 1 on
// success, or 0 if the name was already bound — in which case the
// existing keyspace's evictor and sample size are untouched.
func (m *Manager) Create(name string, evictor Evictor, maxMemorySampleSize int) int {
	ks := newKeyspace(name, evictor, m.serverMaxMemoryBytes, maxMemorySampleSize)
	_, loaded := m.keyspaces.LoadOrStore(name, ks)
	if loaded {
		return 0
	}
	ks.startEvictor()
	return 1
}

// WithKeyspace looks up name and invokes fn with access to it, returning
// a "keyspace '<name>' does not exist" error if no keyspace by that name
// exists. The error text carries no class prefix; callers add ERREXEC.
func (m *Manager) WithKeyspace(name string, fn func(*Keyspace) error) error {
	ks, ok := m.keyspaces.Load(name)
	if !ok {
		return errors.Errorf("keyspace '%s' does not exist", name)
	}
	return fn(ks)
}
