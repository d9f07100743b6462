// ABOUTME: Persistence collaborator contracts: whole-collection snapshots keyed by entity type
// ABOUTME: Also defines the identifier generator and clock injected into every store
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Persisted keys, one per entity collection.
const (
	KeyContacts       = "contacts"
	KeyMandats        = "mandats"
	KeyBuyers         = "buyers"
	KeySellerLeads    = "seller-leads"
	KeyCalendarTasks  = "calendar-tasks"
	KeyAnnonces       = "annonces"
	KeyPipelineStages = "pipeline-stages"
	KeyDeals          = "deals"
	KeyAnnualGoal     = "annual-goal"
)

// Keys lists every persisted key in load order.
var Keys = []string{
	KeyContacts, KeyMandats, KeyBuyers, KeySellerLeads, KeyCalendarTasks,
	KeyAnnonces, KeyPipelineStages, KeyDeals, KeyAnnualGoal,
}

// Storage loads and saves raw snapshots. Load reports ok=false when the key was never saved.
type Storage interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
}

// IDGenerator produces globally unique opaque identifiers.
type IDGenerator interface {
	NewID() string
}

// Clock returns the current time.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// ULIDGenerator yields lexicographically sortable identifiers.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() string {
	return ulid.Make().String()
}

// NewIDGenerator selects a generator by name: "uuid" (default) or "ulid".
func NewIDGenerator(format string) (IDGenerator, error) {
	switch format {
	case "", "uuid":
		return UUIDGenerator{}, nil
	case "ulid":
		return ULIDGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown id format %q (want uuid or ulid)", format)
}

// KV is the byte-oriented key-value API offered by charm and badger clients.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// KVStorage adapts a KV to Storage, namespacing keys with a prefix.
type KVStorage struct {
	kv     KV
	prefix string
}

func NewKVStorage(kv KV, prefix string) *KVStorage {
	return &KVStorage{kv: kv, prefix: prefix}
}

func (s *KVStorage) Load(key string) ([]byte, bool, error) {
	data, err := s.kv.Get([]byte(s.prefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *KVStorage) Save(key string, data []byte) error {
	return s.kv.Set([]byte(s.prefix+key), data)
}

// MemoryStorage keeps snapshots in a map. It backs dry runs and tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
