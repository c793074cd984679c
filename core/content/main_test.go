package content

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memStorage keeps JSON documents the way a real backend would.
type memStorage struct {
	mu        sync.Mutex
	data      map[string][]byte
	saves     []string
	failSaves bool
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Decode(key string, dst interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (m *memStorage) Save(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("encoding %s: %v", key, err))
	}
	m.data[key] = raw
	m.saves = append(m.saves, key)
}

func (m *memStorage) put(key, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(raw)
}

func (m *memStorage) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

type testLogger struct {
	t testing.TB
}

func (l *testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l *testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func newTestStore(t *testing.T, storage *memStorage, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow }), WithSeed(false)}, opts...)
	s, err := NewStore(storage, &testLogger{t}, opts...)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
