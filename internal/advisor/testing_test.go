package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/scicon/advisor/internal/catalog"
	"github.com/scicon/advisor/internal/eventlog"
	"github.com/scicon/advisor/internal/spareparts"
)

// --- Mock event log ---

type memLog struct {
	mu     sync.Mutex
	events map[string][]eventlog.Event
}

func newMemLog() *memLog {
	return &memLog{events: make(map[string][]eventlog.Event)}
}

func (m *memLog) Append(ctx context.Context, sessionID string, typ eventlog.Type, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]any, len(data))
	for k, v := range data {
		cp[k] = v
	}
	m.events[sessionID] = append(m.events[sessionID], eventlog.Event{
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Type:      typ,
		Data:      cp,
	})
	return nil
}

func (m *memLog) Session(ctx context.Context, sessionID string) ([]eventlog.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.events[sessionID]
	out := make([]eventlog.Event, len(evs))
	copy(out, evs)
	return out, nil
}

func (m *memLog) typesFor(sessionID string) []eventlog.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []eventlog.Type
	for _, ev := range m.events[sessionID] {
		out = append(out, ev.Type)
	}
	return out
}

// --- Mock classifier ---

type stubClassifier struct {
	cls Classification
	err error
}

func (s stubClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	return s.cls, s.err
}

// --- Deterministic rand ---

// zeroRand always picks the first phrasing variant.
type zeroRand struct{}

func (zeroRand) Intn(n int) int { return 0 }

// --- Fixtures ---

func testPartsDB() *spareparts.DB {
	db := spareparts.NewDB()
	db.Add("Aeroshade", "lente_ricambio", "https://shop.example/aeroshade-lente")
	db.Add("Aeroshade", "nasello", "https://shop.example/aeroshade-nasello")
	db.Add("Aerotrail Photochromic", "lente_ricambio", "https://shop.example/aerotrail-photo-lente")
	db.Add("Aerotrail Standard", "lente_ricambio", "https://shop.example/aerotrail-std-lente")
	db.Add("Aerotrail Standard", "viti_kit", "https://shop.example/aerotrail-std-viti")
	return db
}

func testPartsCache() *spareparts.Cache {
	return spareparts.NewCache(func() (*spareparts.DB, error) { return testPartsDB(), nil })
}

func newTestService(cls Classification) (*Service, *memLog) {
	log := newMemLog()
	svc := New(log, stubClassifier{cls: cls}, catalog.Default(), testPartsCache(), zeroRand{})
	return svc, log
}
