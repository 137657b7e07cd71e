// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/embedding"
	"github.com/tomtom215/synapse/internal/metrics"
	"github.com/tomtom215/synapse/internal/recommend"
	"github.com/tomtom215/synapse/internal/store"
	"github.com/tomtom215/synapse/internal/vectorindex"
)

// fakeIndexer records calls and fails the first failN of them with err.
type fakeIndexer struct {
	mu        sync.Mutex
	updates   [][]content.Item
	refreshes int
	calls     int
	failN     int
	err       error
	handled   chan struct{}
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{handled: make(chan struct{}, 16)}
}

func (f *fakeIndexer) TypeOf(collection string) content.Type {
	if collection == "articles" {
		return content.TypeBlog
	}
	return content.DefaultType
}

func (f *fakeIndexer) fail() error {
	f.calls++
	if f.calls <= f.failN {
		return f.err
	}
	return nil
}

func (f *fakeIndexer) Update(_ context.Context, items []content.Item) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.handled <- struct{}{} }()
	if err := f.fail(); err != nil {
		return 0, err
	}
	f.updates = append(f.updates, items)
	return len(items), nil
}

func (f *fakeIndexer) Refresh(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.handled <- struct{}{} }()
	if err := f.fail(); err != nil {
		return 0, err
	}
	f.refreshes++
	return 3, nil
}

func (f *fakeIndexer) snapshot() (updates [][]content.Item, refreshes, calls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates, f.refreshes, f.calls
}

func testEventsConfig() *config.EventsConfig {
	return &config.EventsConfig{
		Enabled:              true,
		Transport:            config.TransportGoChannel,
		UpsertTopic:          "content.upserted",
		RefreshTopic:         "content.refresh",
		MaxRetries:           3,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
	}
}

// startProcessor runs a processor over a fresh in-process transport until
// the test ends.
func startProcessor(t *testing.T, cfg *config.EventsConfig, indexer Indexer) (*Transport, *Publisher) {
	t.Helper()

	transport := NewGoChannelTransport(watermill.NopLogger{})
	p, err := NewProcessor(cfg, transport, indexer, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = transport.Close()
	})

	select {
	case <-p.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	return transport, NewPublisher(cfg, transport.Publisher)
}

func waitHandled(t *testing.T, f *fakeIndexer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.handled:
		case <-time.After(5 * time.Second):
			t.Fatalf("handled %d of %d calls before timeout", i, n)
		}
	}
}

func TestProcessor_Upsert(t *testing.T) {
	f := newFakeIndexer()
	_, pub := startProcessor(t, testEventsConfig(), f)

	err := pub.PublishUpsert(context.Background(), "articles", []content.Document{
		{"_id": "b1", "title": "Cloud costs", "tags": []interface{}{"cloud"}},
		{"_id": "b2", "title": "Edge caching"},
	})
	if err != nil {
		t.Fatalf("PublishUpsert() error = %v", err)
	}
	waitHandled(t, f, 1)

	updates, _, _ := f.snapshot()
	if len(updates) != 1 || len(updates[0]) != 2 {
		t.Fatalf("updates = %v, want one batch of 2", updates)
	}
	for _, it := range updates[0] {
		if it.ContentType != content.TypeBlog {
			t.Errorf("item %s type = %q, want %q", it.ID, it.ContentType, content.TypeBlog)
		}
	}
	if updates[0][0].Title != "Cloud costs" || updates[0][0].Tags[0] != "cloud" {
		t.Errorf("first item = %+v", updates[0][0])
	}
}

func TestProcessor_Refresh(t *testing.T) {
	f := newFakeIndexer()
	cfg := testEventsConfig()
	_, pub := startProcessor(t, cfg, f)

	before := testutil.ToFloat64(metrics.ContentEventsConsumed.WithLabelValues(cfg.RefreshTopic, "success"))
	if err := pub.PublishRefresh(context.Background(), "catalog import"); err != nil {
		t.Fatalf("PublishRefresh() error = %v", err)
	}
	waitHandled(t, f, 1)

	if _, refreshes, _ := f.snapshot(); refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
	// The metric is recorded after the indexer returns.
	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(metrics.ContentEventsConsumed.WithLabelValues(cfg.RefreshTopic, "success")) == before {
		if time.Now().After(deadline) {
			t.Fatal("refresh success was not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProcessor_RetriesTransientFailure(t *testing.T) {
	f := newFakeIndexer()
	f.failN = 2
	f.err = errors.New("embedding backend restarting")
	_, pub := startProcessor(t, testEventsConfig(), f)

	if err := pub.PublishRefresh(context.Background(), ""); err != nil {
		t.Fatalf("PublishRefresh() error = %v", err)
	}
	waitHandled(t, f, 3)

	_, refreshes, calls := f.snapshot()
	if calls != 3 || refreshes != 1 {
		t.Errorf("calls = %d, refreshes = %d, want 3 and 1", calls, refreshes)
	}
}

func TestProcessor_NotReadyIsNotRetried(t *testing.T) {
	f := newFakeIndexer()
	f.failN = 1
	f.err = recommend.ErrNotReady
	_, pub := startProcessor(t, testEventsConfig(), f)

	if err := pub.PublishUpsert(context.Background(), "courses", []content.Document{{"title": "x"}}); err != nil {
		t.Fatalf("PublishUpsert() error = %v", err)
	}
	waitHandled(t, f, 1)

	// A second event proves the first was acknowledged rather than retried.
	if err := pub.PublishUpsert(context.Background(), "courses", []content.Document{{"title": "y"}}); err != nil {
		t.Fatalf("PublishUpsert() error = %v", err)
	}
	waitHandled(t, f, 1)

	updates, _, calls := f.snapshot()
	if calls != 2 || len(updates) != 1 || updates[0][0].Title != "y" {
		t.Errorf("calls = %d, updates = %v, want only the second event applied", calls, updates)
	}
}

func TestProcessor_DropsInvalidPayload(t *testing.T) {
	f := newFakeIndexer()
	cfg := testEventsConfig()
	transport, pub := startProcessor(t, cfg, f)

	before := testutil.ToFloat64(metrics.ContentEventsConsumed.WithLabelValues(cfg.UpsertTopic, "failure"))
	for _, payload := range []string{`{not json`, `{"items":[]}`} {
		msg := message.NewMessage(watermill.NewUUID(), []byte(payload))
		if err := transport.Publisher.Publish(cfg.UpsertTopic, msg); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if err := pub.PublishUpsert(context.Background(), "courses", []content.Document{{"title": "valid"}}); err != nil {
		t.Fatalf("PublishUpsert() error = %v", err)
	}
	waitHandled(t, f, 1)

	_, _, calls := f.snapshot()
	if calls != 1 {
		t.Errorf("indexer calls = %d, want 1", calls)
	}
	if got := testutil.ToFloat64(metrics.ContentEventsConsumed.WithLabelValues(cfg.UpsertTopic, "failure")) - before; got != 2 {
		t.Errorf("failures recorded = %v, want 2", got)
	}
}

func TestProcessor_PoisonQueue(t *testing.T) {
	f := newFakeIndexer()
	f.failN = 100
	f.err = errors.New("store offline")
	cfg := testEventsConfig()
	cfg.MaxRetries = 1
	transport, pub := startProcessor(t, cfg, f)

	sub, err := transport.Subscriber("poison-test")
	if err != nil {
		t.Fatalf("Subscriber() error = %v", err)
	}
	poisoned, err := sub.Subscribe(context.Background(), PoisonTopic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := pub.PublishRefresh(context.Background(), "nightly"); err != nil {
		t.Fatalf("PublishRefresh() error = %v", err)
	}

	select {
	case msg := <-poisoned:
		msg.Ack()
		if string(msg.Payload) != `{"reason":"nightly"}` {
			t.Errorf("poisoned payload = %s", msg.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message never reached the poison topic")
	}

	if _, _, calls := f.snapshot(); calls != 2 {
		t.Errorf("calls = %d, want 2 (one attempt and one retry)", calls)
	}
}

func TestProcessor_UpdatesLiveIndex(t *testing.T) {
	src := store.NewMemory(map[string][]content.Document{
		"courses": {{"_id": "c1", "title": "Machine learning basics", "tags": []interface{}{"ai"}}},
	})
	idx, err := recommend.NewIndexEngine(embedding.NewHashProvider(64), vectorindex.DefaultParams(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIndexEngine() error = %v", err)
	}
	lifecycle := recommend.NewLifecycle(idx, src, nil, zerolog.Nop())
	if _, err := lifecycle.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	_, pub := startProcessor(t, testEventsConfig(), lifecycle)
	if err := pub.PublishUpsert(context.Background(), "forums", []content.Document{
		{"_id": "f1", "title": "Kubernetes networking help"},
	}); err != nil {
		t.Fatalf("PublishUpsert() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for idx.Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("index length = %d, want 2", idx.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := idx.Items()[1]; got.ID != "f1" || got.ContentType != content.TypeForum {
		t.Errorf("appended item = %s/%s, want f1/forum", got.ID, got.ContentType)
	}
}

func TestPublisher_RequiresCollection(t *testing.T) {
	pub := NewPublisher(testEventsConfig(), NewGoChannelTransport(watermill.NopLogger{}).Publisher)
	if err := pub.PublishUpsert(context.Background(), "", nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("PublishUpsert(\"\") error = %v, want ErrInvalidEvent", err)
	}
}
