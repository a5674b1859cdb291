package progress

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	unsub := bus.Subscribe(func(ev Event) {
		got = append(got, ev.Kind())
	})
	defer unsub()

	bus.Publish(ParseStart{Topic: "animals", TotalChunks: 2})
	bus.Publish(ParseChunkStart{Topic: "animals", ChunkIndex: 0, TotalChunks: 2})
	bus.Publish(ParseChunkComplete{Topic: "animals", ChunkIndex: 0, TotalChunks: 2, FactsGenerated: 3})
	bus.Publish(ParseComplete{Topic: "animals", TotalChunks: 2, FactsGenerated: 3})

	want := []string{"parse-start", "parse-chunk-start", "parse-chunk-complete", "parse-complete"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsub := bus.Subscribe(func(Event) { count++ })

	bus.Publish(QuizStart{Topic: "animals", Total: 5})
	unsub()
	bus.Publish(QuizComplete{Topic: "animals", Total: 5})

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}

	// Second unsubscribe is a no-op.
	unsub()
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b int
	unsubA := bus.Subscribe(func(Event) { a++ })
	defer unsubA()
	unsubB := bus.Subscribe(func(Event) { b++ })
	defer unsubB()

	bus.Publish(ModelDownload{Progress: 0.5})

	if a != 1 || b != 1 {
		t.Errorf("expected both subscribers to see the event, got a=%d b=%d", a, b)
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	var unsub func()
	calls := 0
	unsub = bus.Subscribe(func(Event) {
		calls++
		unsub()
	})

	bus.Publish(StorageComplete{Topic: "animals", Total: 10})
	bus.Publish(StorageComplete{Topic: "animals", Total: 10})

	if calls != 1 {
		t.Errorf("expected 1 call after self-unsubscribe, got %d", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	unsub := bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(ModelDownload{Progress: 1.0})
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("expected 10 deliveries, got %d", count)
	}
}

func TestEvent_WireShape(t *testing.T) {
	tests := []struct {
		ev   Event
		kind string
		json string
	}{
		{
			ev:   ModelDownload{Progress: 0.25},
			kind: "model-download",
			json: `{"progress":0.25}`,
		},
		{
			ev:   ParseStart{Topic: "animals", TotalChunks: 3},
			kind: "parse-start",
			json: `{"topic":"animals","totalChunks":3}`,
		},
		{
			ev:   ParseChunkStart{Topic: "animals", ChunkIndex: 1, TotalChunks: 3},
			kind: "parse-chunk-start",
			json: `{"topic":"animals","chunkIndex":1,"totalChunks":3}`,
		},
		{
			ev:   ParseChunkComplete{Topic: "animals", ChunkIndex: 1, TotalChunks: 3, FactsGenerated: 7},
			kind: "parse-chunk-complete",
			json: `{"topic":"animals","chunkIndex":1,"totalChunks":3,"factsGenerated":7}`,
		},
		{
			ev:   ParseComplete{Topic: "animals", TotalChunks: 3, FactsGenerated: 21},
			kind: "parse-complete",
			json: `{"topic":"animals","totalChunks":3,"factsGenerated":21}`,
		},
		{
			ev:   ParseError{Topic: "animals", Message: "boom"},
			kind: "parse-error",
			json: `{"topic":"animals","message":"boom"}`,
		},
		{
			ev:   StorageSaveProgress{Topic: "animals", Saved: 2, Total: 9},
			kind: "storage-save-progress",
			json: `{"topic":"animals","saved":2,"total":9}`,
		},
		{
			ev:   StorageComplete{Topic: "animals", Total: 9},
			kind: "storage-complete",
			json: `{"topic":"animals","total":9}`,
		},
		{
			ev:   QuizStart{Topic: "animals", Total: 5},
			kind: "quiz-start",
			json: `{"topic":"animals","total":5}`,
		},
		{
			ev:   QuizProgress{Topic: "animals", Current: 1, Total: 5},
			kind: "quiz-progress",
			json: `{"topic":"animals","current":1,"total":5}`,
		},
		{
			ev:   QuizComplete{Topic: "animals", Total: 4},
			kind: "quiz-complete",
			json: `{"topic":"animals","total":4}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			if tc.ev.Kind() != tc.kind {
				t.Errorf("Kind() = %q, want %q", tc.ev.Kind(), tc.kind)
			}
			raw, err := json.Marshal(tc.ev)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(raw) != tc.json {
				t.Errorf("json = %s, want %s", raw, tc.json)
			}
		})
	}
}
