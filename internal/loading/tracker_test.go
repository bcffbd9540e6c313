package loading

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSingleRequest(t *testing.T) {
	tr := NewTracker()
	if tr.IsLoading() {
		t.Fatal("new tracker reports loading")
	}

	tr.StartLoading("GET-/api/news-{}-{}")
	if !tr.IsLoading() {
		t.Error("IsLoading() = false while request outstanding")
	}
	if !tr.IsRequestLoading("GET-/api/news-{}-{}") {
		t.Error("IsRequestLoading() = false while request outstanding")
	}

	tr.FinishLoading("GET-/api/news-{}-{}")
	if tr.IsLoading() {
		t.Error("IsLoading() = true after finish")
	}
	if tr.IsRequestLoading("GET-/api/news-{}-{}") {
		t.Error("IsRequestLoading() = true after finish")
	}
}

func TestFlagStaysUpUntilLastFinishes(t *testing.T) {
	tr := NewTracker()
	tr.StartLoading("a")
	tr.StartLoading("b")

	tr.FinishLoading("a")
	assert.True(t, tr.IsLoading())
	assert.Equal(t, []string{"b"}, tr.Pending())

	tr.FinishLoading("b")
	assert.False(t, tr.IsLoading())
	assert.Empty(t, tr.Pending())
}

func TestIdenticalFingerprintsOverwrite(t *testing.T) {
	tr := NewTracker()
	tr.StartLoading("same")
	tr.StartLoading("same")

	// The first finish clears the shared entry even though the second
	// request is still outstanding.
	tr.FinishLoading("same")
	assert.False(t, tr.IsLoading())
	assert.False(t, tr.IsRequestLoading("same"))

	tr.FinishLoading("same")
	assert.False(t, tr.IsLoading())
}

func TestFinishUnknownFingerprint(t *testing.T) {
	tr := NewTracker()
	tr.StartLoading("a")
	tr.FinishLoading("unknown")
	assert.True(t, tr.IsLoading())
}

func TestWatchFiresOnTransitionsOnly(t *testing.T) {
	tr := NewTracker()
	var events []bool
	tr.Watch(func(v bool) { events = append(events, v) })

	tr.StartLoading("a")
	tr.StartLoading("b")
	tr.FinishLoading("a")
	tr.FinishLoading("b")
	tr.FinishLoading("b")

	assert.Equal(t, []bool{true, false}, events)
}

func TestWatcherMayQueryTracker(t *testing.T) {
	tr := NewTracker()
	var seen bool
	tr.Watch(func(bool) { seen = tr.IsLoading() })
	tr.StartLoading("a")
	assert.True(t, seen)
}

func TestConcurrentStartFinish(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := fmt.Sprintf("req-%d", i)
			tr.StartLoading(fp)
			tr.FinishLoading(fp)
		}(i)
	}
	wg.Wait()

	assert.False(t, tr.IsLoading())
	assert.Empty(t, tr.Pending())
}

func TestWatchDuringNotification(t *testing.T) {
	tr := NewTracker()
	var late []bool
	tr.Watch(func(bool) {
		tr.Watch(func(v bool) { late = append(late, v) })
	})

	// The watcher added while delivering "true" only sees later changes.
	tr.StartLoading("a")
	assert.Empty(t, late)

	tr.FinishLoading("a")
	assert.Equal(t, []bool{false}, late)
}

func TestConcurrentWatchersSeeOrderedChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := NewTracker()
	var (
		mu     sync.Mutex
		events []bool
	)
	tr.Watch(func(v bool) {
		mu.Lock()
		events = append(events, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := fmt.Sprintf("req-%d", i%3)
			tr.StartLoading(fp)
			tr.FinishLoading(fp)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatal("no changes delivered")
	}
	for i, v := range events {
		if want := i%2 == 0; v != want {
			t.Fatalf("events[%d] = %v, want %v (events %v)", i, v, want, events)
		}
	}
	if last := events[len(events)-1]; last != tr.IsLoading() {
		t.Errorf("last delivered = %v, IsLoading() = %v", last, tr.IsLoading())
	}
}
