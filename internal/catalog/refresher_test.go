package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// #region fakes
type fakeSource struct {
	snap *Snapshot
	err  error
	hits int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (*Snapshot, error) {
	f.hits++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.snap, f.err
}

type fakeObserver struct {
	ok, failed int
	weapons    int
}

func (o *fakeObserver) ObserveRefresh(ok bool, weapons int) {
	if ok {
		o.ok++
		o.weapons = weapons
	} else {
		o.failed++
	}
}

func quietLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// #endregion fakes

func TestRefreshSwapsAndPersists(t *testing.T) {
	src := &fakeSource{snap: loadFixture(t)}
	store := tempDB(t)
	holder := NewHolder(nil)
	obs := &fakeObserver{}

	r := NewRefresher(src, store, holder, obs, quietLogger(), DefaultRefreshConfig())
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if holder.Load() != snap {
		t.Fatal("holder not swapped")
	}
	if obs.ok != 1 || obs.weapons != 2 {
		t.Fatalf("observer not notified: %+v", obs)
	}
	_, rec, err := store.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec.Source != "fake" {
		t.Fatalf("expected source fake, got %s", rec.Source)
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	original := loadFixture(t)
	holder := NewHolder(original)
	obs := &fakeObserver{}
	src := &fakeSource{err: errors.New("upstream down")}

	cfg := RefreshConfig{Schedule: "@every 1h", Timeout: time.Second, Retries: 2, RetryDelay: time.Millisecond}
	r := NewRefresher(src, nil, holder, obs, quietLogger(), cfg)
	if _, err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if src.hits != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", src.hits)
	}
	if holder.Load() != original {
		t.Fatal("failed refresh replaced the snapshot")
	}
	if obs.failed != 1 {
		t.Fatalf("expected one failure observed, got %+v", obs)
	}
}

type flakySource struct {
	fakeSource
	failures int
}

func (f *flakySource) Fetch(ctx context.Context) (*Snapshot, error) {
	f.hits++
	if f.hits <= f.failures {
		return nil, errors.New("transient")
	}
	return f.snap, nil
}

func TestRefreshRetriesTransientFailure(t *testing.T) {
	holder := NewHolder(nil)
	obs := &fakeObserver{}
	src := &flakySource{fakeSource: fakeSource{snap: loadFixture(t)}, failures: 1}

	cfg := RefreshConfig{Schedule: "@every 1h", Timeout: time.Second, Retries: 2, RetryDelay: time.Millisecond}
	r := NewRefresher(src, nil, holder, obs, quietLogger(), cfg)
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if src.hits != 2 || holder.Load().Len() != 2 {
		t.Fatalf("expected success on second attempt, hits=%d", src.hits)
	}
	if obs.ok != 1 || obs.failed != 0 {
		t.Fatalf("retries should be one observed refresh, got %+v", obs)
	}
}

func TestRefreshRejectsEmptyCatalog(t *testing.T) {
	original := loadFixture(t)
	holder := NewHolder(original)
	src := &fakeSource{snap: EmptySnapshot()}

	r := NewRefresher(src, nil, holder, nil, quietLogger(), DefaultRefreshConfig())
	if _, err := r.Refresh(context.Background()); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	if holder.Load() != original {
		t.Fatal("empty catalog was published")
	}
}

func TestRefreshHonorsCanceledContext(t *testing.T) {
	holder := NewHolder(nil)
	src := &fakeSource{snap: loadFixture(t)}
	r := NewRefresher(src, nil, holder, nil, quietLogger(), RefreshConfig{Schedule: "@every 1h", Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if src.hits != 1 {
		t.Fatalf("canceled refresh should not retry, got %d fetches", src.hits)
	}
	if holder.Load().Len() != 0 {
		t.Fatal("canceled refresh published a snapshot")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	src := &fakeSource{snap: loadFixture(t)}
	r := NewRefresher(src, nil, NewHolder(nil), nil, quietLogger(), RefreshConfig{Schedule: "whenever"})
	if err := r.Start(); err == nil {
		t.Fatal("expected schedule error")
	}
	r.Stop()
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{snap: loadFixture(t)}
	r := NewRefresher(src, nil, NewHolder(nil), nil, quietLogger(), RefreshConfig{Schedule: "@every 1h", Timeout: time.Second})
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Stop()
	if src.hits != 0 {
		t.Fatalf("hourly schedule should not have fired, got %d fetches", src.hits)
	}
}
