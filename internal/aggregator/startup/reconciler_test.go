package startup_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/startup"
)

type fakeSource struct {
	sports []dto.Sport
	err    error
	calls  int
}

func (f *fakeSource) FetchSports(ctx context.Context) ([]dto.Sport, error) {
	f.calls++
	return f.sports, f.err
}

type fakeStore struct {
	pingErr   error
	schemaErr error
	count     int
	countErr  error

	replaced []dto.Sport
	replaces int
}

func (f *fakeStore) Ping(ctx context.Context) error         { return f.pingErr }
func (f *fakeStore) EnsureSchema(ctx context.Context) error { return f.schemaErr }
func (f *fakeStore) ReplaceSports(ctx context.Context, sports []dto.Sport) error {
	f.replaces++
	f.replaced = sports
	return nil
}
func (f *fakeStore) CountSimplified(ctx context.Context) (int, error) {
	return f.count, f.countErr
}

type fakeSeeder struct {
	seeds int
	err   error
}

func (f *fakeSeeder) LiveOdds(ctx context.Context) ([]dto.SimplifiedOdds, error) {
	f.seeds++
	return []dto.SimplifiedOdds{{EventID: "ev1"}}, f.err
}

func newReconciler(src *fakeSource, store *fakeStore, seeder *fakeSeeder) *startup.Reconciler {
	return &startup.Reconciler{
		Log:      zap.NewNop(),
		Upstream: src,
		Store:    store,
		Seeder:   seeder,
	}
}

func TestRun_DatabaseUnreachableAbortsSilently(t *testing.T) {
	src := &fakeSource{}
	store := &fakeStore{pingErr: errors.New("connection refused")}
	seeder := &fakeSeeder{}

	r := newReconciler(src, store, seeder)
	r.Run(context.Background())

	if src.calls != 0 {
		t.Error("unreachable db must abort before fetching sports")
	}
	if seeder.seeds != 0 {
		t.Error("unreachable db must abort before seeding")
	}
	if !r.Ready() {
		t.Error("reconciler must report done even after aborting")
	}
}

func TestRun_ReplacesSportsAndSeedsWhenEmpty(t *testing.T) {
	src := &fakeSource{sports: []dto.Sport{{Key: "basketball_nba", Title: "NBA"}}}
	store := &fakeStore{count: 0}
	seeder := &fakeSeeder{}

	r := newReconciler(src, store, seeder)
	r.Run(context.Background())

	if store.replaces != 1 || len(store.replaced) != 1 {
		t.Errorf("sports replaces = %d (%d records), want full replace", store.replaces, len(store.replaced))
	}
	if seeder.seeds != 1 {
		t.Errorf("seeds = %d, want 1 with empty snapshot", seeder.seeds)
	}
	if !r.Ready() {
		t.Error("reconciler must be ready after running")
	}
}

func TestRun_SkipsSeedWhenSnapshotExists(t *testing.T) {
	src := &fakeSource{sports: []dto.Sport{{Key: "soccer_epl"}}}
	store := &fakeStore{count: 12}
	seeder := &fakeSeeder{}

	newReconciler(src, store, seeder).Run(context.Background())

	if seeder.seeds != 0 {
		t.Errorf("seeds = %d, want 0 when a snapshot already exists", seeder.seeds)
	}
}

func TestRun_SportsFetchFailureDoesNotStopSeeding(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	store := &fakeStore{count: 0}
	seeder := &fakeSeeder{}

	newReconciler(src, store, seeder).Run(context.Background())

	if store.replaces != 0 {
		t.Error("no replace on fetch failure")
	}
	if seeder.seeds != 1 {
		t.Error("seeding step still runs after a sports fetch failure")
	}
}

func TestRun_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{sports: []dto.Sport{{Key: "x"}}}
	store := &fakeStore{}
	seeder := &fakeSeeder{}

	r := newReconciler(src, store, seeder)
	r.Run(ctx)

	if seeder.seeds != 0 {
		t.Error("cancelled context must stop before the seeding step")
	}
	if !r.Ready() {
		t.Error("reconciler still reports done after cancellation")
	}
}
