package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierworks/sellertiers/internal/application/testutil"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	vo "github.com/tierworks/sellertiers/internal/domain/subscription/valueobjects"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type fixture struct {
	sm      *StateMachine
	repo    *testutil.MockSubscriptionRepository
	catalog *catalog.Catalog
	clock   *testutil.Clock
	metrics *testutil.MockMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:    testutil.NewMockSubscriptionRepository(),
		catalog: testutil.NewTestCatalog(t),
		clock:   testutil.NewClock(testutil.BaseTime),
		metrics: testutil.NewMockMetrics(),
	}
	f.sm = NewStateMachine(f.repo, f.catalog, &testutil.MockTxRunner{}, logger.NewNop())
	f.sm.SetClock(f.clock.Now)
	f.sm.SetMetrics(f.metrics)
	return f
}

func (f *fixture) pkg(t *testing.T, name string) *catalog.Package {
	t.Helper()
	p, err := f.catalog.Get(name)
	require.NoError(t, err)
	return p
}

func TestProvision_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sm.Provision(ctx, "seller-1")
	require.NoError(t, err)
	assert.False(t, first.HasPackage())
	assert.Equal(t, vo.StatusExpired, first.Status())

	second, err := f.sm.Provision(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, first.Revision(), second.Revision())
	assert.Equal(t, 1, f.repo.WriteCount())
}

func TestActivate_GallopWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sm.Provision(ctx, "seller-1")
	require.NoError(t, err)

	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "gallop"), 30)
	require.NoError(t, err)

	assert.Equal(t, "gallop", sub.PackageName())
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, testutil.BaseTime, sub.StartDate())
	assert.Equal(t, biztime.AddDays(testutil.BaseTime, 30), sub.EndDate())
	assert.Equal(t, 50, sub.Features().MaxListings)
	assert.Equal(t, 2, sub.Revision())
}

func TestActivate_CreatesRowForUnprovisionedSeller(t *testing.T) {
	f := newFixture(t)

	sub, err := f.sm.Activate(context.Background(), "seller-new", f.pkg(t, "trot"), 30)
	require.NoError(t, err)
	assert.Equal(t, "trot", sub.PackageName())

	stored, err := f.sm.Current(context.Background(), "seller-new")
	require.NoError(t, err)
	assert.Equal(t, sub.Revision(), stored.Revision())
}

func TestActivate_RetriesAfterRevisionRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sm.Provision(ctx, "seller-1")
	require.NoError(t, err)

	f.repo.BeforeUpdate = func(*subscription.Subscription) {
		racer, err := f.repo.GetByOwner(ctx, "seller-1")
		require.NoError(t, err)
		require.NoError(t, racer.Activate(f.pkg(t, "trot"), 30, f.clock.Now()))
		require.NoError(t, f.repo.Update(ctx, racer))
	}

	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "gallop"), 30)
	require.NoError(t, err)
	assert.Equal(t, "gallop", sub.PackageName())
	assert.Equal(t, 3, sub.Revision())
	assert.Equal(t, 3, f.repo.UpdateCalls)
}

func TestActivate_PrecheckSkipAndError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recorded := false
	record := WithRecord(func(context.Context, *subscription.Subscription) error {
		recorded = true
		return nil
	})

	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "starter"), 3650,
		WithPrecheck(func(*subscription.Subscription, time.Time) (bool, error) { return true, nil }),
		record,
	)
	require.NoError(t, err)
	assert.False(t, sub.HasPackage())
	assert.False(t, recorded)
	assert.Zero(t, f.repo.WriteCount())

	boom := errors.New("boom")
	_, err = f.sm.Activate(ctx, "seller-1", f.pkg(t, "starter"), 3650,
		WithPrecheck(func(*subscription.Subscription, time.Time) (bool, error) { return false, boom }),
	)
	assert.ErrorIs(t, err, boom)
}

func TestActivate_RecordRunsAfterWrite(t *testing.T) {
	f := newFixture(t)
	var seen *subscription.Subscription

	_, err := f.sm.Activate(context.Background(), "seller-1", f.pkg(t, "trot"), 30,
		WithRecord(func(_ context.Context, activated *subscription.Subscription) error {
			seen = activated
			return nil
		}),
	)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "trot", seen.PackageName())
}

func TestCheckAndEnforce_NoSubscription(t *testing.T) {
	f := newFixture(t)

	decision, err := f.sm.CheckAndEnforce(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoActiveSubscription, decision.Reason)
	assert.Nil(t, decision.Subscription)
}

func TestCheckAndEnforce_ProvisionedNeverActivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sm.Provision(ctx, "seller-1")
	require.NoError(t, err)
	writes := f.repo.WriteCount()

	decision, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoActiveSubscription, decision.Reason)
	assert.Equal(t, writes, f.repo.WriteCount(), "no write for a never-activated seller")
}

func TestCheckAndEnforce_ActiveUntilEndInclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "gallop"), 30)
	require.NoError(t, err)

	f.clock.Set(sub.EndDate())
	decision, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "gallop", decision.Subscription.PackageName())
}

func TestCheckAndEnforce_ExpirySelfHeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "gallop"), 30)
	require.NoError(t, err)

	f.clock.Set(sub.EndDate().Add(time.Second))

	first, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.False(t, first.Allowed)
	assert.Equal(t, ReasonSubscriptionExpired, first.Reason)
	assert.ErrorIs(t, first.Err(), subscription.ErrSubscriptionExpired)
	assert.Equal(t, "starter", first.Subscription.PackageName())
	assert.Equal(t, biztime.AddDays(f.clock.Now(), 3650), first.Subscription.EndDate())
	assert.Equal(t, 3, first.Subscription.Features().MaxListings)

	second, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.NoError(t, second.Err())
	assert.Equal(t, "starter", second.Subscription.PackageName())
	assert.Equal(t, 1, f.metrics.Downgrades())
}

func TestCheckAndEnforce_StarterAlwaysAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "starter"), 3650)
	require.NoError(t, err)

	f.clock.Set(sub.EndDate().Add(24 * time.Hour))
	decision, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, f.metrics.Downgrades())
}

func TestCheckAndEnforce_LosesDowngradeRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "trot"), 30)
	require.NoError(t, err)
	f.clock.Set(sub.EndDate().Add(time.Minute))

	f.repo.BeforeUpdate = func(*subscription.Subscription) {
		racer, err := f.repo.GetByOwner(ctx, "seller-1")
		require.NoError(t, err)
		require.NoError(t, racer.DowngradeToStarter(f.catalog.Starter(), 3650, f.clock.Now()))
		require.NoError(t, f.repo.Update(ctx, racer))
	}

	decision, err := f.sm.CheckAndEnforce(ctx, "seller-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "starter", decision.Subscription.PackageName())
	assert.Zero(t, f.metrics.Downgrades(), "the racer did the write")
}

func TestCheckAndEnforce_ConcurrentExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.sm.Activate(ctx, "seller-1", f.pkg(t, "gallop"), 30)
	require.NoError(t, err)
	f.clock.Set(sub.EndDate().Add(time.Hour))
	writesBefore := f.repo.WriteCount()

	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		decisions = make([]Decision, 2)
		errs      = make([]error, 2)
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			decisions[i], errs[i] = f.sm.CheckAndEnforce(ctx, "seller-1")
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	allowed, denied := 0, 0
	for _, d := range decisions {
		if d.Allowed {
			allowed++
		} else {
			denied++
			assert.Equal(t, ReasonSubscriptionExpired, d.Reason)
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, denied)
	assert.Equal(t, writesBefore+1, f.repo.WriteCount(), "exactly one downgrade write")
	assert.Equal(t, 1, f.metrics.Downgrades())

	final, err := f.sm.Current(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, "starter", final.PackageName())
	assert.Equal(t, sub.Revision()+1, final.Revision())
}

func TestCheckAndEnforce_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.repo.GetError = errors.New("db down")

	_, err := f.sm.CheckAndEnforce(context.Background(), "seller-1")
	assert.Error(t, err)
}
