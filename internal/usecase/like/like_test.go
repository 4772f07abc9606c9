package like

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wishboard/internal/domain"
	"wishboard/internal/repository/wish/db/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

var loggerOnce sync.Once

func testLogger() *zlog.Zerolog {
	loggerOnce.Do(zlog.Init)
	return &zlog.Logger
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	store     *memory.Store
	wishes    *memory.WishesRepository
	usecase   *LikeUsecase
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	wishes := memory.NewWishesRepository(store)
	publisher := &recordingPublisher{}
	uc := NewLikeUsecase(memory.NewTxManager(store), wishes, memory.NewLikesRepository(store), publisher, testLogger())

	return &fixture{store: store, wishes: wishes, usecase: uc, publisher: publisher}
}

func (f *fixture) seedWish(t *testing.T, id string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.wishes.Create(context.Background(), &domain.Wish{
		ID: id, Title: "Trip", OwnerID: "owner", CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *fixture) assertInvariant(t *testing.T, wishID string) {
	t.Helper()
	w, err := f.wishes.GetByID(context.Background(), wishID, "")
	require.NoError(t, err)
	count, err := f.usecase.Count(context.Background(), wishID)
	require.NoError(t, err)
	assert.Equal(t, count, w.LikeCount, "cached counter must equal relationship count")
}

func TestToggle_LikeThenUnlike(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")
	ctx := context.Background()

	res, err := f.usecase.Toggle(ctx, "userA", "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{Liked: true, TotalLikes: 1}, res)
	f.assertInvariant(t, "w1")

	res, err = f.usecase.Toggle(ctx, "userA", "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{Liked: false, TotalLikes: 0}, res)
	f.assertInvariant(t, "w1")

	liked, err := f.usecase.IsLiked(ctx, "userA", "w1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggle_EvenNumberRestoresState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")
	ctx := context.Background()

	_, err := f.usecase.Toggle(ctx, "other", "w1")
	require.NoError(t, err)

	for n := 2; n <= 8; n += 2 {
		for i := 0; i < n; i++ {
			_, err := f.usecase.Toggle(ctx, "userA", "w1")
			require.NoError(t, err)
		}

		liked, err := f.usecase.IsLiked(ctx, "userA", "w1")
		require.NoError(t, err)
		assert.False(t, liked, "after %d toggles", n)

		count, err := f.usecase.Count(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, 1, count, "after %d toggles", n)
		f.assertInvariant(t, "w1")
	}
}

func TestToggle_UnknownWish(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.usecase.Toggle(context.Background(), "userA", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	count, err := f.usecase.Count(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.publisher.events)
}

func TestToggle_RequiresIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.usecase.Toggle(context.Background(), "", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("user_id"))
	assert.True(t, verr.HasField("wish_id"))
}

func TestToggle_ConcurrentUsers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")

	const users = 25
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.usecase.Toggle(context.Background(), fmt.Sprintf("user-%d", i), "w1"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := f.usecase.Count(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, users, count)
	f.assertInvariant(t, "w1")
}

func TestToggle_PublishesEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")

	_, err := f.usecase.Toggle(context.Background(), "userA", "w1")
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, domain.EventLikeToggled, ev.Type)
	assert.Equal(t, "w1", ev.WishID)
	assert.Equal(t, "userA", ev.UserID)
	assert.True(t, ev.Liked)
	assert.Equal(t, 1, ev.TotalLikes)
}

func TestToggle_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")
	f.publisher.err = errors.New("broker down")

	res, err := f.usecase.Toggle(context.Background(), "userA", "w1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

// Mocks for the conflict path, which needs a write that affects no rows.

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type wishRepoMock struct {
	SyncLikeCountFunc func(ctx context.Context, id string) (int, error)
	ListDriftedFunc   func(ctx context.Context) ([]string, error)
}

func (m *wishRepoMock) SyncLikeCount(ctx context.Context, id string) (int, error) {
	return m.SyncLikeCountFunc(ctx, id)
}

func (m *wishRepoMock) ListDrifted(ctx context.Context) ([]string, error) {
	return m.ListDriftedFunc(ctx)
}

type likeRepoMock struct {
	InsertFunc      func(ctx context.Context, like *domain.LikeRelationship) (bool, error)
	DeleteFunc      func(ctx context.Context, userID, wishID string) (bool, error)
	ExistsFunc      func(ctx context.Context, userID, wishID string) (bool, error)
	CountByWishFunc func(ctx context.Context, wishID string) (int, error)
}

func (m *likeRepoMock) Insert(ctx context.Context, like *domain.LikeRelationship) (bool, error) {
	return m.InsertFunc(ctx, like)
}

func (m *likeRepoMock) Delete(ctx context.Context, userID, wishID string) (bool, error) {
	return m.DeleteFunc(ctx, userID, wishID)
}

func (m *likeRepoMock) Exists(ctx context.Context, userID, wishID string) (bool, error) {
	return m.ExistsFunc(ctx, userID, wishID)
}

func (m *likeRepoMock) CountByWish(ctx context.Context, wishID string) (int, error) {
	return m.CountByWishFunc(ctx, wishID)
}

func TestToggle_InsertConflictResolvesByReread(t *testing.T) {
	t.Parallel()

	existsCalls := 0
	likes := &likeRepoMock{
		ExistsFunc: func(context.Context, string, string) (bool, error) {
			existsCalls++
			// First read sees no like; the re-read sees the racing insert.
			return existsCalls > 1, nil
		},
		InsertFunc: func(context.Context, *domain.LikeRelationship) (bool, error) {
			return false, nil
		},
		CountByWishFunc: func(context.Context, string) (int, error) {
			return 1, nil
		},
	}
	wishes := &wishRepoMock{
		SyncLikeCountFunc: func(context.Context, string) (int, error) {
			t.Fatal("counter must not be written after a conflict")
			return 0, nil
		},
	}

	publisher := &recordingPublisher{}
	uc := NewLikeUsecase(txManagerMock{}, wishes, likes, publisher, testLogger())
	res, err := uc.Toggle(context.Background(), "userA", "w1")

	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{Liked: true, TotalLikes: 1}, res)
	assert.Equal(t, 2, existsCalls)
	assert.Empty(t, publisher.events, "the winning toggle publishes, not the raced one")
}

func TestToggle_DeleteConflictResolvesByReread(t *testing.T) {
	t.Parallel()

	existsCalls := 0
	likes := &likeRepoMock{
		ExistsFunc: func(context.Context, string, string) (bool, error) {
			existsCalls++
			return existsCalls == 1, nil
		},
		DeleteFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		CountByWishFunc: func(context.Context, string) (int, error) {
			return 0, nil
		},
	}

	uc := NewLikeUsecase(txManagerMock{}, &wishRepoMock{}, likes, nil, testLogger())
	res, err := uc.Toggle(context.Background(), "userA", "w1")

	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{Liked: false, TotalLikes: 0}, res)
}

func TestToggle_StorageErrorIsSurfaced(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	likes := &likeRepoMock{
		ExistsFunc: func(context.Context, string, string) (bool, error) {
			return false, boom
		},
	}

	uc := NewLikeUsecase(txManagerMock{}, &wishRepoMock{}, likes, nil, testLogger())
	_, err := uc.Toggle(context.Background(), "userA", "w1")
	require.ErrorIs(t, err, boom)
}

func TestToggle_DatabaseConflictIsRetriedOnce(t *testing.T) {
	t.Parallel()

	insertCalls := 0
	likes := &likeRepoMock{
		ExistsFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		InsertFunc: func(context.Context, *domain.LikeRelationship) (bool, error) {
			insertCalls++
			if insertCalls == 1 {
				return false, fmt.Errorf("like w1: %w: deadlock detected", domain.ErrConflict)
			}
			return true, nil
		},
	}
	wishes := &wishRepoMock{
		SyncLikeCountFunc: func(context.Context, string) (int, error) {
			return 1, nil
		},
	}

	publisher := &recordingPublisher{}
	uc := NewLikeUsecase(txManagerMock{}, wishes, likes, publisher, testLogger())
	res, err := uc.Toggle(context.Background(), "userA", "w1")

	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{Liked: true, TotalLikes: 1}, res)
	assert.Equal(t, 2, insertCalls)
	require.Len(t, publisher.events, 1)
	assert.True(t, publisher.events[0].Liked)
}

func TestToggle_RepeatedDatabaseConflictIsSurfaced(t *testing.T) {
	t.Parallel()

	insertCalls := 0
	likes := &likeRepoMock{
		ExistsFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		InsertFunc: func(context.Context, *domain.LikeRelationship) (bool, error) {
			insertCalls++
			return false, fmt.Errorf("like w1: %w: could not serialize access", domain.ErrConflict)
		},
		CountByWishFunc: func(context.Context, string) (int, error) {
			t.Fatal("state must not be re-read after a database conflict")
			return 0, nil
		},
	}

	publisher := &recordingPublisher{}
	uc := NewLikeUsecase(txManagerMock{}, &wishRepoMock{}, likes, publisher, testLogger())
	_, err := uc.Toggle(context.Background(), "userA", "w1")

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, insertCalls)
	assert.Empty(t, publisher.events)
}

func TestReconcileAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedWish(t, "w1")
	f.seedWish(t, "w2")
	ctx := context.Background()

	_, err := f.usecase.Toggle(ctx, "userA", "w1")
	require.NoError(t, err)

	f.store.SetLikeCount("w1", 7)
	f.store.SetLikeCount("w2", 3)

	fixed, err := f.usecase.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)
	f.assertInvariant(t, "w1")
	f.assertInvariant(t, "w2")

	fixed, err = f.usecase.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestReconcile_UnknownWish(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.usecase.Reconcile(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
