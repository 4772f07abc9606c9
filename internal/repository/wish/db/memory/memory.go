package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"wishboard/internal/domain"
)

type likeKey struct {
	userID string
	wishID string
}

// Store keeps wishes, likes and profiles in process. All access is serialised
// by one mutex; a transaction holds it for its whole callback.
type Store struct {
	mu       sync.Mutex
	wishes   map[string]domain.Wish
	likes    map[likeKey]domain.LikeRelationship
	profiles map[string]domain.Profile
}

func NewStore() *Store {
	return &Store{
		wishes:   make(map[string]domain.Wish),
		likes:    make(map[likeKey]domain.LikeRelationship),
		profiles: make(map[string]domain.Profile),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// acquire locks the store unless ctx already runs inside one of its transactions.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	wishes   map[string]domain.Wish
	likes    map[likeKey]domain.LikeRelationship
	profiles map[string]domain.Profile
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		wishes:   make(map[string]domain.Wish, len(s.wishes)),
		likes:    make(map[likeKey]domain.LikeRelationship, len(s.likes)),
		profiles: make(map[string]domain.Profile, len(s.profiles)),
	}
	for k, v := range s.wishes {
		v.Tags = slices.Clone(v.Tags)
		snap.wishes[k] = v
	}
	for k, v := range s.likes {
		snap.likes[k] = v
	}
	for k, v := range s.profiles {
		snap.profiles[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.wishes = snap.wishes
	s.likes = snap.likes
	s.profiles = snap.profiles
}

type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if m.store.inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()

	defer func() {
		if r := recover(); r != nil {
			m.store.restore(snap)
			panic(r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, m.store)); err != nil {
		m.store.restore(snap)
		return err
	}

	return nil
}

type WishesRepository struct {
	store *Store
}

func NewWishesRepository(store *Store) *WishesRepository {
	return &WishesRepository{store: store}
}

func (r *WishesRepository) Create(ctx context.Context, w *domain.Wish) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.wishes[w.ID]; ok {
		return fmt.Errorf("wish %s: %w", w.ID, domain.ErrAlreadyExists)
	}

	stored := *w
	stored.Tags = slices.Clone(w.Tags)
	stored.OwnerName, stored.OwnerAvatarURL, stored.IsLiked = "", "", false
	r.store.wishes[w.ID] = stored

	return nil
}

func (r *WishesRepository) GetByID(ctx context.Context, id, viewerID string) (*domain.Wish, error) {
	defer r.store.acquire(ctx)()

	w, ok := r.store.wishes[id]
	if !ok {
		return nil, fmt.Errorf("wish %s: %w", id, domain.ErrNotFound)
	}

	joined := r.store.join(w, viewerID)
	return &joined, nil
}

func (r *WishesRepository) List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error) {
	defer r.store.acquire(ctx)()

	wishes := make([]domain.Wish, 0, len(r.store.wishes))
	for _, w := range r.store.wishes {
		if filter.OwnerID != "" && w.OwnerID != filter.OwnerID {
			continue
		}
		wishes = append(wishes, r.store.join(w, filter.ViewerID))
	}

	sort.Slice(wishes, func(i, j int) bool {
		if !wishes[i].CreatedAt.Equal(wishes[j].CreatedAt) {
			return wishes[i].CreatedAt.After(wishes[j].CreatedAt)
		}
		return strings.Compare(wishes[i].ID, wishes[j].ID) > 0
	})

	return wishes, nil
}

func (r *WishesRepository) Lock(ctx context.Context, id string) (string, error) {
	defer r.store.acquire(ctx)()

	w, ok := r.store.wishes[id]
	if !ok {
		return "", fmt.Errorf("wish %s: %w", id, domain.ErrNotFound)
	}
	return w.OwnerID, nil
}

func (r *WishesRepository) Update(ctx context.Context, id string, in domain.UpdateWishInput, updatedAt time.Time) error {
	defer r.store.acquire(ctx)()

	w, ok := r.store.wishes[id]
	if !ok {
		return fmt.Errorf("wish %s: %w", id, domain.ErrNotFound)
	}

	if in.Title != nil {
		w.Title = *in.Title
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.ImageURL != nil {
		w.ImageURL = *in.ImageURL
	}
	if in.Link != nil {
		w.Link = *in.Link
	}
	if in.Tags != nil {
		w.Tags = slices.Clone(*in.Tags)
	}
	if in.Status != nil {
		w.Status = *in.Status
	}
	w.UpdatedAt = updatedAt

	r.store.wishes[id] = w
	return nil
}

func (r *WishesRepository) Delete(ctx context.Context, id string) (bool, error) {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.wishes[id]; !ok {
		return false, nil
	}

	delete(r.store.wishes, id)
	for k := range r.store.likes {
		if k.wishID == id {
			delete(r.store.likes, k)
		}
	}

	return true, nil
}

func (r *WishesRepository) SyncLikeCount(ctx context.Context, id string) (int, error) {
	defer r.store.acquire(ctx)()

	w, ok := r.store.wishes[id]
	if !ok {
		return 0, fmt.Errorf("wish %s: %w", id, domain.ErrNotFound)
	}

	w.LikeCount = r.store.countLikes(id)
	r.store.wishes[id] = w

	return w.LikeCount, nil
}

func (r *WishesRepository) ListDrifted(ctx context.Context) ([]string, error) {
	defer r.store.acquire(ctx)()

	var ids []string
	for id, w := range r.store.wishes {
		if w.LikeCount != r.store.countLikes(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	return ids, nil
}

func (r *WishesRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	defer r.store.acquire(ctx)()

	r.store.profiles[p.ID] = *p
	return nil
}

func (r *WishesRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	defer r.store.acquire(ctx)()

	p, ok := r.store.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

type LikesRepository struct {
	store *Store
}

func NewLikesRepository(store *Store) *LikesRepository {
	return &LikesRepository{store: store}
}

func (r *LikesRepository) Insert(ctx context.Context, like *domain.LikeRelationship) (bool, error) {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.wishes[like.WishID]; !ok {
		return false, fmt.Errorf("like %s: %w", like.WishID, domain.ErrNotFound)
	}

	key := likeKey{userID: like.UserID, wishID: like.WishID}
	if _, ok := r.store.likes[key]; ok {
		return false, nil
	}

	r.store.likes[key] = *like
	return true, nil
}

func (r *LikesRepository) Delete(ctx context.Context, userID, wishID string) (bool, error) {
	defer r.store.acquire(ctx)()

	key := likeKey{userID: userID, wishID: wishID}
	if _, ok := r.store.likes[key]; !ok {
		return false, nil
	}

	delete(r.store.likes, key)
	return true, nil
}

func (r *LikesRepository) Exists(ctx context.Context, userID, wishID string) (bool, error) {
	defer r.store.acquire(ctx)()

	_, ok := r.store.likes[likeKey{userID: userID, wishID: wishID}]
	return ok, nil
}

func (r *LikesRepository) CountByWish(ctx context.Context, wishID string) (int, error) {
	defer r.store.acquire(ctx)()

	return r.store.countLikes(wishID), nil
}

// SetLikeCount overwrites the cached counter without touching likes.
func (s *Store) SetLikeCount(id string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.wishes[id]; ok {
		w.LikeCount = count
		s.wishes[id] = w
	}
}

func (s *Store) countLikes(wishID string) int {
	n := 0
	for k := range s.likes {
		if k.wishID == wishID {
			n++
		}
	}
	return n
}

func (s *Store) join(w domain.Wish, viewerID string) domain.Wish {
	w.Tags = slices.Clone(w.Tags)
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if p, ok := s.profiles[w.OwnerID]; ok {
		w.OwnerName = p.FullName
		w.OwnerAvatarURL = p.AvatarURL
	}
	if viewerID != "" {
		_, w.IsLiked = s.likes[likeKey{userID: viewerID, wishID: w.ID}]
	}
	return w
}
