package repositories

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
)

// MemoryStore keeps every entity in process memory. It backs tests and
// VIDEOTUBE_STORE=memory local runs and enforces the same uniqueness rules as
// the PostgreSQL schema.
type MemoryStore struct {
	mu  sync.RWMutex
	seq int64

	users     map[string]memUser
	videos    map[string]memVideo
	comments  map[string]memComment
	likes     map[likeKey]memLike
	subs      map[subKey]memSub
	playlists map[string]memPlaylist
}

type likeKey struct {
	likedBy string
	kind    models.LikeKind
	id      string
}

type subKey struct {
	subscriber string
	channel    string
}

type memUser struct {
	models.User
	seq int64
}

type memVideo struct {
	models.Video
	seq int64
}

type memComment struct {
	models.Comment
	seq int64
}

type memLike struct {
	models.Like
	seq int64
}

type memSub struct {
	models.Subscription
	seq int64
}

type memPlaylist struct {
	models.Playlist
	seq int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]memUser),
		videos:    make(map[string]memVideo),
		comments:  make(map[string]memComment),
		likes:     make(map[likeKey]memLike),
		subs:      make(map[subKey]memSub),
		playlists: make(map[string]memPlaylist),
	}
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Videos exposes the store as a VideoRepository.
func (s *MemoryStore) Videos() VideoRepository { return memoryVideos{s} }

// Comments exposes the store as a CommentRepository.
func (s *MemoryStore) Comments() CommentRepository { return memoryComments{s} }

// Likes exposes the store as a LikeRepository.
func (s *MemoryStore) Likes() LikeRepository { return memoryLikes{s} }

// Subscriptions exposes the store as a SubscriptionRepository.
func (s *MemoryStore) Subscriptions() SubscriptionRepository { return memorySubscriptions{s} }

// Playlists exposes the store as a PlaylistRepository.
func (s *MemoryStore) Playlists() PlaylistRepository { return memoryPlaylists{s} }

func (s *MemoryStore) next() int64 {
	s.seq++
	return s.seq
}

func cloneUser(u models.User) models.User {
	u.WatchHistory = slices.Clone(u.WatchHistory)
	if u.CoverImage != nil {
		cover := *u.CoverImage
		u.CoverImage = &cover
	}
	return u
}

func clonePlaylist(p models.Playlist) models.Playlist {
	p.VideoIDs = slices.Clone(p.VideoIDs)
	return p
}

func window[T any](items []T, offset, limit int) []T {
	if offset < 0 || limit <= 0 || offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = memUser{User: cloneUser(user), seq: r.s.next()}
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return cloneUser(u.User), nil
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	return r.findBy(func(u models.User) bool { return u.Username == models.NormalizeHandle(username) })
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	return r.findBy(func(u models.User) bool { return u.Email == models.NormalizeHandle(email) })
}

func (r memoryUsers) findBy(match func(models.User) bool) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u.User) {
			return cloneUser(u.User), nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r memoryUsers) FindMany(_ context.Context, ids []string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users []models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, cloneUser(u.User))
		}
	}
	return users, nil
}

func (r memoryUsers) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != user.ID && (existing.Username == user.Username || existing.Email == user.Email) {
			return ErrConflict
		}
	}

	updated := cloneUser(user)
	updated.RefreshTokenHash = current.RefreshTokenHash
	updated.WatchHistory = current.WatchHistory
	updated.CreatedAt = current.CreatedAt
	r.s.users[user.ID] = memUser{User: updated, seq: current.seq}
	return nil
}

func (r memoryUsers) SetRefreshTokenHash(_ context.Context, userID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.RefreshTokenHash = hash
	r.s.users[userID] = u
	return nil
}

func (r memoryUsers) PushWatchHistory(_ context.Context, userID, videoID string, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	history := []string{videoID}
	for _, id := range u.WatchHistory {
		if id != videoID {
			history = append(history, id)
		}
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	u.WatchHistory = history
	r.s.users[userID] = u
	return nil
}

type memoryVideos struct{ s *MemoryStore }

func (r memoryVideos) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[video.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.videos[video.ID] = memVideo{Video: video, seq: r.s.next()}
	return nil
}

func (r memoryVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return v.Video, nil
}

func (r memoryVideos) FindMany(_ context.Context, ids []string) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var videos []models.Video
	for _, id := range ids {
		if v, ok := r.s.videos[id]; ok {
			videos = append(videos, v.Video)
		}
	}
	return videos, nil
}

func (r memoryVideos) matching(filter VideoFilter) []memVideo {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	owner := strings.TrimSpace(filter.OwnerID)

	var matched []memVideo
	for _, v := range r.s.videos {
		if owner != "" && v.OwnerID != owner {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(v.Title), query) &&
			!strings.Contains(strings.ToLower(v.Description), query) {
			continue
		}
		matched = append(matched, v)
	}
	return matched
}

func (r memoryVideos) List(_ context.Context, filter VideoFilter, order pagination.Order, offset, limit int) ([]models.Video, error) {
	if order.IsZero() {
		return nil, pagination.ErrUnordered
	}
	if !slices.Contains(VideoSortFields, order.Field) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, order.Field)
	}

	r.s.mu.RLock()
	matched := r.matching(filter)
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return lessVideo(matched[i], matched[j], order)
	})

	var videos []models.Video
	for _, v := range window(matched, offset, limit) {
		videos = append(videos, v.Video)
	}
	return videos, nil
}

func lessVideo(a, b memVideo, order pagination.Order) bool {
	cmp := 0
	switch order.Field {
	case "createdAt":
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		cmp = a.UpdatedAt.Compare(b.UpdatedAt)
	case "views":
		cmp = compareOrdered(a.Views, b.Views)
	case "duration":
		cmp = compareOrdered(a.Duration, b.Duration)
	case "title":
		cmp = strings.Compare(a.Title, b.Title)
	}
	if cmp == 0 {
		cmp = compareOrdered(a.seq, b.seq)
	}
	if order.Descending {
		return cmp > 0
	}
	return cmp < 0
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r memoryVideos) Count(_ context.Context, filter VideoFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r memoryVideos) history(userID string) []models.Video {
	u, ok := r.s.users[userID]
	if !ok {
		return nil
	}
	var videos []models.Video
	for _, id := range u.WatchHistory {
		if v, ok := r.s.videos[id]; ok {
			videos = append(videos, v.Video)
		}
	}
	return videos
}

func (r memoryVideos) ListWatchHistory(_ context.Context, userID string, offset, limit int) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return window(r.history(userID), offset, limit), nil
}

func (r memoryVideos) CountWatchHistory(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.history(userID)), nil
}

func (r memoryVideos) liked(userID string) []models.Video {
	var likes []memLike
	for _, l := range r.s.likes {
		if l.LikedBy != userID || l.Target.Kind != models.LikeKindVideo {
			continue
		}
		if _, ok := r.s.videos[l.Target.ID]; ok {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		if c := likes[i].CreatedAt.Compare(likes[j].CreatedAt); c != 0 {
			return c > 0
		}
		return likes[i].seq > likes[j].seq
	})

	videos := make([]models.Video, 0, len(likes))
	for _, l := range likes {
		videos = append(videos, r.s.videos[l.Target.ID].Video)
	}
	return videos
}

func (r memoryVideos) ListLikedBy(_ context.Context, userID string, offset, limit int) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return window(r.liked(userID), offset, limit), nil
}

func (r memoryVideos) CountLikedBy(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.liked(userID)), nil
}

func (r memoryVideos) Update(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.videos[video.ID]
	if !ok {
		return ErrNotFound
	}
	current.Title = video.Title
	current.Description = video.Description
	current.Thumbnail = video.Thumbnail
	current.UpdatedAt = video.UpdatedAt
	r.s.videos[video.ID] = current
	return nil
}

func (r memoryVideos) IncrementViews(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.Views++
	r.s.videos[id] = v
	return nil
}

func (r memoryVideos) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)

	for commentID, c := range r.s.comments {
		if c.VideoID == id {
			delete(r.s.comments, commentID)
			r.s.deleteLikesOn(models.CommentTarget(commentID))
		}
	}
	r.s.deleteLikesOn(models.VideoTarget(id))

	for userID, u := range r.s.users {
		if slices.Contains(u.WatchHistory, id) {
			u.WatchHistory = slices.DeleteFunc(slices.Clone(u.WatchHistory), func(v string) bool { return v == id })
			r.s.users[userID] = u
		}
	}
	for playlistID, p := range r.s.playlists {
		if slices.Contains(p.VideoIDs, id) {
			p.VideoIDs = slices.DeleteFunc(slices.Clone(p.VideoIDs), func(v string) bool { return v == id })
			r.s.playlists[playlistID] = p
		}
	}
	return nil
}

// deleteLikesOn must be called with mu held.
func (s *MemoryStore) deleteLikesOn(target models.LikeTarget) {
	for key := range s.likes {
		if key.kind == target.Kind && key.id == target.ID {
			delete(s.likes, key)
		}
	}
}

type memoryComments struct{ s *MemoryStore }

func (r memoryComments) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[comment.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return ErrNotFound
	}
	r.s.comments[comment.ID] = memComment{Comment: comment, seq: r.s.next()}
	return nil
}

func (r memoryComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return c.Comment, nil
}

func (r memoryComments) ListByVideo(_ context.Context, videoID string, order pagination.Order, offset, limit int) ([]models.Comment, error) {
	if order.IsZero() {
		return nil, pagination.ErrUnordered
	}
	if !slices.Contains(CommentSortFields, order.Field) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, order.Field)
	}

	r.s.mu.RLock()
	var matched []memComment
	for _, c := range r.s.comments {
		if c.VideoID == videoID {
			matched = append(matched, c)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		cmp := a.CreatedAt.Compare(b.CreatedAt)
		if order.Field == "updatedAt" {
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if cmp == 0 {
			cmp = compareOrdered(a.seq, b.seq)
		}
		if order.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	var comments []models.Comment
	for _, c := range window(matched, offset, limit) {
		comments = append(comments, c.Comment)
	}
	return comments, nil
}

func (r memoryComments) CountByVideo(_ context.Context, videoID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.comments {
		if c.VideoID == videoID {
			n++
		}
	}
	return n, nil
}

func (r memoryComments) Update(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	current.Content = comment.Content
	current.UpdatedAt = comment.UpdatedAt
	r.s.comments[comment.ID] = current
	return nil
}

func (r memoryComments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.comments, id)
	r.s.deleteLikesOn(models.CommentTarget(id))
	return nil
}

type memoryLikes struct{ s *MemoryStore }

func keyOf(likedBy string, target models.LikeTarget) likeKey {
	return likeKey{likedBy: likedBy, kind: target.Kind, id: target.ID}
}

func (r memoryLikes) Exists(_ context.Context, likedBy string, target models.LikeTarget) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.likes[keyOf(likedBy, target)]
	return ok, nil
}

func (r memoryLikes) Create(_ context.Context, like models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(like.LikedBy, like.Target)
	if _, ok := r.s.likes[key]; ok {
		return ErrConflict
	}
	r.s.likes[key] = memLike{Like: like, seq: r.s.next()}
	return nil
}

func (r memoryLikes) Delete(_ context.Context, likedBy string, target models.LikeTarget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(likedBy, target)
	if _, ok := r.s.likes[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.likes, key)
	return nil
}

func (r memoryLikes) CountByTarget(_ context.Context, target models.LikeTarget) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for key := range r.s.likes {
		if key.kind == target.Kind && key.id == target.ID {
			n++
		}
	}
	return n, nil
}

type memorySubscriptions struct{ s *MemoryStore }

func (r memorySubscriptions) Exists(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.subs[subKey{subscriber: subscriberID, channel: channelID}]
	return ok, nil
}

func (r memorySubscriptions) Create(_ context.Context, sub models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := subKey{subscriber: sub.SubscriberID, channel: sub.ChannelID}
	if _, ok := r.s.subs[key]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[sub.ChannelID]; !ok {
		return ErrNotFound
	}
	r.s.subs[key] = memSub{Subscription: sub, seq: r.s.next()}
	return nil
}

func (r memorySubscriptions) Delete(_ context.Context, subscriberID, channelID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := subKey{subscriber: subscriberID, channel: channelID}
	if _, ok := r.s.subs[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.subs, key)
	return nil
}

func (r memorySubscriptions) CountByChannel(_ context.Context, channelID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for key := range r.s.subs {
		if key.channel == channelID {
			n++
		}
	}
	return n, nil
}

func (r memorySubscriptions) CountBySubscriber(_ context.Context, subscriberID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for key := range r.s.subs {
		if key.subscriber == subscriberID {
			n++
		}
	}
	return n, nil
}

func (r memorySubscriptions) ListBySubscriber(_ context.Context, subscriberID string, offset, limit int) ([]models.Subscription, error) {
	r.s.mu.RLock()
	var matched []memSub
	for _, sub := range r.s.subs {
		if sub.SubscriberID == subscriberID {
			matched = append(matched, sub)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if c := matched[i].CreatedAt.Compare(matched[j].CreatedAt); c != 0 {
			return c > 0
		}
		return matched[i].seq > matched[j].seq
	})

	var subs []models.Subscription
	for _, sub := range window(matched, offset, limit) {
		subs = append(subs, sub.Subscription)
	}
	return subs, nil
}

type memoryPlaylists struct{ s *MemoryStore }

func (r memoryPlaylists) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[playlist.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[playlist.CreatedBy]; !ok {
		return ErrNotFound
	}
	r.s.playlists[playlist.ID] = memPlaylist{Playlist: clonePlaylist(playlist), seq: r.s.next()}
	return nil
}

func (r memoryPlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	return clonePlaylist(p.Playlist), nil
}

func (r memoryPlaylists) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]models.Playlist, error) {
	r.s.mu.RLock()
	var matched []memPlaylist
	for _, p := range r.s.playlists {
		if p.CreatedBy == ownerID {
			matched = append(matched, p)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if c := matched[i].CreatedAt.Compare(matched[j].CreatedAt); c != 0 {
			return c > 0
		}
		return matched[i].seq > matched[j].seq
	})

	var playlists []models.Playlist
	for _, p := range window(matched, offset, limit) {
		playlists = append(playlists, clonePlaylist(p.Playlist))
	}
	return playlists, nil
}

func (r memoryPlaylists) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, p := range r.s.playlists {
		if p.CreatedBy == ownerID {
			n++
		}
	}
	return n, nil
}

func (r memoryPlaylists) Update(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.playlists[playlist.ID]
	if !ok {
		return ErrNotFound
	}
	current.Title = playlist.Title
	current.Description = playlist.Description
	current.VideoIDs = slices.Clone(playlist.VideoIDs)
	current.UpdatedAt = playlist.UpdatedAt
	r.s.playlists[playlist.ID] = current
	return nil
}

func (r memoryPlaylists) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.playlists, id)
	return nil
}
