package projections

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/relations"
	"github.com/videotube/backend/internal/repositories"
)

type fixture struct {
	store   *repositories.MemoryStore
	builder *Builder
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	resolver := relations.NewResolver(store.Subscriptions(), store.Likes())
	builder := NewBuilder(DefaultConfig(), Stores{
		Users:         store.Users(),
		Videos:        store.Videos(),
		Comments:      store.Comments(),
		Subscriptions: store.Subscriptions(),
		Playlists:     store.Playlists(),
	}, resolver)
	return &fixture{store: store, builder: builder, now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fixture) user(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		ID:               "id-" + username,
		Username:         username,
		FullName:         strings.ToUpper(username),
		Email:            username + "@example.com",
		PasswordHash:     "$2a$10$secret",
		RefreshTokenHash: "refresh-hash",
		Avatar:           models.MediaAsset{URL: "https://cdn.example.com/" + username + ".png", StorageID: "images/" + username},
		CoverImage:       &models.MediaAsset{URL: "https://cdn.example.com/" + username + "-cover.png", StorageID: "images/" + username + "-cover"},
		CreatedAt:        f.now,
		UpdatedAt:        f.now,
	}
	if err := f.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) video(t *testing.T, ownerID, id string, offset time.Duration) models.Video {
	t.Helper()
	video := models.Video{
		ID:        id,
		OwnerID:   ownerID,
		Video:     models.MediaAsset{URL: "https://cdn.example.com/" + id + ".mp4", StorageID: "videos/" + id},
		Thumbnail: models.MediaAsset{URL: "https://cdn.example.com/" + id + ".jpg", StorageID: "images/" + id},
		Title:     "Video " + id,
		Duration:  42,
		CreatedAt: f.now.Add(offset),
		UpdatedAt: f.now.Add(offset),
	}
	if err := f.store.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func (f *fixture) subscribe(t *testing.T, subscriberID, channelID string) {
	t.Helper()
	sub := models.Subscription{ID: subscriberID + "->" + channelID, SubscriberID: subscriberID, ChannelID: channelID, CreatedAt: f.now}
	if err := f.store.Subscriptions().Create(context.Background(), sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func (f *fixture) like(t *testing.T, userID string, target models.LikeTarget, offset time.Duration) {
	t.Helper()
	like := models.Like{ID: userID + ":" + target.ID, LikedBy: userID, Target: target, CreatedAt: f.now.Add(offset)}
	if err := f.store.Likes().Create(context.Background(), like); err != nil {
		t.Fatalf("like: %v", err)
	}
}

func TestBuildChannelProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	f.video(t, alice.ID, "old", 0)
	f.video(t, alice.ID, "new", time.Hour)
	f.video(t, bob.ID, "other", 2*time.Hour)
	f.subscribe(t, bob.ID, alice.ID)
	f.subscribe(t, carol.ID, alice.ID)
	f.subscribe(t, alice.ID, bob.ID)

	profile, err := f.builder.BuildChannelProfile(ctx, "  ALICE ", bob.ID)
	if err != nil {
		t.Fatalf("build channel profile: %v", err)
	}

	if profile.Username != "alice" || profile.SubscribersCount != 2 || profile.ChannelsSubscribedToCount != 1 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.Videos) != 2 || profile.Videos[0].ID != "new" || profile.Videos[1].ID != "old" {
		t.Fatalf("expected channel videos newest first, got %+v", profile.Videos)
	}
	if profile.Videos[0].Owner.Username != "alice" {
		t.Fatalf("expected owner embedded, got %+v", profile.Videos[0].Owner)
	}

	anonymous, err := f.builder.BuildChannelProfile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("build anonymous profile: %v", err)
	}
	if anonymous.IsSubscribed {
		t.Fatal("expected anonymous viewer not to be subscribed")
	}
}

func TestChannelProfileRedaction(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.video(t, alice.ID, "v1", 0)
	if err := f.store.Users().PushWatchHistory(context.Background(), alice.ID, "v1", 100); err != nil {
		t.Fatalf("push history: %v", err)
	}

	for _, viewer := range []string{"", alice.ID, "someone-else"} {
		profile, err := f.builder.BuildChannelProfile(context.Background(), "alice", viewer)
		if err != nil {
			t.Fatalf("build profile: %v", err)
		}

		body, err := json.Marshal(profile)
		if err != nil {
			t.Fatalf("marshal profile: %v", err)
		}
		doc := strings.ToLower(string(body))

		for _, forbidden := range []string{"password", "refresh", "email", "watchhistory", "storageid", "$2a$10$", "images/alice", "videos/v1"} {
			if strings.Contains(doc, forbidden) {
				t.Fatalf("viewer %q: profile leaks %q: %s", viewer, forbidden, body)
			}
		}
	}
}

func TestBuildChannelProfileNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.BuildChannelProfile(context.Background(), "ghost", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestBuildVideoDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	video := f.video(t, alice.ID, "v1", 0)
	f.subscribe(t, bob.ID, alice.ID)
	f.like(t, bob.ID, models.VideoTarget(video.ID), 0)
	f.like(t, alice.ID, models.VideoTarget(video.ID), 0)

	detail, err := f.builder.BuildVideoDetail(ctx, video.ID, bob.ID)
	if err != nil {
		t.Fatalf("build video detail: %v", err)
	}
	if detail.LikesCount != 2 || !detail.IsLiked {
		t.Fatalf("unexpected like facts: %+v", detail)
	}
	if detail.Owner.Username != "alice" || detail.Owner.SubscribersCount != 1 || !detail.Owner.IsSubscribed {
		t.Fatalf("unexpected owner block: %+v", detail.Owner)
	}

	body, _ := json.Marshal(detail)
	if strings.Contains(string(body), "videos/v1") || strings.Contains(string(body), "images/v1") {
		t.Fatalf("video detail leaks storage ids: %s", body)
	}

	anonymous, err := f.builder.BuildVideoDetail(ctx, video.ID, "")
	if err != nil {
		t.Fatalf("build anonymous detail: %v", err)
	}
	if anonymous.IsLiked || anonymous.Owner.IsSubscribed {
		t.Fatalf("expected anonymous flags false, got %+v", anonymous)
	}
}

func TestBuildVideoDetailNotFound(t *testing.T) {
	f := newFixture(t)

	detail, err := f.builder.BuildVideoDetail(context.Background(), "missing", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if detail.ID != "" {
		t.Fatalf("expected zero document, got %+v", detail)
	}
}

func TestBuildWatchHistoryPreservesStoredOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.video(t, bob.ID, "a", 0)
	f.video(t, bob.ID, "b", time.Minute)
	f.video(t, alice.ID, "c", 2*time.Minute)

	for _, id := range []string{"b", "c", "a"} {
		if err := f.store.Users().PushWatchHistory(ctx, alice.ID, id, 100); err != nil {
			t.Fatalf("push history: %v", err)
		}
	}

	history, err := f.builder.BuildWatchHistory(ctx, alice.ID)
	if err != nil {
		t.Fatalf("build watch history: %v", err)
	}

	want := []string{"a", "c", "b"}
	if len(history) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(history))
	}
	for i, id := range want {
		if history[i].ID != id {
			t.Fatalf("position %d: expected %s got %s", i, id, history[i].ID)
		}
	}
	if history[0].Owner.Username != "bob" || history[1].Owner.Username != "alice" {
		t.Fatalf("expected owners embedded, got %+v", history)
	}

	if _, err := f.builder.BuildWatchHistory(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for missing user, got %v", err)
	}
}

func TestBuildLikedVideoFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.video(t, bob.ID, "first", 0)
	f.video(t, bob.ID, "second", 0)
	f.like(t, alice.ID, models.VideoTarget("first"), 0)
	f.like(t, alice.ID, models.VideoTarget("second"), time.Minute)
	f.like(t, alice.ID, models.TweetTarget("tweet-1"), 2*time.Minute)

	feed, err := f.builder.BuildLikedVideoFeed(ctx, alice.ID)
	if err != nil {
		t.Fatalf("build liked feed: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != "second" || feed[1].ID != "first" {
		t.Fatalf("unexpected liked feed: %+v", feed)
	}
	if feed[0].Owner.Username != "bob" {
		t.Fatalf("expected owner embedded, got %+v", feed[0].Owner)
	}
}

func TestCommentsQueryPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	video := f.video(t, alice.ID, "v1", 0)

	for i := 0; i < 25; i++ {
		comment := models.Comment{
			ID:        "c" + string(rune('a'+i)),
			VideoID:   video.ID,
			CreatedBy: bob.ID,
			Content:   "comment",
			CreatedAt: f.now.Add(time.Duration(i) * time.Second),
		}
		if err := f.store.Comments().Create(ctx, comment); err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}
	f.like(t, alice.ID, models.CommentTarget("cy"), 0)

	spec := f.builder.CommentsQuery(video.ID, alice.ID, pagination.Order{Field: "createdAt", Descending: true})
	page, err := pagination.Paginate(ctx, spec, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("paginate comments: %v", err)
	}
	if page.TotalItems != 25 || page.TotalPages != 3 || len(page.Items) != 10 {
		t.Fatalf("unexpected page: %+v", page)
	}
	first := page.Items[0]
	if first.ID != "cy" || !first.IsLiked || first.LikesCount != 1 || first.Author.Username != "bob" {
		t.Fatalf("unexpected first comment: %+v", first)
	}

	last, err := pagination.Paginate(ctx, spec, pagination.Params{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("paginate last page: %v", err)
	}
	if len(last.Items) != 5 || last.HasNext || !last.HasPrev {
		t.Fatalf("unexpected last page: %+v", last)
	}
}

func TestBuildPlaylistKeepsPlaylistOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.video(t, alice.ID, "x", 0)
	f.video(t, alice.ID, "y", time.Minute)

	playlist := models.Playlist{ID: "p1", Title: "mix", CreatedBy: alice.ID, VideoIDs: []string{"y", "gone", "x"}, CreatedAt: f.now}
	if err := f.store.Playlists().Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	detail, err := f.builder.BuildPlaylist(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("build playlist: %v", err)
	}
	if detail.VideosCount != 2 || detail.Videos[0].ID != "y" || detail.Videos[1].ID != "x" {
		t.Fatalf("unexpected playlist videos: %+v", detail.Videos)
	}

	if _, err := f.builder.BuildPlaylist(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSubscriptionsQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	f.subscribe(t, alice.ID, bob.ID)
	f.subscribe(t, carol.ID, bob.ID)

	page, err := pagination.Paginate(ctx, f.builder.SubscriptionsQuery(alice.ID), pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("paginate subscriptions: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Username != "bob" || page.Items[0].SubscribersCount != 2 {
		t.Fatalf("unexpected subscriptions page: %+v", page)
	}
}
