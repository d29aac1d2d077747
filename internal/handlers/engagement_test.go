package handlers

import (
	"net/http"
	"testing"

	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/projections"
	"github.com/videotube/backend/internal/service"
)

func TestToggleVideoLike(t *testing.T) {
	srv := newTestServer(t)
	aliceID, _ := srv.signUp("alice")
	_, bobToken := srv.signUp("bob")
	video := srv.seedVideos(aliceID, 1)[0]
	path := "/api/v1/likes/toggle/v/" + video.ID

	for i, want := range []bool{true, false, true} {
		rec := srv.json(http.MethodPost, path, bobToken, nil)
		expectStatus(t, rec, http.StatusOK)
		var resp likeResponse
		decodeData(t, rec, &resp)
		if resp.IsLiked != want {
			t.Fatalf("toggle %d: expected isLiked=%v, got %+v", i+1, want, resp)
		}
	}

	detail := srv.do(request{method: http.MethodGet, path: "/api/v1/videos/" + video.ID, token: bobToken})
	expectStatus(t, detail, http.StatusOK)
	var view projections.VideoDetail
	decodeData(t, detail, &view)
	if view.LikesCount != 1 || !view.IsLiked {
		t.Fatalf("expected one like by bob, got %+v", view)
	}

	feed := srv.do(request{method: http.MethodGet, path: "/api/v1/likes/videos", token: bobToken})
	expectStatus(t, feed, http.StatusOK)
	var liked []projections.VideoSummary
	decodeData(t, feed, &liked)
	if len(liked) != 1 || liked[0].ID != video.ID {
		t.Fatalf("expected liked feed with the video, got %+v", liked)
	}

	paged := srv.do(request{method: http.MethodGet, path: "/api/v1/likes/videos?page=1&limit=5", token: bobToken})
	expectStatus(t, paged, http.StatusOK)
	var page pagination.Page[projections.VideoSummary]
	decodeData(t, paged, &page)
	if page.TotalItems != 1 || page.Limit != 5 {
		t.Fatalf("unexpected liked page: %+v", page)
	}
}

func TestToggleLikeOnMissingTargets(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp("alice")

	expectStatus(t, srv.json(http.MethodPost, "/api/v1/likes/toggle/v/missing", token, nil), http.StatusNotFound)
	expectStatus(t, srv.json(http.MethodPost, "/api/v1/likes/toggle/c/missing", token, nil), http.StatusNotFound)
}

func TestSubscriptions(t *testing.T) {
	srv := newTestServer(t)
	aliceID, _ := srv.signUp("alice")
	_, bobToken := srv.signUp("bob")
	subscribe := "/api/v1/subscriptions/subscribe/" + aliceID

	expectStatus(t, srv.json(http.MethodPost, subscribe, bobToken, nil), http.StatusCreated)
	expectStatus(t, srv.json(http.MethodPost, subscribe, bobToken, nil), http.StatusConflict)

	list := srv.do(request{method: http.MethodGet, path: "/api/v1/subscriptions", token: bobToken})
	expectStatus(t, list, http.StatusOK)
	var page pagination.Page[projections.SubscribedChannel]
	decodeData(t, list, &page)
	if page.TotalItems != 1 || page.Items[0].Username != "alice" || page.Items[0].SubscribersCount != 1 {
		t.Fatalf("unexpected subscriptions page: %+v", page)
	}

	toggle := srv.json(http.MethodPost, "/api/v1/subscriptions/toggle/"+aliceID, bobToken, nil)
	expectStatus(t, toggle, http.StatusOK)
	var resp subscriptionResponse
	decodeData(t, toggle, &resp)
	if resp.Result != service.ToggleRemoved || resp.IsSubscribed {
		t.Fatalf("expected toggle to remove the subscription, got %+v", resp)
	}

	expectStatus(t, srv.json(http.MethodPost, "/api/v1/subscriptions/unsubscribe/"+aliceID, bobToken, nil), http.StatusNotFound)
	expectStatus(t, srv.json(http.MethodPost, "/api/v1/subscriptions/subscribe/missing", bobToken, nil), http.StatusNotFound)
}
