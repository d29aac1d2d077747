package handlers

import (
	"net/http"
	"testing"

	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/projections"
)

func TestPlaylistLifecycle(t *testing.T) {
	srv := newTestServer(t)
	aliceID, aliceToken := srv.signUp("alice")
	_, bobToken := srv.signUp("bob")
	videos := srv.seedVideos(aliceID, 2)

	rec := srv.json(http.MethodPost, "/api/v1/playlists", aliceToken, playlistRequest{Name: "Favourites", Description: "best of"})
	expectStatus(t, rec, http.StatusCreated)
	var detail projections.PlaylistDetail
	decodeData(t, rec, &detail)
	if detail.Title != "Favourites" || detail.Owner.Username != "alice" || len(detail.Videos) != 0 {
		t.Fatalf("unexpected playlist: %+v", detail)
	}
	base := "/api/v1/playlists/" + detail.ID

	for _, v := range []string{videos[1].ID, videos[0].ID, videos[1].ID} {
		expectStatus(t, srv.json(http.MethodPost, base+"/videos/"+v, aliceToken, nil), http.StatusOK)
	}
	expectStatus(t, srv.json(http.MethodPost, base+"/videos/"+videos[0].ID, bobToken, nil), http.StatusForbidden)
	expectStatus(t, srv.json(http.MethodPost, base+"/videos/missing", aliceToken, nil), http.StatusNotFound)

	get := srv.do(request{method: http.MethodGet, path: base})
	expectStatus(t, get, http.StatusOK)
	decodeData(t, get, &detail)
	if detail.VideosCount != 2 || detail.Videos[0].ID != videos[1].ID || detail.Videos[1].ID != videos[0].ID {
		t.Fatalf("expected videos in insertion order, got %+v", detail.Videos)
	}

	removed := srv.json(http.MethodDelete, base+"/videos/"+videos[1].ID, aliceToken, nil)
	expectStatus(t, removed, http.StatusOK)
	decodeData(t, removed, &detail)
	if detail.VideosCount != 1 {
		t.Fatalf("expected one video left, got %d", detail.VideosCount)
	}

	list := srv.do(request{method: http.MethodGet, path: "/api/v1/playlists", token: aliceToken})
	expectStatus(t, list, http.StatusOK)
	var page pagination.Page[projections.PlaylistSummary]
	decodeData(t, list, &page)
	if page.TotalItems != 1 || page.Items[0].VideosCount != 1 {
		t.Fatalf("unexpected playlists page: %+v", page)
	}

	expectStatus(t, srv.json(http.MethodPatch, base, bobToken, playlistRequest{Name: "Stolen"}), http.StatusForbidden)
	expectStatus(t, srv.json(http.MethodPatch, base, aliceToken, playlistRequest{Name: "Renamed"}), http.StatusOK)
	expectStatus(t, srv.json(http.MethodDelete, base, aliceToken, nil), http.StatusOK)
	expectStatus(t, srv.do(request{method: http.MethodGet, path: base}), http.StatusNotFound)
}
