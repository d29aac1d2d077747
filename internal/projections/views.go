package projections

import (
	"time"

	"github.com/videotube/backend/internal/models"
)

// Output types list exactly the fields that may leave the service. Storage
// ids, credentials and watch history have no field to land in.

// MediaView is the public view of a stored media object.
type MediaView struct {
	URL string `json:"url"`
}

// OwnerSummary is the compact identity embedded in listings.
type OwnerSummary struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   MediaView `json:"avatar"`
}

// VideoSummary is a video as shown in feeds and listings.
type VideoSummary struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   MediaView    `json:"thumbnail"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"owner"`
}

// ChannelProfile is the public page of a channel.
type ChannelProfile struct {
	ID                        string         `json:"id"`
	Username                  string         `json:"username"`
	FullName                  string         `json:"fullName"`
	Avatar                    MediaView      `json:"avatar"`
	CoverImage                *MediaView     `json:"coverImage,omitempty"`
	SubscribersCount          int            `json:"subscribersCount"`
	ChannelsSubscribedToCount int            `json:"channelsSubscribedToCount"`
	IsSubscribed              bool           `json:"isSubscribed"`
	Videos                    []VideoSummary `json:"videos"`
	CreatedAt                 time.Time      `json:"createdAt"`
}

// VideoOwner is the channel block embedded in a video detail page.
type VideoOwner struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName"`
	Avatar           MediaView `json:"avatar"`
	SubscribersCount int       `json:"subscribersCount"`
	IsSubscribed     bool      `json:"isSubscribed"`
}

// VideoDetail is the video watch page.
type VideoDetail struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoFile   MediaView  `json:"videoFile"`
	Thumbnail   MediaView  `json:"thumbnail"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Owner       VideoOwner `json:"owner"`
	LikesCount  int        `json:"likesCount"`
	IsLiked     bool       `json:"isLiked"`
}

// Account is a user's view of their own profile.
type Account struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email"`
	Avatar     MediaView  `json:"avatar"`
	CoverImage *MediaView `json:"coverImage,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CommentView is a comment with its author and like facts.
type CommentView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Author     OwnerSummary `json:"author"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// SubscribedChannel is one entry in a user's subscription list.
type SubscribedChannel struct {
	ChannelID        string    `json:"channelId"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName"`
	Avatar           MediaView `json:"avatar"`
	SubscribersCount int       `json:"subscribersCount"`
	SubscribedAt     time.Time `json:"subscribedAt"`
}

// PlaylistSummary is a playlist as shown in listings.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideosCount int       `json:"videosCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist with its videos resolved in playlist order.
type PlaylistDetail struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Owner       OwnerSummary   `json:"owner"`
	Videos      []VideoSummary `json:"videos"`
	VideosCount int            `json:"videosCount"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func mediaView(asset models.MediaAsset) MediaView {
	return MediaView{URL: asset.URL}
}

func optionalMediaView(asset *models.MediaAsset) *MediaView {
	if asset == nil || asset.IsZero() {
		return nil
	}
	view := mediaView(*asset)
	return &view
}

func ownerSummary(u models.User) OwnerSummary {
	return OwnerSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: mediaView(u.Avatar)}
}

func videoSummary(v models.Video, owner OwnerSummary) VideoSummary {
	return VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   mediaView(v.Thumbnail),
		Duration:    v.Duration,
		Views:       v.Views,
		CreatedAt:   v.CreatedAt,
		Owner:       owner,
	}
}

// AccountView projects a user onto their self view.
func AccountView(u models.User) Account {
	return Account{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Avatar:     mediaView(u.Avatar),
		CoverImage: optionalMediaView(u.CoverImage),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// PlaylistView projects a playlist onto its summary.
func PlaylistView(p models.Playlist) PlaylistSummary {
	return PlaylistSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		VideosCount: len(p.VideoIDs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
