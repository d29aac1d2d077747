package models

import (
	"strings"
	"time"
)

// MediaAsset references an object held in external media storage.
type MediaAsset struct {
	URL       string
	StorageID string
}

// IsZero reports whether the asset points at nothing.
func (a MediaAsset) IsZero() bool {
	return a.URL == "" && a.StorageID == ""
}

// User represents an account (and channel) within the platform.
type User struct {
	ID               string
	Username         string
	FullName         string
	Email            string
	PasswordHash     string
	Avatar           MediaAsset
	CoverImage       *MediaAsset
	RefreshTokenHash string
	WatchHistory     []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Video is an uploaded video owned by a user.
type Video struct {
	ID          string
	OwnerID     string
	Video       MediaAsset
	Thumbnail   MediaAsset
	Title       string
	Description string
	Duration    float64
	Views       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a text comment left on a video.
type Comment struct {
	ID        string
	VideoID   string
	CreatedBy string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeKind names the entity type a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// Valid reports whether k is one of the known like kinds.
func (k LikeKind) Valid() bool {
	switch k {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return true
	}
	return false
}

// LikeTarget identifies exactly one liked entity.
type LikeTarget struct {
	Kind LikeKind
	ID   string
}

// VideoTarget returns the like target for a video.
func VideoTarget(id string) LikeTarget { return LikeTarget{Kind: LikeKindVideo, ID: id} }

// CommentTarget returns the like target for a comment.
func CommentTarget(id string) LikeTarget { return LikeTarget{Kind: LikeKindComment, ID: id} }

// TweetTarget returns the like target for a tweet.
func TweetTarget(id string) LikeTarget { return LikeTarget{Kind: LikeKindTweet, ID: id} }

// Like records that a user liked a target. At most one exists per (LikedBy, Target).
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	CreatedAt time.Time
}

// Subscription records that Subscriber follows Channel.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an ordered, user-curated list of videos.
type Playlist struct {
	ID          string
	Title       string
	Description string
	VideoIDs    []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// NormalizeHandle lowercases and trims usernames and e-mail addresses so
// uniqueness is checked case-insensitively.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
