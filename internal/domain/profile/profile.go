package profile

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// Profile is an artist's public page. Deletion is soft: the row stays, the
// Active flag drops it from every public listing.
type Profile struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	ArtistName        string    `json:"artistName,omitempty"`
	PhotoURL          *string   `json:"photoUrl,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	Website           *string   `json:"website,omitempty"`
	PortfolioURL      *string   `json:"portfolioUrl,omitempty"`
	SpotifyURL        *string   `json:"spotifyUrl,omitempty"`
	AppleMusicURL     *string   `json:"appleMusicUrl,omitempty"`
	TidalURL          *string   `json:"tidalUrl,omitempty"`
	YoutubeMusicURL   *string   `json:"youtubeMusicUrl,omitempty"`
	YoutubeChannelURL *string   `json:"youtubeChannelUrl,omitempty"`
	InstagramURL      *string   `json:"instagramUrl,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	Genre             *string   `json:"genre,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// The platform links get a plain substring check on top of url shape, same
// rule the registration form applies client-side. youtubechannel is a custom
// validator because two hosts are acceptable.
type UpsertProfileRequest struct {
	PhotoURL          *string `json:"photoUrl" binding:"omitempty,url"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	Website           *string `json:"website" binding:"omitempty,url"`
	PortfolioURL      *string `json:"portfolioUrl" binding:"omitempty,url"`
	SpotifyURL        *string `json:"spotifyUrl" binding:"omitempty,url,contains=spotify.com"`
	AppleMusicURL     *string `json:"appleMusicUrl" binding:"omitempty,url,contains=music.apple.com"`
	TidalURL          *string `json:"tidalUrl" binding:"omitempty,url,contains=tidal.com"`
	YoutubeMusicURL   *string `json:"youtubeMusicUrl" binding:"omitempty,url,contains=music.youtube.com"`
	YoutubeChannelURL *string `json:"youtubeChannelUrl" binding:"omitempty,url,youtubechannel"`
	InstagramURL      *string `json:"instagramUrl" binding:"omitempty,url,contains=instagram.com"`
	Bio               *string `json:"bio" binding:"omitempty,max=1000"`
	Genre             *string `json:"genre" binding:"omitempty,max=100"`
}
