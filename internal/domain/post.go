package domain

import "time"

// Post is a piece of user-authored content. Username and ProfileImageURL
// are denormalized from the owning user at creation time.
type Post struct {
	ID              int64
	UserID          int64
	Username        string
	ProfileImageURL string
	Title           string
	Description     string
	ImageURL        string
	Labels          []string
	WhatsIncluded   []string
	Overview        string
	MeetingPoint    MeetingPoint
	Reviews         []Review
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MeetingPoint is where the experience described by a post takes place.
type MeetingPoint struct {
	Address   string
	Latitude  float64
	Longitude float64
}

// Review is embedded in a post and is not independently addressable.
type Review struct {
	User    string
	Rating  int
	Comment string
}
