// Package models contains data structures for the application's domain models.
package models

import "time"

// MaxTextLength is the maximum number of characters kept from a submitted post.
const MaxTextLength = 2000

// Post is the persisted shape of a wall post. AuthorID keeps its historical
// "anonId" wire name so existing data files stay readable.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"anonId"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is a post as seen by a particular viewer. LikedByMe and IsMine are
// derived from the viewer's anonymous identity at read time and never stored.
type PostView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	LikedByMe bool      `json:"likedByMe"`
	IsMine    bool      `json:"isMine"`
}

// View projects a post for the given viewer identity.
func (p *Post) View(viewerID string, likedByMe bool) PostView {
	return PostView{
		ID:        p.ID,
		Text:      p.Text,
		Likes:     p.Likes,
		CreatedAt: p.CreatedAt,
		LikedByMe: likedByMe,
		IsMine:    p.AuthorID == viewerID,
	}
}
