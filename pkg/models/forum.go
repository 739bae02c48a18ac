package models

// Forum groups posts into a discussion. Threads is the ordered list of
// post ids attached to this forum. Principals holds the participants;
// only the creator is ever added.
type Forum struct {
	ID         uint64   `json:"id"`
	Principal  string   `json:"principal"`
	Username   string   `json:"username"`
	ForumName  string   `json:"forum_name"`
	Comment    string   `json:"comment"`
	Threads    []uint64 `json:"threads"`
	Principals []string `json:"principals"`
	CreatedTS  int64    `json:"created_ts"`
}

// ForumPost is a single post. ForumID back-references the owning Forum and
// must name a live forum at creation time. Likes is a monotonic counter
// with no double-like protection.
type ForumPost struct {
	ID        uint64   `json:"id"`
	ForumID   uint64   `json:"forum_id"`
	Principal string   `json:"principal"`
	Username  string   `json:"username"`
	Comment   string   `json:"comment"`
	Photos    [][]byte `json:"photos"`
	Likes     uint32   `json:"likes"`
	CreatedTS int64    `json:"created_ts"`
}

// WithoutPhotos returns a copy of p with the photo attachments stripped,
// for list reads that must stay small.
func (p ForumPost) WithoutPhotos() ForumPost {
	p.Photos = nil
	return p
}
