package models

import "time"

// Comment is a single entry in a post's discussion. ParentID is nil for
// top-level comments; replies reference their parent's id. The wire model
// permits nesting of any depth, but threads are resolved to two levels.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"postId"`
	AuthorID  int64      `json:"authorId"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ParentID  *int64     `json:"parentId"`
	Replies   []*Comment `json:"replies,omitempty"`
}

// Clone returns a copy with its own ParentID pointer and no reply list.
func (c Comment) Clone() Comment {
	out := c
	if c.ParentID != nil {
		id := *c.ParentID
		out.ParentID = &id
	}
	out.Replies = nil
	return out
}

// maxThreadHops bounds ancestor walks so a malformed page with a parent
// cycle cannot hang thread resolution.
const maxThreadHops = 32

// BuildThread resolves a flat comment page into a two-level thread.
// Top-level comments keep the server-provided order, and each reply is
// appended to its parent's reply list in page order. A reply whose parent
// is absent from the page is promoted to top level so no comment on the
// page is ever dropped; a reply to a reply is attached to the nearest
// top-level ancestor, keeping the rendered depth at one.
func BuildThread(flat []Comment) []*Comment {
	byID := make(map[int64]*Comment, len(flat))
	ordered := make([]*Comment, 0, len(flat))
	for i := range flat {
		c := flat[i].Clone()
		byID[c.ID] = &c
		ordered = append(ordered, &c)
	}

	top := make([]*Comment, 0, len(ordered))
	for _, c := range ordered {
		if c.ParentID == nil {
			top = append(top, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			top = append(top, c)
			continue
		}
		// Walk up to the top-level ancestor.
		for hops := 0; parent.ParentID != nil && hops < maxThreadHops; hops++ {
			next, ok := byID[*parent.ParentID]
			if !ok {
				break
			}
			parent = next
		}
		// A walk that never reached a top-level node (a parent cycle, or
		// an ancestor chain leaving the page) promotes the comment too.
		if parent == c || (parent.ParentID != nil && byID[*parent.ParentID] != nil) {
			top = append(top, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return top
}
