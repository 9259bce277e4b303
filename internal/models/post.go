package models

import "time"

// Section identifies the board a post belongs to.
type Section string

const (
	SectionForum    Section = "forum"
	SectionQA       Section = "qa"
	SectionStudy    Section = "study"
	SectionActivity Section = "activity"
	SectionNews     Section = "news"
)

// Category is the topic tag attached to every post.
type Category string

const (
	CategoryWeb      Category = "WEB"
	CategoryMobile   Category = "MOBILE"
	CategoryBack     Category = "BACK"
	CategoryHard     Category = "HARD"
	CategoryAI       Category = "AI"
	CategoryNetwork  Category = "NETWORK"
	CategorySecurity Category = "SECURITY"
	CategoryDevOps   Category = "DEVOPS"
	CategoryEtc      Category = "ETC"
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Likes     int       `json:"likes"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Section   Section   `json:"section"`
	Category  Category  `json:"category"`
	Hashtags  []string  `json:"hashtags"`
}

// Edited reports whether the post has changed since creation.
// UpdatedAt equals CreatedAt exactly until the first edit.
func (p *Post) Edited() bool {
	return !p.UpdatedAt.Equal(p.CreatedAt)
}

// Clone returns a copy sharing no mutable state with the receiver.
func (p Post) Clone() Post {
	out := p
	if p.Hashtags != nil {
		out.Hashtags = make([]string, len(p.Hashtags))
		copy(out.Hashtags, p.Hashtags)
	}
	return out
}

// SortOrder is the server-side sort requested when listing posts.
type SortOrder string

const (
	SortLatest   SortOrder = "latest"
	SortPopular  SortOrder = "popular"
	SortTrending SortOrder = "trending"
)

// PostFilters narrows a post listing request.
type PostFilters struct {
	Category Category
	Search   string
	SortBy   SortOrder
	Page     int
	Limit    int
}

// Pagination describes the position of a page within a collection.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}
