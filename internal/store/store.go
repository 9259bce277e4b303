// Package store holds the session's in-memory entities and membership
// sets. Every read returns a copy and every write replaces the stored
// value, so a snapshot handed to a renderer is never mutated after the
// fact.
package store

import (
	"sort"

	"goorm-board/internal/models"
)

// PostStore is the source of truth for post entities, keyed by id.
type PostStore struct {
	posts map[int64]models.Post
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[int64]models.Post)}
}

func (s *PostStore) Get(id int64) (models.Post, bool) {
	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, false
	}
	return p.Clone(), true
}

// Put stores its own copy of p, replacing any previous value.
func (s *PostStore) Put(p models.Post) {
	s.posts[p.ID] = p.Clone()
}

func (s *PostStore) Delete(id int64) {
	delete(s.posts, id)
}

func (s *PostStore) Len() int {
	return len(s.posts)
}

// Update applies fn to a fresh copy of the stored post and stores the
// result, so partially applied mutations are never observable. It
// reports whether the id was present.
func (s *PostStore) Update(id int64, fn func(*models.Post)) bool {
	p, ok := s.posts[id]
	if !ok {
		return false
	}
	next := p.Clone()
	fn(&next)
	s.posts[id] = next
	return true
}

// All returns a snapshot of every post, newest first.
func (s *PostStore) All() []models.Post {
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// IDSet is a membership set of entity ids: one per boolean per-entity
// flag the session tracks (liked posts, pinned posts, liked comments).
type IDSet struct {
	ids map[int64]struct{}
}

func NewIDSet() *IDSet {
	return &IDSet{ids: make(map[int64]struct{})}
}

func (s *IDSet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *IDSet) Add(id int64) {
	s.ids[id] = struct{}{}
}

func (s *IDSet) Remove(id int64) {
	delete(s.ids, id)
}

// Toggle inverts membership of id and returns the new state.
func (s *IDSet) Toggle(id int64) bool {
	if s.Has(id) {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *IDSet) Len() int {
	return len(s.ids)
}

// Snapshot returns a copy of the current membership.
func (s *IDSet) Snapshot() map[int64]bool {
	out := make(map[int64]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}
