package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blog_backend/internal/model"
)

// MemoryStore keeps users, posts and comments in process memory. It backs
// STORAGE_DRIVER=memory and the service tests, and follows the same
// not-found, duplicate and version rules as the Postgres repositories.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[int64]model.User
	posts    map[int64]model.Post
	comments map[int64]model.Comment
	nextID   int64
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]model.User),
		posts:    make(map[int64]model.Post),
		comments: make(map[int64]model.Comment),
		now:      time.Now,
	}
}

func (s *MemoryStore) Users() UserRepository       { return memoryUsers{s} }
func (s *MemoryStore) Posts() PostRepository       { return memoryPosts{s} }
func (s *MemoryStore) Comments() CommentRepository { return memoryComments{s} }

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func clonePost(p model.Post) model.Post {
	if p.SecretPasswordHash != nil {
		h := *p.SecretPasswordHash
		p.SecretPasswordHash = &h
	}
	return p
}

// withAuthor fills the joined username. Caller holds the lock.
func (s *MemoryStore) withAuthor(p model.Post) model.Post {
	p = clonePost(p)
	p.AuthorUsername = s.users[p.AuthorID].Username
	return p
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	user.ID = r.s.id()
	user.Version = 0
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memoryUsers) SetEnabled(_ context.Context, id int64, enabled bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Enabled = enabled
	u.Version++
	r.s.users[id] = u
	return &u, nil
}

type memoryPosts struct{ s *MemoryStore }

func (r memoryPosts) Create(_ context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.Version = 0
	p.AuthorUsername = r.s.users[p.AuthorID].Username
	r.s.posts[p.ID] = clonePost(*p)
	return nil
}

func (r memoryPosts) FindByID(_ context.Context, id int64) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	p = r.s.withAuthor(p)
	return &p, nil
}

// sorted returns the posts accepted by keep, newest first. Caller holds the lock.
func (r memoryPosts) sorted(keep func(model.Post) bool) []model.Post {
	posts := []model.Post{}
	for _, p := range r.s.posts {
		p = r.s.withAuthor(p)
		if keep(p) {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts
}

func (r memoryPosts) List(_ context.Context, page model.Page) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := r.sorted(func(model.Post) bool { return true })
	start := page.Offset()
	if start >= len(posts) {
		return []model.Post{}, nil
	}
	end := min(start+page.Size, len(posts))
	return posts[start:end], nil
}

func (r memoryPosts) Search(_ context.Context, filter model.SearchFilter) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := r.sorted(func(p model.Post) bool {
		if filter.PublicOnly && p.IsSecret {
			return false
		}
		for _, kw := range filter.Keywords {
			kw = strings.ToLower(kw)
			if !strings.Contains(strings.ToLower(p.Title), kw) &&
				!strings.Contains(strings.ToLower(p.Content), kw) &&
				!strings.Contains(strings.ToLower(p.AuthorUsername), kw) {
				return false
			}
		}
		return true
	})
	if len(posts) > MaxSearchResults {
		posts = posts[:MaxSearchResults]
	}
	return posts, nil
}

func (r memoryPosts) Update(_ context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != p.Version {
		return ErrVersionConflict
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.IsSecret = p.IsSecret
	stored.SecretPasswordHash = p.SecretPasswordHash
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.posts[p.ID] = clonePost(stored)

	p.Version = stored.Version
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memoryPosts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.posts, id)
	for cid, c := range r.s.comments {
		if c.PostID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

type memoryComments struct{ s *MemoryStore }

func (r memoryComments) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[c.PostID]; !ok {
		return ErrNotFound
	}
	c.ID = r.s.id()
	c.Version = 0
	c.AuthorUsername = r.s.users[c.AuthorID].Username
	r.s.comments[c.ID] = *c
	return nil
}

func (r memoryComments) FindByID(_ context.Context, id int64) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	c.AuthorUsername = r.s.users[c.AuthorID].Username
	return &c, nil
}

func (r memoryComments) ListByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := []model.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			c.AuthorUsername = r.s.users[c.AuthorID].Username
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (r memoryComments) Update(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.comments[c.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != c.Version {
		return ErrVersionConflict
	}
	stored.Content = c.Content
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.comments[c.ID] = stored

	c.Version = stored.Version
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memoryComments) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}
