package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"tunebook/pkg/logger"
	"tunebook/pkg/models"
	"tunebook/pkg/store"
	"tunebook/pkg/utils"
)

// maxPostsResponse caps the encoded size of a full posts page. Posts carry
// inline photo blobs, so a page can blow past what a client should be
// asked to swallow; the call fails instead of truncating.
const maxPostsResponse = 3 << 20

// ForumService owns discussion forums and their posts. Forums and posts
// live in separate namespaces; a forum's Threads list holds the ids of its
// posts, and each post records its forum id, so membership can be walked
// from either side.
type ForumService struct {
	st *store.Store
	mu *sync.RWMutex
}

func (s *ForumService) loadForum(id uint64) (*models.Forum, bool, error) {
	b, ok, err := s.st.Get(store.NSForum, utils.FormatID(id))
	if err != nil || !ok {
		return nil, false, err
	}
	var f models.Forum
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, false, fmt.Errorf("corrupt forum %d: %w", id, err)
	}
	return &f, true, nil
}

func (s *ForumService) saveForum(f *models.Forum) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal forum: %w", err)
	}
	return s.st.Put(store.NSForum, utils.FormatID(f.ID), b)
}

func (s *ForumService) loadPost(id uint64) (*models.ForumPost, bool, error) {
	b, ok, err := s.st.Get(store.NSPost, utils.FormatID(id))
	if err != nil || !ok {
		return nil, false, err
	}
	var p models.ForumPost
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, fmt.Errorf("corrupt post %d: %w", id, err)
	}
	return &p, true, nil
}

func (s *ForumService) savePost(p *models.ForumPost) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}
	return s.st.Put(store.NSPost, utils.FormatID(p.ID), b)
}

// AddForum creates a forum with the creator as sole participant and no
// posts, returning the assigned id.
func (s *ForumService) AddForum(principal, username, forumName, comment string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &models.Forum{
		ID:         utils.GenID(),
		Principal:  principal,
		Username:   username,
		ForumName:  forumName,
		Comment:    comment,
		Threads:    []uint64{},
		Principals: []string{principal},
		CreatedTS:  time.Now().UTC().UnixNano(),
	}
	if err := s.saveForum(f); err != nil {
		return 0, err
	}
	logger.Info("forum_added", "id", f.ID, "name", forumName, "principal", principal)
	return f.ID, nil
}

// Forums pages through forums whose name contains search,
// case-insensitively.
func (s *ForumService) Forums(search string, page int) ([]models.Forum, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	pred := func(f *models.Forum) bool {
		return strings.Contains(strings.ToLower(f.ForumName), needle)
	}
	return queryPage(s.st, store.NSForum, pred, page, PageForums)
}

// Forum returns one forum by id.
func (s *ForumService) Forum(id uint64) (*models.Forum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok, err := s.loadForum(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

// AddPost attaches a post to an existing forum: the post is stored in its
// own namespace and its id appended to the forum's Threads list. A missing
// forum fails the call before anything is written.
func (s *ForumService) AddPost(forumID uint64, principal, username, comment string, photos [][]byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok, err := s.loadForum(forumID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound
	}

	p := &models.ForumPost{
		ID:        utils.GenID(),
		ForumID:   forumID,
		Principal: principal,
		Username:  username,
		Comment:   comment,
		Photos:    photos,
		Likes:     0,
		CreatedTS: time.Now().UTC().UnixNano(),
	}
	if err := s.savePost(p); err != nil {
		return 0, err
	}
	f.Threads = append(f.Threads, p.ID)
	if err := s.saveForum(f); err != nil {
		return 0, err
	}
	logger.Info("post_added", "id", p.ID, "forum", forumID, "principal", principal)
	return p.ID, nil
}

// UpdatePost applies a partial edit to a post the caller authored. Either
// field may be nil to leave it alone. An empty comment is rejected and
// logged but does not fail the call, and an empty photo list is ignored;
// both rules keep a sloppy client from blanking a post.
func (s *ForumService) UpdatePost(postID uint64, principal string, comment *string, photos *[][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if p.Principal != principal {
		return ErrUnauthorized
	}

	if comment != nil {
		if *comment == "" {
			logger.Warn("post_update_empty_comment", "id", postID, "principal", principal)
		} else {
			p.Comment = *comment
		}
	}
	if photos != nil && len(*photos) > 0 {
		p.Photos = *photos
	}
	if err := s.savePost(p); err != nil {
		return err
	}
	logger.Info("post_updated", "id", postID, "principal", principal)
	return nil
}

// LikePost increments the post's like counter. Any caller, any number of
// times; there is no double-like protection.
func (s *ForumService) LikePost(postID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	p.Likes++
	return s.savePost(p)
}

// DeletePost removes a post the caller authored and detaches its id from
// the owning forum's Threads list.
func (s *ForumService) DeletePost(postID uint64, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if p.Principal != principal {
		return ErrUnauthorized
	}

	if err := s.st.Delete(store.NSPost, utils.FormatID(postID)); err != nil {
		return err
	}
	f, ok, err := s.loadForum(p.ForumID)
	if err != nil {
		return err
	}
	if ok {
		kept := make([]uint64, 0, len(f.Threads))
		for _, tid := range f.Threads {
			if tid != postID {
				kept = append(kept, tid)
			}
		}
		f.Threads = kept
		if err := s.saveForum(f); err != nil {
			return err
		}
	}
	logger.Info("post_deleted", "id", postID, "forum", p.ForumID, "principal", principal)
	return nil
}

// DeleteForum removes a forum and cascade-deletes every post whose forum id
// matches. Any listed participant may delete. Victim posts are collected
// first so the scan never observes its own deletes.
func (s *ForumService) DeleteForum(id uint64, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok, err := s.loadForum(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if !containsString(f.Principals, principal) {
		return ErrUnauthorized
	}

	victims := []uint64{}
	err = scanMatches(s.st, store.NSPost, func(p *models.ForumPost) bool {
		return p.ForumID == id
	}, func(p models.ForumPost) bool {
		victims = append(victims, p.ID)
		return true
	})
	if err != nil {
		return err
	}
	for _, pid := range victims {
		if err := s.st.Delete(store.NSPost, utils.FormatID(pid)); err != nil {
			return err
		}
	}
	if err := s.st.Delete(store.NSForum, utils.FormatID(id)); err != nil {
		return err
	}
	logger.Info("forum_deleted", "id", id, "posts", len(victims), "principal", principal)
	return nil
}

// Posts pages through a forum's posts, photos included. The encoded size
// of the page is checked against maxPostsResponse and the call fails with
// ErrTooLarge rather than returning a truncated page.
func (s *ForumService) Posts(forumID uint64, page int) ([]models.ForumPost, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pred := func(p *models.ForumPost) bool { return p.ForumID == forumID }
	posts, total, err := queryPage(s.st, store.NSPost, pred, page, PagePosts)
	if err != nil {
		return nil, 0, err
	}

	enc, err := json.Marshal(posts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to size posts page: %w", err)
	}
	if len(enc) > maxPostsResponse {
		logger.Warn("posts_page_too_large", "forum", forumID, "page", page, "bytes", len(enc))
		return nil, 0, ErrTooLarge
	}
	return posts, total, nil
}

// PostsWithoutPhotos pages through a forum's posts with photo blobs
// stripped. No size ceiling applies: without photos a page is always
// small.
func (s *ForumService) PostsWithoutPhotos(forumID uint64, page int) ([]models.ForumPost, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pred := func(p *models.ForumPost) bool { return p.ForumID == forumID }
	posts, total, err := queryPage(s.st, store.NSPost, pred, page, PagePosts)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i] = posts[i].WithoutPhotos()
	}
	return posts, total, nil
}

// ForumCount returns the number of stored forums.
func (s *ForumService) ForumCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSForum)
}

// PostCount returns the number of stored posts.
func (s *ForumService) PostCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSPost)
}
