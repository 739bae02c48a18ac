package services

import (
	"bytes"
	"errors"
	"testing"
)

func TestForumThreading(t *testing.T) {
	reg := newTestRegistry(t)

	fid, err := reg.Forums.AddForum("p1", "alice", "Bodhran technique", "all things percussion")
	if err != nil {
		t.Fatalf("AddForum: %v", err)
	}
	f, err := reg.Forums.Forum(fid)
	if err != nil {
		t.Fatalf("Forum: %v", err)
	}
	if len(f.Threads) != 0 || len(f.Principals) != 1 || f.Principals[0] != "p1" {
		t.Fatalf("fresh forum: %+v", f)
	}

	// posting to a missing forum fails before anything is written
	if _, err := reg.Forums.AddPost(999, "p2", "bob", "hello", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("post to missing forum: %v", err)
	}
	n, _ := reg.Forums.PostCount()
	if n != 0 {
		t.Fatalf("orphan post written, count %d", n)
	}

	pid, err := reg.Forums.AddPost(fid, "p2", "bob", "top end or bottom end?", nil)
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	f, _ = reg.Forums.Forum(fid)
	if len(f.Threads) != 1 || f.Threads[0] != pid {
		t.Fatalf("post not threaded: %v", f.Threads)
	}
}

func TestUpdatePostRules(t *testing.T) {
	reg := newTestRegistry(t)
	fid, _ := reg.Forums.AddForum("p1", "alice", "Flute care", "")
	pid, _ := reg.Forums.AddPost(fid, "p2", "bob", "oiling schedule?", [][]byte{{1}})

	comment := "better question"
	if err := reg.Forums.UpdatePost(pid, "p1", &comment, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-author update: %v", err)
	}
	if err := reg.Forums.UpdatePost(999, "p2", &comment, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing post: %v", err)
	}

	// empty comment is rejected without failing the call
	empty := ""
	if err := reg.Forums.UpdatePost(pid, "p2", &empty, nil); err != nil {
		t.Fatalf("empty comment update errored: %v", err)
	}
	posts, _, _ := reg.Forums.Posts(fid, 0)
	if posts[0].Comment != "oiling schedule?" {
		t.Fatalf("empty comment applied: %q", posts[0].Comment)
	}

	// empty photo list is ignored, non-empty replaces
	noPhotos := [][]byte{}
	newPhotos := [][]byte{{9, 9}}
	if err := reg.Forums.UpdatePost(pid, "p2", &comment, &noPhotos); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	posts, _, _ = reg.Forums.Posts(fid, 0)
	if posts[0].Comment != comment || len(posts[0].Photos) != 1 || !bytes.Equal(posts[0].Photos[0], []byte{1}) {
		t.Fatalf("partial update wrong: %+v", posts[0])
	}
	if err := reg.Forums.UpdatePost(pid, "p2", nil, &newPhotos); err != nil {
		t.Fatalf("UpdatePost photos: %v", err)
	}
	posts, _, _ = reg.Forums.Posts(fid, 0)
	if !bytes.Equal(posts[0].Photos[0], []byte{9, 9}) {
		t.Fatalf("photos not replaced: %+v", posts[0].Photos)
	}
}

func TestLikePost(t *testing.T) {
	reg := newTestRegistry(t)
	fid, _ := reg.Forums.AddForum("p1", "alice", "Reels", "")
	pid, _ := reg.Forums.AddPost(fid, "p1", "alice", "favourite reel?", nil)

	// no double-like protection: every call counts
	for i := 0; i < 3; i++ {
		if err := reg.Forums.LikePost(pid); err != nil {
			t.Fatalf("LikePost: %v", err)
		}
	}
	posts, _, _ := reg.Forums.Posts(fid, 0)
	if posts[0].Likes != 3 {
		t.Fatalf("likes = %d", posts[0].Likes)
	}
	if err := reg.Forums.LikePost(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("like missing post: %v", err)
	}
}

func TestDeletePostDetaches(t *testing.T) {
	reg := newTestRegistry(t)
	fid, _ := reg.Forums.AddForum("p1", "alice", "Jigs", "")
	pid1, _ := reg.Forums.AddPost(fid, "p2", "bob", "first", nil)
	pid2, _ := reg.Forums.AddPost(fid, "p2", "bob", "second", nil)

	if err := reg.Forums.DeletePost(pid1, "p1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-author delete: %v", err)
	}
	if err := reg.Forums.DeletePost(pid1, "p2"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	f, _ := reg.Forums.Forum(fid)
	if len(f.Threads) != 1 || f.Threads[0] != pid2 {
		t.Fatalf("threads after delete: %v", f.Threads)
	}
	n, _ := reg.Forums.PostCount()
	if n != 1 {
		t.Fatalf("post count after delete: %d", n)
	}
}

func TestDeleteForumCascades(t *testing.T) {
	reg := newTestRegistry(t)
	fid1, _ := reg.Forums.AddForum("p1", "alice", "Doomed", "")
	fid2, _ := reg.Forums.AddForum("p1", "alice", "Survivor", "")
	_, _ = reg.Forums.AddPost(fid1, "p2", "bob", "in doomed", nil)
	_, _ = reg.Forums.AddPost(fid1, "p3", "carol", "also doomed", nil)
	keep, _ := reg.Forums.AddPost(fid2, "p2", "bob", "in survivor", nil)

	// only listed participants may delete
	if err := reg.Forums.DeleteForum(fid1, "p2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-participant delete: %v", err)
	}
	if err := reg.Forums.DeleteForum(fid1, "p1"); err != nil {
		t.Fatalf("DeleteForum: %v", err)
	}

	if _, err := reg.Forums.Forum(fid1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted forum still readable: %v", err)
	}
	// cascade removed exactly the posts of the deleted forum
	posts, total, err := reg.Forums.Posts(fid2, 0)
	if err != nil || total != 1 || posts[0].ID != keep {
		t.Fatalf("survivor posts: %+v total %d err %v", posts, total, err)
	}
	n, _ := reg.Forums.PostCount()
	if n != 1 {
		t.Fatalf("post count after cascade: %d", n)
	}
}

func TestPostsPaginationAndPhotoStripping(t *testing.T) {
	reg := newTestRegistry(t)
	fid, _ := reg.Forums.AddForum("p1", "alice", "Busy", "")
	for i := 0; i < 12; i++ {
		if _, err := reg.Forums.AddPost(fid, "p1", "alice", "post", [][]byte{{byte(i)}}); err != nil {
			t.Fatalf("AddPost %d: %v", i, err)
		}
	}

	posts, total, err := reg.Forums.Posts(fid, 0)
	if err != nil || len(posts) != PagePosts || total != 12 {
		t.Fatalf("page 0: %d items total %d err %v", len(posts), total, err)
	}
	posts, _, err = reg.Forums.Posts(fid, 1)
	if err != nil || len(posts) != 2 {
		t.Fatalf("page 1: %d items err %v", len(posts), err)
	}

	stripped, total, err := reg.Forums.PostsWithoutPhotos(fid, 0)
	if err != nil || total != 12 {
		t.Fatalf("PostsWithoutPhotos: total %d err %v", total, err)
	}
	for _, p := range stripped {
		if p.Photos != nil {
			t.Fatalf("photos not stripped: %+v", p)
		}
	}
}

func TestPostsSizeCeiling(t *testing.T) {
	reg := newTestRegistry(t)
	fid, _ := reg.Forums.AddForum("p1", "alice", "Heavy", "")
	// a single post whose photos encode past the 3 MB ceiling
	big := make([]byte, 4<<20)
	if _, err := reg.Forums.AddPost(fid, "p1", "alice", "huge", [][]byte{big}); err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	if _, _, err := reg.Forums.Posts(fid, 0); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	// the stripped variant has no ceiling
	posts, total, err := reg.Forums.PostsWithoutPhotos(fid, 0)
	if err != nil || total != 1 || len(posts) != 1 {
		t.Fatalf("stripped read: %d total %d err %v", len(posts), total, err)
	}
}
