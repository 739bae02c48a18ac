package services

import (
	"errors"
	"testing"
)

func TestUpsertCreateAndUpdate(t *testing.T) {
	reg := newTestRegistry(t)

	bio := "fiddle player from Clare"
	p, err := reg.Profiles.Upsert("p1", "alice", "Ennis", "fiddle", &bio, []byte{1, 2})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if p.Friends == nil || p.IncomingFR == nil || p.OutcomingFR == nil {
		t.Fatal("relationship lists not initialized")
	}

	// updating mutable fields preserves relationships
	mustProfile(t, reg, "p2", "bob")
	if _, err := reg.Profiles.SendFriendRequest("p2", "p1"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	p, err = reg.Profiles.Upsert("p1", "alice", "Doolin", "fiddle, concertina", nil, nil)
	if err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}
	if p.Pob != "Doolin" {
		t.Fatalf("pob not updated: %q", p.Pob)
	}
	if len(p.IncomingFR) != 1 {
		t.Fatalf("pending request lost on update: %v", p.IncomingFR)
	}
}

func TestUpsertUsernameConflict(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")

	_, err := reg.Profiles.Upsert("p2", "alice", "", "", nil, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// the failed call must leave no record behind
	if _, err := reg.Profiles.Authenticate("p2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("conflicting upsert left partial state: %v", err)
	}

	// uniqueness is case-sensitive
	if _, err := reg.Profiles.Upsert("p2", "Alice", "", "", nil, nil); err != nil {
		t.Fatalf("case-different username rejected: %v", err)
	}
	// re-claiming one's own username is fine
	if _, err := reg.Profiles.Upsert("p1", "alice", "Galway", "", nil, nil); err != nil {
		t.Fatalf("self re-upsert rejected: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Profiles.Authenticate("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	mustProfile(t, reg, "p1", "alice")
	p, err := reg.Profiles.Authenticate("p1")
	if err != nil || p.Username != "alice" {
		t.Fatalf("Authenticate: %v %v", p, err)
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")
	mustProfile(t, reg, "p2", "bob")

	out, err := reg.Profiles.SendFriendRequest("p1", "p2")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if out == nil || out.Principal != "p2" || out.Username != "bob" {
		t.Fatalf("outgoing summary wrong: %+v", out)
	}

	// duplicate request in either direction is silently refused
	dup, err := reg.Profiles.SendFriendRequest("p1", "p2")
	if err != nil || dup != nil {
		t.Fatalf("duplicate send: %v %v", dup, err)
	}
	rev, err := reg.Profiles.SendFriendRequest("p2", "p1")
	if err != nil || rev != nil {
		t.Fatalf("reverse send while pending: %v %v", rev, err)
	}

	ok, err := reg.Profiles.AcceptFriendRequest("p2", "p1")
	if err != nil || !ok {
		t.Fatalf("AcceptFriendRequest: %v %v", ok, err)
	}

	// friendship is symmetric and pending lists drained on both sides
	a, _ := reg.Profiles.Authenticate("p1")
	b, _ := reg.Profiles.Authenticate("p2")
	if len(a.Friends) != 1 || a.Friends[0] != "p2" {
		t.Fatalf("p1 friends = %v", a.Friends)
	}
	if len(b.Friends) != 1 || b.Friends[0] != "p1" {
		t.Fatalf("p2 friends = %v", b.Friends)
	}
	if len(a.OutcomingFR) != 0 || len(b.IncomingFR) != 0 {
		t.Fatalf("pending entries survived accept: %v %v", a.OutcomingFR, b.IncomingFR)
	}

	// sending to an existing friend is silently refused
	again, err := reg.Profiles.SendFriendRequest("p1", "p2")
	if err != nil || again != nil {
		t.Fatalf("send to friend: %v %v", again, err)
	}
}

func TestSendFriendRequestMissingProfiles(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")

	out, err := reg.Profiles.SendFriendRequest("p1", "ghost")
	if err != nil || out != nil {
		t.Fatalf("send to missing receiver: %v %v", out, err)
	}
	out, err = reg.Profiles.SendFriendRequest("ghost", "p1")
	if err != nil || out != nil {
		t.Fatalf("send from missing sender: %v %v", out, err)
	}
}

func TestAcceptIsPermissive(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")
	mustProfile(t, reg, "p2", "bob")

	// no pending request exists, but both profiles do: accept succeeds
	ok, err := reg.Profiles.AcceptFriendRequest("p2", "p1")
	if err != nil || !ok {
		t.Fatalf("accept without pending: %v %v", ok, err)
	}
	ok, err = reg.Profiles.AcceptFriendRequest("ghost", "p1")
	if err != nil || ok {
		t.Fatalf("accept with missing profile: %v %v", ok, err)
	}
}

func TestCancelIsStrict(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")
	mustProfile(t, reg, "p2", "bob")

	// nothing pending: cancel fails, no writes
	ok, err := reg.Profiles.CancelFriendRequest("p1", "p2")
	if err != nil || ok {
		t.Fatalf("cancel without pending: %v %v", ok, err)
	}

	if _, err := reg.Profiles.SendFriendRequest("p1", "p2"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	ok, err = reg.Profiles.CancelFriendRequest("p1", "p2")
	if err != nil || !ok {
		t.Fatalf("cancel pending: %v %v", ok, err)
	}
	// repeated cancel fails: the entries are gone
	ok, err = reg.Profiles.CancelFriendRequest("p1", "p2")
	if err != nil || ok {
		t.Fatalf("repeated cancel: %v %v", ok, err)
	}
	// after cancel a fresh request goes through
	out, err := reg.Profiles.SendFriendRequest("p1", "p2")
	if err != nil || out == nil {
		t.Fatalf("re-send after cancel: %v %v", out, err)
	}
}

func TestFriendsResolvesLiveSnapshots(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "p1", "alice")
	mustProfile(t, reg, "p2", "bob")
	_, _ = reg.Profiles.SendFriendRequest("p1", "p2")
	_, _ = reg.Profiles.AcceptFriendRequest("p2", "p1")

	// friend renames; the snapshot reflects the current profile
	if _, err := reg.Profiles.Upsert("p2", "robert", "", "", nil, nil); err != nil {
		t.Fatalf("rename: %v", err)
	}
	friends, err := reg.Profiles.Friends("p1")
	if err != nil {
		t.Fatalf("Friends: %v", err)
	}
	if len(friends) != 1 || friends[0].Username != "robert" {
		t.Fatalf("friends = %+v", friends)
	}

	// a caller without a profile gets an empty list, not an error
	none, err := reg.Profiles.Friends("ghost")
	if err != nil || len(none) != 0 {
		t.Fatalf("Friends(ghost): %v %v", none, err)
	}
}

func TestBrowsePeopleExclusions(t *testing.T) {
	reg := newTestRegistry(t)
	mustProfile(t, reg, "me", "carol")
	mustProfile(t, reg, "friend", "dave")
	mustProfile(t, reg, "pending-out", "erin")
	mustProfile(t, reg, "pending-in", "frank")
	mustProfile(t, reg, "stranger", "grace")

	_, _ = reg.Profiles.SendFriendRequest("me", "friend")
	_, _ = reg.Profiles.AcceptFriendRequest("friend", "me")
	_, _ = reg.Profiles.SendFriendRequest("me", "pending-out")
	_, _ = reg.Profiles.SendFriendRequest("pending-in", "me")

	people, total, err := reg.Profiles.BrowsePeople("me", "", 0)
	if err != nil {
		t.Fatalf("BrowsePeople: %v", err)
	}
	if total != 1 || len(people) != 1 || people[0].Principal != "stranger" {
		t.Fatalf("browse = %+v total %d", people, total)
	}

	// filter is a case-insensitive username substring
	people, _, err = reg.Profiles.BrowsePeople("me", "GRA", 0)
	if err != nil || len(people) != 1 {
		t.Fatalf("filtered browse = %+v %v", people, err)
	}
	people, total, err = reg.Profiles.BrowsePeople("ghost", "", 0)
	if err != nil || total != 0 || len(people) != 0 {
		t.Fatalf("browse without profile = %+v total %d err %v", people, total, err)
	}
}
