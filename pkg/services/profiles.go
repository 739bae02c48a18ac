package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"tunebook/pkg/logger"
	"tunebook/pkg/models"
	"tunebook/pkg/store"
)

// ProfileService owns the profile map and the friendship invariants:
// friends lists are symmetric, and pending requests are mirror images
// across the two profiles until resolved.
type ProfileService struct {
	st *store.Store
	mu *sync.RWMutex
}

func (s *ProfileService) load(principal string) (*models.Profile, bool, error) {
	b, ok, err := s.st.Get(store.NSProfile, principal)
	if err != nil || !ok {
		return nil, false, err
	}
	var p models.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, fmt.Errorf("corrupt profile %s: %w", principal, err)
	}
	return &p, true, nil
}

func (s *ProfileService) save(p *models.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return s.st.Put(store.NSProfile, p.Principal, b)
}

// Authenticate is a pure existence check: it returns the caller's profile
// or ErrNotFound, with no side effects.
func (s *ProfileService) Authenticate(principal string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok, err := s.load(principal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Upsert creates or overwrites the caller's profile. Usernames are unique
// case-sensitively across all profiles except the caller's own record; a
// conflict is rejected before any write so a bad call leaves no partial
// state. Relationship lists are never touched on update.
func (s *ProfileService) Upsert(principal, username, pob, instruments string, bio *string, avatar []byte) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := false
	err := scanMatches(s.st, store.NSProfile, func(p *models.Profile) bool {
		return p.Username == username && p.Principal != principal
	}, func(models.Profile) bool {
		taken = true
		return false
	})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username %q is already taken: %w", username, ErrConflict)
	}

	p, ok, err := s.load(principal)
	if err != nil {
		return nil, err
	}
	if !ok {
		p = &models.Profile{
			Principal:   principal,
			Friends:     []string{},
			IncomingFR:  []models.Friend{},
			OutcomingFR: []models.Friend{},
		}
	}
	p.Username = username
	p.Avatar = avatar
	p.Pob = pob
	p.Instruments = instruments
	p.Bio = bio

	if err := s.save(p); err != nil {
		return nil, err
	}
	logger.Info("profile_saved", "principal", principal, "username", username)
	return p, nil
}

// Get returns the stored profile or ErrNotFound.
func (s *ProfileService) Get(principal string) (*models.Profile, error) {
	return s.Authenticate(principal)
}

// Friends resolves the caller's friends list to live username/avatar
// snapshots from the current profile map. A friend whose profile has
// vanished is skipped rather than failing the whole read.
func (s *ProfileService) Friends(principal string) ([]models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok, err := s.load(principal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Friend{}, nil
	}

	out := make([]models.Friend, 0, len(p.Friends))
	for _, fp := range p.Friends {
		fr, ok, err := s.load(fp)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("friend_profile_missing", "principal", principal, "friend", fp)
			continue
		}
		out = append(out, models.Friend{Principal: fp, Avatar: fr.Avatar, Username: fr.Username})
	}
	return out, nil
}

// SendFriendRequest records a pending request mirrored on both profiles:
// a snapshot of the sender lands in the receiver's incoming list and a
// snapshot of the receiver in the sender's outgoing list. It returns nil
// (no error) when either profile is missing, when the two are already
// friends, or when a request is already pending in either direction.
func (s *ProfileService) SendFriendRequest(sender, receiver string) (*models.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok, err := s.load(sender)
	if err != nil || !ok {
		return nil, err
	}
	rp, ok, err := s.load(receiver)
	if err != nil || !ok {
		return nil, err
	}

	if containsString(sp.Friends, receiver) ||
		containsFriend(sp.OutcomingFR, receiver) ||
		containsFriend(sp.IncomingFR, receiver) {
		return nil, nil
	}

	incoming := models.Friend{Principal: sender, Username: sp.Username, Avatar: sp.Avatar}
	outgoing := models.Friend{Principal: receiver, Username: rp.Username, Avatar: rp.Avatar}
	sp.OutcomingFR = append(sp.OutcomingFR, outgoing)
	rp.IncomingFR = append(rp.IncomingFR, incoming)

	if err := s.save(sp); err != nil {
		return nil, err
	}
	if err := s.save(rp); err != nil {
		return nil, err
	}
	logger.Info("friend_request_sent", "sender", sender, "receiver", receiver)
	return &outgoing, nil
}

// AcceptFriendRequest resolves a pending request. The accepter is the
// profile holding the incoming entry, the requester the profile that sent
// it: the requester's entry is removed from the accepter's incoming list,
// the mirrored entry from the requester's outgoing list, and each principal
// is appended to the other's friends. Acceptance is deliberately
// permissive: it succeeds whenever both profiles exist, even if no pending
// entries are found (cancel, by contrast, is strict).
func (s *ProfileService) AcceptFriendRequest(accepter, requester string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok, err := s.load(accepter)
	if err != nil || !ok {
		return false, err
	}
	rp, ok, err := s.load(requester)
	if err != nil || !ok {
		return false, err
	}

	ap.IncomingFR = removeFriend(ap.IncomingFR, requester)
	rp.OutcomingFR = removeFriend(rp.OutcomingFR, accepter)
	ap.Friends = append(ap.Friends, requester)
	rp.Friends = append(rp.Friends, accepter)

	if err := s.save(ap); err != nil {
		return false, err
	}
	if err := s.save(rp); err != nil {
		return false, err
	}
	logger.Info("friend_request_accepted", "accepter", accepter, "requester", requester)
	return true, nil
}

// CancelFriendRequest withdraws a pending request. Unlike accept it is
// strict: the sender must hold a matching outgoing entry AND the receiver a
// matching incoming entry, otherwise nothing is persisted and the call
// reports false.
func (s *ProfileService) CancelFriendRequest(sender, receiver string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok, err := s.load(sender)
	if err != nil || !ok {
		return false, err
	}
	rp, ok, err := s.load(receiver)
	if err != nil || !ok {
		return false, err
	}

	if !containsFriend(sp.OutcomingFR, receiver) || !containsFriend(rp.IncomingFR, sender) {
		return false, nil
	}
	sp.OutcomingFR = removeFriend(sp.OutcomingFR, receiver)
	rp.IncomingFR = removeFriend(rp.IncomingFR, sender)

	if err := s.save(sp); err != nil {
		return false, err
	}
	if err := s.save(rp); err != nil {
		return false, err
	}
	logger.Info("friend_request_cancelled", "sender", sender, "receiver", receiver)
	return true, nil
}

// BrowsePeople pages through profiles matching filter (case-insensitive
// username substring), excluding the caller, existing friends and anyone
// with a pending request in either direction. A caller without a profile
// gets an empty result.
func (s *ProfileService) BrowsePeople(principal, filter string, page int) ([]models.Friend, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	me, ok, err := s.load(principal)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []models.Friend{}, 0, nil
	}

	needle := strings.ToLower(filter)
	pred := func(p *models.Profile) bool {
		return strings.Contains(strings.ToLower(p.Username), needle) &&
			p.Principal != principal &&
			!containsString(me.Friends, p.Principal) &&
			!containsFriend(me.OutcomingFR, p.Principal) &&
			!containsFriend(me.IncomingFR, p.Principal)
	}
	matches, total, err := queryPage(s.st, store.NSProfile, pred, page, PagePeople)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.Friend, 0, len(matches))
	for _, p := range matches {
		out = append(out, models.Friend{Principal: p.Principal, Avatar: p.Avatar, Username: p.Username})
	}
	return out, total, nil
}

// Count returns the number of stored profiles.
func (s *ProfileService) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSProfile)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFriend(list []models.Friend, principal string) bool {
	for _, f := range list {
		if f.Principal == principal {
			return true
		}
	}
	return false
}

// removeFriend drops the first entry matching principal, preserving order.
func removeFriend(list []models.Friend, principal string) []models.Friend {
	for i, f := range list {
		if f.Principal == principal {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
