package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"tunebook/pkg/logger"
	"tunebook/pkg/models"
	"tunebook/pkg/store"
	"tunebook/pkg/utils"
)

// SessionService owns the live-session listings. Sessions are keyed by a
// zero-padded time-derived id so the map iterates in creation order.
type SessionService struct {
	st *store.Store
	mu *sync.RWMutex
}

func (s *SessionService) load(id uint64) (*models.Session, bool, error) {
	b, ok, err := s.st.Get(store.NSSession, utils.FormatID(id))
	if err != nil || !ok {
		return nil, false, err
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, false, fmt.Errorf("corrupt session %d: %w", id, err)
	}
	return &sess, true, nil
}

func (s *SessionService) save(sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.st.Put(store.NSSession, utils.FormatID(sess.ID), b)
}

// Add creates a listing owned by principal and returns its assigned id.
func (s *SessionService) Add(principal, username, name, location, daytime, contact, comment, recurring string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &models.Session{
		ID:        utils.GenID(),
		Principal: principal,
		Username:  username,
		Name:      name,
		Location:  location,
		Daytime:   daytime,
		Contact:   contact,
		Comment:   comment,
		Recurring: recurring,
	}
	if err := s.save(sess); err != nil {
		return 0, err
	}
	logger.Info("session_added", "id", sess.ID, "principal", principal)
	return sess.ID, nil
}

// Update overwrites a listing's mutable fields. Only the owner may update;
// the stored principal and id never change.
func (s *SessionService) Update(id uint64, principal, username, name, location, daytime, contact, comment, recurring string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if sess.Principal != principal {
		return ErrUnauthorized
	}
	sess.Username = username
	sess.Name = name
	sess.Location = location
	sess.Daytime = daytime
	sess.Contact = contact
	sess.Comment = comment
	sess.Recurring = recurring
	if err := s.save(sess); err != nil {
		return err
	}
	logger.Info("session_updated", "id", id, "principal", principal)
	return nil
}

// Delete removes a listing; only the owner may delete.
func (s *SessionService) Delete(id uint64, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if sess.Principal != principal {
		return ErrUnauthorized
	}
	if err := s.st.Delete(store.NSSession, utils.FormatID(id)); err != nil {
		return err
	}
	logger.Info("session_deleted", "id", id, "principal", principal)
	return nil
}

// List pages through listings whose name or location contains sub,
// case-insensitively.
func (s *SessionService) List(sub string, page int) ([]models.Session, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(sub)
	pred := func(sess *models.Session) bool {
		return strings.Contains(strings.ToLower(sess.Name), needle) ||
			strings.Contains(strings.ToLower(sess.Location), needle)
	}
	return queryPage(s.st, store.NSSession, pred, page, PageSessions)
}

// Count returns the number of stored listings.
func (s *SessionService) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSSession)
}
