package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"tunebook/pkg/logger"
	"tunebook/pkg/models"
	"tunebook/pkg/store"
)

// recentWindow bounds the Recent feed: tunes added within the last week.
const recentWindow = 7 * 24 * time.Hour

// TuneService owns the shared tune repository. Tunes are keyed by title;
// one record can be held by many principals at once, and a non-origin
// record lives exactly as long as its owner set is non-empty.
type TuneService struct {
	st *store.Store
	mu *sync.RWMutex
}

func (s *TuneService) load(title string) (*models.Tune, bool, error) {
	b, ok, err := s.st.Get(store.NSTune, title)
	if err != nil || !ok {
		return nil, false, err
	}
	var t models.Tune
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, false, fmt.Errorf("corrupt tune %q: %w", title, err)
	}
	return &t, true, nil
}

func (s *TuneService) save(t *models.Tune) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tune: %w", err)
	}
	return s.st.Put(store.NSTune, t.Title, b)
}

// OriginalList pages through the titles of the whole tune repository, in
// title order, with total equal to the full map size. Despite the name it
// is not restricted to curated (origin) records.
func (s *TuneService) OriginalList(page int) ([]string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pred := func(*models.Tune) bool { return true }
	matches, total, err := queryPage(s.st, store.NSTune, pred, page, PageTunes)
	if err != nil {
		return nil, 0, err
	}
	titles := make([]string, 0, len(matches))
	for _, t := range matches {
		titles = append(titles, t.Title)
	}
	return titles, total, nil
}

// Original returns the ABC body of any stored tune, with no ownership
// check. Missing titles report ErrNotFound.
func (s *TuneService) Original(title string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok, err := s.load(title)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return t.TuneData, nil
}

// UserTuneList pages through the summaries of tunes the principal holds.
func (s *TuneService) UserTuneList(principal string, page int) ([]models.TuneInfo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pred := func(t *models.Tune) bool { return containsString(t.Principals, principal) }
	matches, total, err := queryPage(s.st, store.NSTune, pred, page, PageUserTunes)
	if err != nil {
		return nil, 0, err
	}
	infos := make([]models.TuneInfo, 0, len(matches))
	for i := range matches {
		infos = append(infos, matches[i].Info())
	}
	return infos, total, nil
}

// UserTune returns the ABC body of a tune the principal holds. A tune that
// exists but is not held by the caller reports ErrUnauthorized, not
// ErrNotFound.
func (s *TuneService) UserTune(principal, title string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok, err := s.load(title)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	if !containsString(t.Principals, principal) {
		return "", ErrUnauthorized
	}
	return t.TuneData, nil
}

// Add puts a tune into the principal's collection. When the title already
// exists the stored body wins and the principal is merely appended to the
// owner set; adding a title the caller already holds is a no-op reporting
// false. New records carry the caller's username and a fresh timestamp.
func (s *TuneService) Add(principal, title, data string, origin bool, username *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok, err := s.load(title)
	if err != nil {
		return false, err
	}
	if ok {
		if containsString(t.Principals, principal) {
			return false, nil
		}
		t.Principals = append(t.Principals, principal)
		if err := s.save(t); err != nil {
			return false, err
		}
		logger.Info("tune_owner_added", "title", title, "principal", principal)
		return true, nil
	}

	t = &models.Tune{
		Origin:     origin,
		Title:      title,
		TuneData:   data,
		Timestamp:  time.Now().UTC().UnixNano(),
		Principals: []string{principal},
		Username:   username,
	}
	if err := s.save(t); err != nil {
		return false, err
	}
	logger.Info("tune_added", "title", title, "principal", principal)
	return true, nil
}

// Update replaces the body, origin flag and attributed username of a tune
// the principal holds. The owner set is preserved, so the edit is visible
// to every holder; the timestamp is bumped so the tune re-enters the
// recent feed.
func (s *TuneService) Update(principal, title, data string, origin bool, username *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok, err := s.load(title)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if !containsString(t.Principals, principal) {
		return ErrUnauthorized
	}
	t.TuneData = data
	t.Origin = origin
	t.Username = username
	t.Timestamp = time.Now().UTC().UnixNano()
	if err := s.save(t); err != nil {
		return err
	}
	logger.Info("tune_updated", "title", title, "principal", principal)
	return nil
}

// Remove takes the tune out of the principal's collection. The record
// itself is deleted only when the owner set empties.
func (s *TuneService) Remove(principal, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok, err := s.load(title)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if !containsString(t.Principals, principal) {
		return ErrUnauthorized
	}

	kept := make([]string, 0, len(t.Principals)-1)
	for _, p := range t.Principals {
		if p != principal {
			kept = append(kept, p)
		}
	}
	t.Principals = kept

	if len(t.Principals) == 0 {
		if err := s.st.Delete(store.NSTune, title); err != nil {
			return err
		}
		logger.Info("tune_deleted", "title", title)
		return nil
	}
	if err := s.save(t); err != nil {
		return err
	}
	logger.Info("tune_owner_removed", "title", title, "principal", principal)
	return nil
}

// Filter pages through summaries matching all three criteria: sub as a
// case-insensitive title substring, rhythm against the ABC R: header and
// key against the K: header. The literal value "all" disables the header
// checks. Header matching is line-anchored and case-sensitive, the way ABC
// headers are written.
func (s *TuneService) Filter(sub, rhythm, key string, page int) ([]models.TuneInfo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(sub)
	var rhythmRe, keyRe *regexp.Regexp
	if rhythm != "all" {
		rhythmRe = regexp.MustCompile(`(?m)^R:\s*` + regexp.QuoteMeta(rhythm))
	}
	if key != "all" {
		keyRe = regexp.MustCompile(`(?m)^K:\s*` + regexp.QuoteMeta(key))
	}

	pred := func(t *models.Tune) bool {
		if !strings.Contains(strings.ToLower(t.Title), needle) {
			return false
		}
		if rhythmRe != nil && !rhythmRe.MatchString(t.TuneData) {
			return false
		}
		if keyRe != nil && !keyRe.MatchString(t.TuneData) {
			return false
		}
		return true
	}

	matches, total, err := queryPage(s.st, store.NSTune, pred, page, PageTunes)
	if err != nil {
		return nil, 0, err
	}
	infos := make([]models.TuneInfo, 0, len(matches))
	for i := range matches {
		infos = append(infos, matches[i].Info())
	}
	return infos, total, nil
}

// Recent returns every tune touched within the last week, unpaged.
func (s *TuneService) Recent() ([]models.Tune, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-recentWindow).UnixNano()
	out := []models.Tune{}
	err := scanMatches(s.st, store.NSTune, func(t *models.Tune) bool {
		return t.Timestamp >= cutoff
	}, func(t models.Tune) bool {
		out = append(out, t)
		return true
	})
	return out, err
}

// Count returns the number of stored tune records.
func (s *TuneService) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSTune)
}
