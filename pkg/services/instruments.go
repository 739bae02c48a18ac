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

// InstrumentService owns the marketplace listings.
type InstrumentService struct {
	st *store.Store
	mu *sync.RWMutex
}

func (s *InstrumentService) load(id uint64) (*models.Instrument, bool, error) {
	b, ok, err := s.st.Get(store.NSInstrument, utils.FormatID(id))
	if err != nil || !ok {
		return nil, false, err
	}
	var inst models.Instrument
	if err := json.Unmarshal(b, &inst); err != nil {
		return nil, false, fmt.Errorf("corrupt instrument %d: %w", id, err)
	}
	return &inst, true, nil
}

// Add creates a marketplace listing and returns its assigned id.
func (s *InstrumentService) Add(sellerPrincipal, buyerPrincipal, username, name, location, product, comment, price string, photos [][]byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst := &models.Instrument{
		ID:              utils.GenID(),
		SellerPrincipal: sellerPrincipal,
		BuyerPrincipal:  buyerPrincipal,
		Username:        username,
		Name:            name,
		Location:        location,
		Product:         product,
		Comment:         comment,
		Price:           price,
		Photos:          photos,
	}
	b, err := json.Marshal(inst)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal instrument: %w", err)
	}
	if err := s.st.Put(store.NSInstrument, utils.FormatID(inst.ID), b); err != nil {
		return 0, err
	}
	logger.Info("instrument_added", "id", inst.ID, "seller", sellerPrincipal)
	return inst.ID, nil
}

// Delete removes a listing; only the seller may delete.
func (s *InstrumentService) Delete(id uint64, sellerPrincipal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok, err := s.load(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if inst.SellerPrincipal != sellerPrincipal {
		return ErrUnauthorized
	}
	if err := s.st.Delete(store.NSInstrument, utils.FormatID(id)); err != nil {
		return err
	}
	logger.Info("instrument_deleted", "id", id, "seller", sellerPrincipal)
	return nil
}

// List pages through listings whose name or location contains sub,
// case-insensitively.
func (s *InstrumentService) List(sub string, page int) ([]models.Instrument, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(sub)
	pred := func(inst *models.Instrument) bool {
		return strings.Contains(strings.ToLower(inst.Name), needle) ||
			strings.Contains(strings.ToLower(inst.Location), needle)
	}
	return queryPage(s.st, store.NSInstrument, pred, page, PageInstruments)
}

// Count returns the number of stored listings.
func (s *InstrumentService) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Count(store.NSInstrument)
}
