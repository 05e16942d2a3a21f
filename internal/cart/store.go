package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Store owns one buyer's cart. Every mutation goes through Dispatch, which
// applies Reduce and then re-serializes the result to Storage. An emptied
// cart deletes its storage entry instead of writing an empty list.
type Store struct {
	storage Storage
	key     string
	log     zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners []func(State)
	closed    bool
}

func NewStore(storage Storage, key string, log zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		key:     key,
		log:     log.With().Str("cart_key", key).Logger(),
		state:   State{Items: []Item{}},
	}
}

// Hydrate restores the cart from storage. Missing or unreadable entries
// leave the cart empty; read errors are logged and returned.
func (s *Store) Hydrate(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		s.log.Error().Err(err).Msg("load cart from storage")
		return err
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Error().Err(err).Msg("decode persisted cart")
		return nil
	}

	s.mu.Lock()
	s.state = Reduce(s.state, ReplaceAll{Items: items})
	s.mu.Unlock()
	return nil
}

// State returns a copy of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies cmd, persists the result and notifies listeners when the
// contents changed. It never fails; persistence errors are logged.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, cmd)
	s.state = next
	s.persist(ctx, next)
	changed := !sameItems(prev.Items, next.Items)
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(next.clone())
		}
	}
	return next.clone()
}

func (s *Store) persist(ctx context.Context, st State) {
	if st.Empty() {
		if err := s.storage.Delete(ctx, s.key); err != nil {
			s.log.Error().Err(err).Msg("delete persisted cart")
		}
		return
	}

	b, err := json.Marshal(st.Items)
	if err != nil {
		s.log.Error().Err(err).Msg("encode cart")
		return
	}
	if err := s.storage.Set(ctx, s.key, b); err != nil {
		s.log.Error().Err(err).Msg("save cart to storage")
	}
}

// OnChange registers fn to be called after every mutation that changes the
// cart contents.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.listeners = append(s.listeners, fn)
}

// Close drops all listeners. The persisted cart is kept.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = nil
	s.closed = true
}

func (s *Store) AddItem(ctx context.Context, it Item) State {
	return s.Dispatch(ctx, AddItem{Item: it})
}

func (s *Store) RemoveItem(ctx context.Context, id string) State {
	return s.Dispatch(ctx, RemoveItem{ID: id})
}

func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) State {
	return s.Dispatch(ctx, SetQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) State {
	return s.Dispatch(ctx, Clear{})
}

func (s *Store) ReplaceAll(ctx context.Context, items []Item) State {
	return s.Dispatch(ctx, ReplaceAll{Items: items})
}
