package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("annotation not found")
	ErrFieldNotApplicable = errors.New("field does not apply to this annotation type")
)

// Patch is a partial replacement of an annotation's mutable fields. Nil
// fields are left untouched. Text and FontSize only apply to text
// annotations.
type Patch struct {
	Color     *string
	LineWidth *float64
	Opacity   *float64
	Hidden    *bool
	Text      *string
	FontSize  *float64
}

// Store owns the ordered annotation sequence and the selection. Order is
// append order, which is also draw order; hit-testing walks it backwards.
type Store struct {
	mu        sync.RWMutex
	items     []Annotation
	selected  string
	clock     Clock
	listeners []func(rev uint64)
	log       *zap.Logger
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		items: make([]Annotation, 0),
		log:   zap.L().Named("store"),
	}
}

// OnChange registers fn to run after every mutation, outside the store lock.
func (s *Store) OnChange(fn func(rev uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Add stamps a fresh id and the settings' style on shape and appends it.
// Text commits take their font size from the settings.
func (s *Store) Add(shape Shape, settings Settings) Annotation {
	if t, ok := shape.(Text); ok && t.FontSize == 0 {
		t.FontSize = settings.FontSize
		if t.FontSize == 0 {
			t.FontSize = DefaultFontSize
		}
		shape = t
	}
	a := Annotation{ID: newID(), Style: settings.Style(), Shape: shape}

	s.mu.Lock()
	s.items = append(s.items, a.Clone())
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.log.Debug("annotation added", zap.String("id", a.ID), zap.String("type", string(a.Kind())))
	s.notify(rev)
	return a
}

// Update merges p into the annotation with the given id.
func (s *Store) Update(id string, p Patch) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	updated, err := applyPatch(s.items[i], p)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, err)
	}
	s.items[i] = updated
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(rev)
	return nil
}

func applyPatch(a Annotation, p Patch) (Annotation, error) {
	if p.Text != nil || p.FontSize != nil {
		t, ok := a.Shape.(Text)
		if !ok {
			return a, fmt.Errorf("text fields on %s: %w", a.Kind(), ErrFieldNotApplicable)
		}
		if p.Text != nil {
			t.Text = *p.Text
		}
		if p.FontSize != nil {
			t.FontSize = *p.FontSize
		}
		a.Shape = t
	}
	if p.Color != nil {
		a.Style.Color = *p.Color
	}
	if p.LineWidth != nil {
		a.Style.LineWidth = *p.LineWidth
	}
	if p.Opacity != nil {
		a.Style.Opacity = *p.Opacity
	}
	if p.Hidden != nil {
		a.Style.Hidden = *p.Hidden
	}
	return a, nil
}

// ToggleVisibility hides a visible annotation or shows an invisible one.
// Hiding keeps the opacity, so two toggles restore the original state.
// Showing an annotation whose opacity is 0, as older data exports store
// hidden records, resets it to DefaultOpacity.
func (s *Store) ToggleVisibility(id string) error {
	a, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	hidden := a.Visible()
	p := Patch{Hidden: &hidden}
	if !hidden && a.Style.Opacity <= 0 {
		opacity := DefaultOpacity
		p.Opacity = &opacity
	}
	return s.Update(id, p)
}

// SetText replaces the text of a text annotation. Whitespace-only input is
// ignored, like an empty edit in the list.
func (s *Store) SetText(id, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.Update(id, Patch{Text: &text})
}

// Remove deletes the annotation and clears the selection if it pointed at it.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.log.Debug("annotation removed", zap.String("id", id))
	s.notify(rev)
	return true
}

// Select marks id as the selected annotation. An empty id clears the
// selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	if id != "" && s.indexOf(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("select %s: %w", id, ErrNotFound)
	}
	if s.selected == id {
		s.mu.Unlock()
		return nil
	}
	s.selected = id
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(rev)
	return nil
}

// Selected returns the selected id, or "" when nothing is selected.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Annotation{}, false
	}
	return s.items[i].Clone(), true
}

// Snapshot returns a copy of the sequence in stored order.
func (s *Store) Snapshot() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Revision returns the revision of the last mutation.
func (s *Store) Revision() uint64 {
	return s.clock.Now()
}

// Replace swaps the whole sequence, for example when restoring a data
// export. Records without an id get a fresh one; duplicate ids are
// re-assigned so ids stay unique.
func (s *Store) Replace(list []Annotation) {
	seen := make(map[string]bool, len(list))
	items := make([]Annotation, 0, len(list))
	for _, a := range list {
		if a.Shape == nil {
			continue
		}
		if a.ID == "" || seen[a.ID] {
			a.ID = newID()
		}
		seen[a.ID] = true
		items = append(items, a.Clone())
	}

	s.mu.Lock()
	s.items = items
	s.selected = ""
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.log.Info("annotations replaced", zap.Int("count", len(items)))
	s.notify(rev)
}

// Clear removes every annotation.
func (s *Store) Clear() {
	s.Replace(nil)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notify(rev uint64) {
	s.mu.RLock()
	listeners := make([]func(uint64), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(rev)
	}
}
