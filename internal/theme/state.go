package theme

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
)

// Mirror persists the preference across sessions.
type Mirror interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Applier pushes the active theme to the presentation layer.
type Applier interface {
	ApplyTheme(theme enums.Theme)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(enums.Theme)

func (f ApplierFunc) ApplyTheme(theme enums.Theme) { f(theme) }

// State is the light/dark preference of one browser.
type State struct {
	mu      sync.Mutex
	mirror  Mirror
	key     string
	current enums.Theme
}

// NewState builds an unloaded state; Current reports light until Load runs.
func NewState(mirror Mirror, key string) *State {
	return &State{mirror: mirror, key: key, current: enums.ThemeLight}
}

// Load reads the persisted preference. Anything other than "dark" is light.
func (s *State) Load(ctx context.Context, applier Applier) (enums.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.mirror.Lookup(ctx, s.key)
	if err != nil {
		return s.current, fmt.Errorf("load theme: %w", err)
	}
	s.current = enums.ThemeFromDark(ok && raw == enums.ThemeDark.String())
	apply(applier, s.current)
	return s.current, nil
}

// Toggle flips the theme, persists it and applies it.
func (s *State) Toggle(ctx context.Context, applier Applier) (enums.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, s.current.Opposite(), applier)
}

// Set forces the theme, persists it and applies it.
func (s *State) Set(ctx context.Context, dark bool, applier Applier) (enums.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, enums.ThemeFromDark(dark), applier)
}

// Current returns the in-memory theme.
func (s *State) Current() enums.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *State) store(ctx context.Context, next enums.Theme, applier Applier) (enums.Theme, error) {
	// No TTL: the preference outlives sessions.
	if err := s.mirror.Set(ctx, s.key, next.String(), 0); err != nil {
		return s.current, fmt.Errorf("store theme: %w", err)
	}
	s.current = next
	apply(applier, next)
	return next, nil
}

func apply(applier Applier, theme enums.Theme) {
	if applier != nil {
		applier.ApplyTheme(theme)
	}
}
