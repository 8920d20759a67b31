package theme

import (
	"context"
	"strings"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
)

// KeyFunc maps a device id onto its mirror key.
type KeyFunc func(deviceID string) string

// Service resolves the State of a device from the shared mirror on every call,
// so all API instances agree on the preference.
type Service struct {
	mirror Mirror
	keyFor KeyFunc
}

func NewService(mirror Mirror, keyFor KeyFunc) *Service {
	return &Service{mirror: mirror, keyFor: keyFor}
}

func (s *Service) state(deviceID string) (*State, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	return NewState(s.mirror, s.keyFor(deviceID)), nil
}

// Current loads and applies the device's theme.
func (s *Service) Current(ctx context.Context, deviceID string, applier Applier) (enums.Theme, error) {
	st, err := s.state(deviceID)
	if err != nil {
		return enums.ThemeLight, err
	}
	theme, err := st.Load(ctx, applier)
	if err != nil {
		return theme, pkgerrors.Classify(err, "load theme")
	}
	return theme, nil
}

// Toggle flips the device's persisted theme.
func (s *Service) Toggle(ctx context.Context, deviceID string, applier Applier) (enums.Theme, error) {
	st, err := s.state(deviceID)
	if err != nil {
		return enums.ThemeLight, err
	}
	if _, err := st.Load(ctx, nil); err != nil {
		return st.Current(), pkgerrors.Classify(err, "load theme")
	}
	theme, err := st.Toggle(ctx, applier)
	if err != nil {
		return theme, pkgerrors.Classify(err, "store theme")
	}
	return theme, nil
}

// Set stores an explicit theme for the device.
func (s *Service) Set(ctx context.Context, deviceID string, theme enums.Theme, applier Applier) (enums.Theme, error) {
	if !theme.IsValid() {
		return enums.ThemeLight, pkgerrors.New(pkgerrors.CodeValidation, "invalid theme")
	}
	st, err := s.state(deviceID)
	if err != nil {
		return enums.ThemeLight, err
	}
	stored, err := st.Set(ctx, theme.IsDark(), applier)
	if err != nil {
		return stored, pkgerrors.Classify(err, "store theme")
	}
	return stored, nil
}
