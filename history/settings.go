package history

import (
	log "github.com/sirupsen/logrus"
)

// SettingsKey is the storage key of the user settings
const SettingsKey = "settings"

// Settings are the user preferences shared by every view
type Settings struct {
	// Notifications raises alerts for high risk and botnet C2 addresses
	Notifications bool `json:"notifications"`
	// AutoRefresh repeats lookups on the configured interval
	AutoRefresh bool `json:"autoRefresh"`
}

// DefaultSettings are used until the user saves their own
func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		AutoRefresh:   false,
	}
}

// LoadSettings returns the saved settings. Missing or unreadable settings
// fall back to the defaults.
func (s *Store) LoadSettings() Settings {
	settings := DefaultSettings()

	value, ok, err := s.kv.Get(SettingsKey)
	if err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Warn("Could not read settings, using defaults")
		return settings
	}
	if !ok {
		return settings
	}

	if err := json.Unmarshal(value, &settings); err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Warn("Discarding unreadable settings")
		return DefaultSettings()
	}
	return settings
}

// SaveSettings persists the settings
func (s *Store) SaveSettings(settings Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return &StorageError{Op: "encode", Key: SettingsKey, Err: err}
	}
	if err := s.kv.Set(SettingsKey, encoded); err != nil {
		return &StorageError{Op: "write", Key: SettingsKey, Err: err}
	}
	return nil
}
