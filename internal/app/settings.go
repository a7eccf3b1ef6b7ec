package app

import "strconv"

// Settings are the user-tunable preferences persisted in app_settings.
type Settings struct {
	FontSize    int
	DarkMode    bool
	AutoSave    bool
	ShowWelcome bool
}

const (
	minFontSize     = 8
	maxFontSize     = 32
	defaultFontSize = 14
)

func clampFontSize(size int) int {
	if size < minFontSize {
		return minFontSize
	}
	if size > maxFontSize {
		return maxFontSize
	}
	return size
}

func DefaultSettings() Settings {
	return Settings{
		FontSize:    defaultFontSize,
		DarkMode:    true,
		AutoSave:    true,
		ShowWelcome: true,
	}
}

// SettingsFromMap overlays persisted values on the defaults. Unknown keys and
// unparsable values are ignored so an older or corrupted store never blocks
// startup.
func SettingsFromMap(values map[string]string) Settings {
	s := DefaultSettings()
	if raw, ok := values["font_size"]; ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= minFontSize && v <= maxFontSize {
			s.FontSize = v
		}
	}
	if raw, ok := values["dark_mode"]; ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.DarkMode = v
		}
	}
	if raw, ok := values["auto_save"]; ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.AutoSave = v
		}
	}
	if raw, ok := values["show_welcome"]; ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.ShowWelcome = v
		}
	}
	return s
}

func (s Settings) ToMap() map[string]string {
	return map[string]string{
		"font_size":    strconv.Itoa(s.FontSize),
		"dark_mode":    strconv.FormatBool(s.DarkMode),
		"auto_save":    strconv.FormatBool(s.AutoSave),
		"show_welcome": strconv.FormatBool(s.ShowWelcome),
	}
}
