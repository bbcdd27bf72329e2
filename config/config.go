// Package config loads the persistent settings of the simulator from
// settings.yaml in the user configuration directory.
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"gopkg.in/yaml.v3"

	"github.com/iiTzHyper/avr/cpu"
	"github.com/iiTzHyper/avr/emulator"
	"github.com/iiTzHyper/avr/translate"
)

const (
	VENDOR        = "avr"
	APPLICATION   = "avrsim"
	SETTINGS_FILE = "settings.yaml"
	HISTORY_FILE  = "history"
)

// Settings are the user adjustable defaults.
type Settings struct {
	StepLimit    int    `yaml:"step_limit"`    // Runaway limit; 0 for none.
	ConsoleLimit int    `yaml:"console_limit"` // printf transcript limit in bytes; 0 for none.
	Color        bool   `yaml:"color"`         // Highlight changed cells in the debugger.
	HistorySize  int    `yaml:"history_size"`  // Debugger history lines.
	Locale       string `yaml:"locale"`        // BCP 47 tag overriding the host locale.
}

// Default returns the built in settings.
func Default() Settings {
	return Settings{
		StepLimit:   cpu.STEP_LIMIT,
		Color:       true,
		HistorySize: 500,
	}
}

// Parse reads YAML settings on top of the defaults.
func Parse(data []byte) (settings Settings, err error) {
	settings = Default()
	err = yaml.Unmarshal(data, &settings)
	if err != nil {
		err = errors.Wrap(err, SETTINGS_FILE)
		return
	}

	if settings.StepLimit < 0 {
		err = ErrSetting{Name: "step_limit", Value: settings.StepLimit}
		return
	}
	if settings.ConsoleLimit < 0 {
		err = ErrSetting{Name: "console_limit", Value: settings.ConsoleLimit}
		return
	}

	return
}

// Marshal returns settings as YAML.
func (settings Settings) Marshal() (data []byte, err error) {
	data, err = yaml.Marshal(&settings)
	if err != nil {
		err = errors.Wrap(err, SETTINGS_FILE)
	}
	return
}

func dirs() configdir.ConfigDir {
	return configdir.New(VENDOR, APPLICATION)
}

// Load returns the settings from the first configuration folder holding a
// settings file, or the defaults when there is none.
func Load() (settings Settings, err error) {
	folder := dirs().QueryFolderContainsFile(SETTINGS_FILE)
	if folder == nil {
		settings = Default()
		return
	}

	data, err := folder.ReadFile(SETTINGS_FILE)
	if err != nil {
		err = errors.Wrap(err, filepath.Join(folder.Path, SETTINGS_FILE))
		return
	}

	return Parse(data)
}

// Save writes the settings to the per user configuration folder.
func (settings Settings) Save() (err error) {
	data, err := settings.Marshal()
	if err != nil {
		return
	}

	folders := dirs().QueryFolders(configdir.Global)
	if len(folders) == 0 {
		err = ErrNoFolder
		return
	}

	err = folders[0].WriteFile(SETTINGS_FILE, data)
	if err != nil {
		err = errors.Wrap(err, filepath.Join(folders[0].Path, SETTINGS_FILE))
	}
	return
}

// HistoryPath returns the debugger history file in the cache folder, or
// "" if the folder cannot be created.
func HistoryPath() string {
	cache := dirs().QueryCacheFolder()
	if err := cache.MkdirAll(); err != nil {
		return ""
	}

	return filepath.Join(cache.Path, HISTORY_FILE)
}

// Apply configures an emulator and the message locale.
func (settings Settings) Apply(emu *emulator.Emulator) (err error) {
	emu.StepLimit = settings.StepLimit
	emu.Console.Capacity = settings.ConsoleLimit

	if len(settings.Locale) != 0 {
		err = translate.SetLocale(settings.Locale)
		if err != nil {
			err = errors.Wrap(err, "locale")
		}
	}

	return
}
