package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/emulator"
)

func TestParse(t *testing.T) {
	table := [](struct {
		name   string
		yaml   string
		expect Settings
	}){
		{"empty", "", Default()},
		{"partial", "step_limit: 50\n", Settings{StepLimit: 50, Color: true, HistorySize: 500}},
		{"all", "step_limit: 0\nconsole_limit: 64\ncolor: false\nhistory_size: 10\nlocale: fr-FR\n",
			Settings{StepLimit: 0, ConsoleLimit: 64, Color: false, HistorySize: 10, Locale: "fr-FR"}},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)
			settings, err := Parse([]byte(entry.yaml))
			assert.NoError(err)
			assert.Equal(entry.expect, settings)
		})
	}
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse([]byte("step_limit: [1, 2]\n"))
	assert.ErrorContains(err, SETTINGS_FILE)

	_, err = Parse([]byte("step_limit: -1\n"))
	assert.Equal(ErrSetting{Name: "step_limit", Value: -1}, err)

	_, err = Parse([]byte("console_limit: -5\n"))
	assert.Equal(ErrSetting{Name: "console_limit", Value: -5}, err)
}

func TestMarshal(t *testing.T) {
	assert := assert.New(t)

	settings := Default()
	settings.Locale = "en-GB"

	data, err := settings.Marshal()
	assert.NoError(err)
	assert.Contains(string(data), "history_size: 500")

	back, err := Parse(data)
	assert.NoError(err)
	assert.Equal(settings, back)
}

func TestApply(t *testing.T) {
	assert := assert.New(t)

	emu := emulator.NewEmulator()
	settings := Settings{StepLimit: 7, ConsoleLimit: 3}
	assert.NoError(settings.Apply(emu))
	assert.Equal(7, emu.StepLimit)
	assert.Equal(3, emu.Console.Capacity)

	settings.Locale = "not a tag!"
	assert.ErrorContains(settings.Apply(emu), "locale")
}
