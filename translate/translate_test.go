package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("line 3", From("line %d", 3))

	assert.NoError(SetLocale(DEFAULT_LOCALE))
	assert.Equal("value 0x1f", From("value %#x", 0x1f))

	assert.Error(SetLocale("not a locale!"))
}

func TestHostLocales(t *testing.T) {
	assert := assert.New(t)

	tags := hostLocales()
	assert.NotEmpty(tags)
	for _, tag := range tags {
		assert.NotEmpty(tag)
	}
}
