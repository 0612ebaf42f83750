package render

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsWholeCharacters(t *testing.T) {
	got := truncate("Zoë Müller-Øster", 3)
	assert.Equal(t, "Zoë", got)
	assert.True(t, utf8.ValidString(truncate("Ñandú", 2)))
	assert.Equal(t, "short", truncate("short", 10))
}
