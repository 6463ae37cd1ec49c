package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugfGated(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		InitLogging()
		SetDebug(false)
	})

	SetDebug(false)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebug(true)
	assert.True(t, DebugEnabled())
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "[DEBUG] shown 2")
}
