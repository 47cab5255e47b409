package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitWriterLevels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	InitWriter(&buf, false)
	WithComponent("pipeline").Debug().Msg("hidden")
	WithComponent("pipeline").Info().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=")

	buf.Reset()
	InitWriter(&buf, true)
	WithComponent("ffmpeg").Debug().Msg("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
