package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chanu-03/Study-Mate/internal/config"
)

func TestOptions_FromConfig(t *testing.T) {
	opt := Options(config.LogConfig{
		Engine:      "zap",
		Level:       "DEBUG",
		Format:      "json",
		OutputPaths: []string{"stdout"},
		File:        "/tmp/sm.log",
	}, false)

	assert.Equal(t, "zap", opt.Engine)
	assert.Equal(t, "DEBUG", opt.Level)
	assert.Equal(t, "json", opt.Format)
	assert.Equal(t, []string{"stdout"}, opt.OutputPaths)
	assert.Equal(t, ServiceName, opt.GetInitialFields()["service.name"])
}

func TestOptions_ToFile(t *testing.T) {
	opt := Options(config.LogConfig{OutputPaths: []string{"stderr"}, File: "/tmp/sm.log"}, true)
	assert.Equal(t, []string{"/tmp/sm.log"}, opt.OutputPaths)
}

func TestInit_RejectsBadLevel(t *testing.T) {
	opt := Options(config.LogConfig{Level: "LOUD"}, false)
	assert.Error(t, Init(opt))
}

func TestInit_Stderr(t *testing.T) {
	opt := Options(config.LogConfig{Level: "WARN", OutputPaths: []string{"stderr"}}, false)
	require.NoError(t, Init(opt))
	Flush()
}
