// Package logging initializes the global kart-io logger from the application config.
package logging

import (
	"github.com/kart-io/logger"
	"github.com/kart-io/logger/option"

	"github.com/Chanu-03/Study-Mate/internal/config"
)

// ServiceName is attached to every log entry.
const ServiceName = "studymate"

// Options builds logger options from cfg. When toFile is set the logs go to
// cfg.File instead of cfg.OutputPaths, which keeps the terminal free for the UI.
func Options(cfg config.LogConfig, toFile bool) *option.LogOption {
	opt := option.DefaultLogOption()
	if cfg.Engine != "" {
		opt.Engine = cfg.Engine
	}
	if cfg.Level != "" {
		opt.Level = cfg.Level
	}
	if cfg.Format != "" {
		opt.Format = cfg.Format
	}
	if len(cfg.OutputPaths) > 0 {
		opt.OutputPaths = append([]string(nil), cfg.OutputPaths...)
	}
	if toFile && cfg.File != "" {
		opt.OutputPaths = []string{cfg.File}
	}
	opt.DisableStacktrace = true
	return opt.AddInitialField("service.name", ServiceName)
}

// Init validates opt, creates the logger and installs it globally.
func Init(opt *option.LogOption) error {
	if err := opt.Validate(); err != nil {
		return err
	}
	l, err := logger.New(opt)
	if err != nil {
		return err
	}
	logger.SetGlobal(l)
	return nil
}

// Flush writes out buffered entries of the global logger.
func Flush() {
	_ = logger.Flush()
}
