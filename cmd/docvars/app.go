// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/config"
	"github.com/docvars/docvars/internal/logging"
	"github.com/docvars/docvars/internal/placeholder"
	"github.com/docvars/docvars/internal/tool"
	"github.com/docvars/docvars/internal/vocab"
)

// app is everything a command needs, built from the loaded configuration.
type app struct {
	cfg             *config.Config
	logger          *zap.Logger
	tools           *tool.Tools
	placeholderizer *placeholder.Placeholderizer
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	v, err := loadVocabulary(cfg.Vocabulary.Path)
	if err != nil {
		return nil, err
	}

	pipeline := tool.DefaultPipeline(v).
		WithLogger(logger.Named("extraction")).
		WithTrace(cfg.Log.Trace)

	conv := placeholder.NewConverter(cfg.Converter.Command, cfg.Converter.Args...)
	conv.Timeout = cfg.Converter.Timeout
	conv.WorkDir = cfg.Converter.WorkDir
	conv.Logger = logger.Named("converter")

	ph := placeholder.New(v, conv).WithLogger(logger.Named("placeholder"))

	return &app{
		cfg:             cfg,
		logger:          logger,
		tools:           tool.New(pipeline, ph),
		placeholderizer: ph,
	}, nil
}

func loadVocabulary(path string) (*vocab.Vocabulary, error) {
	if path == "" {
		return vocab.Default()
	}
	v, err := vocab.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	return v, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
