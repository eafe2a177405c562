package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/catalog"
	"github.com/wippyai/rsz/config"
	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/schema/snow"
	"github.com/wippyai/rsz/user"
	"github.com/wippyai/rsz/version"
)

type commandContext struct {
	configFlag  string
	versionFlag string
	autoFlag    bool
	levelFlag   string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *zap.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.versionFlag != "" {
			if _, err := version.Parse(c.versionFlag); err != nil {
				c.configErr = fmt.Errorf("--schema-version: %w", err)
				return
			}
			cfg.Decode.SchemaVersion = c.versionFlag
		}
		if c.autoFlag {
			cfg.Decode.AutoVersion = true
		}
		if c.levelFlag != "" {
			cfg.Log.Level = strings.ToLower(c.levelFlag)
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		logger, err := newLogger(cfg.Log)
		if err != nil {
			c.configErr = err
			return
		}
		rsz.SetLogger(logger.Named("rsz"))
		catalog.SetLogger(logger.Named("catalog"))
		c.logger = logger
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) options() (rsz.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return rsz.Options{}, err
	}
	return cfg.Options()
}

func (c *commandContext) registry() (*rsz.Registry, error) {
	return snow.Registry()
}

// input is a file holding an RSZ block, either bare or inside a user
// container.
type input struct {
	path string
	data []byte
	base int64
	user *user.File
}

func loadInput(path string) (*input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseInput(path, data)
}

func parseInput(path string, data []byte) (*input, error) {
	in := &input{path: path, data: data}
	switch {
	case user.IsUser(data):
		f, err := user.Parse(data)
		if err != nil {
			return nil, err
		}
		in.user = f
		in.base = f.RSZOffset
	case len(data) >= 4 && [4]byte(data[:4]) == rsz.Magic:
	default:
		return nil, errors.New(errors.PhaseContainer, errors.KindMagicMismatch).
			Offset(0).
			Detail("%s is neither a user file nor an RSZ block", path).
			Build()
	}
	return in, nil
}

func (in *input) block() (*rsz.Block, error) {
	return rsz.ParseBlock(in.data, in.base)
}

func (in *input) decode(reg *rsz.Registry, opts rsz.Options) (*rsz.Graph, error) {
	return rsz.Decode(in.data, in.base, reg, opts)
}
