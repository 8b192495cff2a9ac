package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"mediatidy/internal/config"
	"mediatidy/internal/datestamp"
	"mediatidy/internal/ledger"
	"mediatidy/internal/logging"
)

type commandContext struct {
	configFlag *string
	ledgerFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, ledgerFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		ledgerFlag: ledgerFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) ledgerPath() (string, error) {
	if c.ledgerFlag != nil && strings.TrimSpace(*c.ledgerFlag) != "" {
		return config.ExpandPath(strings.TrimSpace(*c.ledgerFlag))
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.LedgerPath, nil
}

func (c *commandContext) openStore() (*ledger.Store, error) {
	path, err := c.ledgerPath()
	if err != nil {
		return nil, err
	}
	return ledger.Open(path)
}

// acquireLock takes the single-run lock next to the ledger. Both stages
// mutate shared state (the ledger, the sequence-bearing target tree),
// so concurrent runs are refused rather than serialized.
func (c *commandContext) acquireLock() (func(), error) {
	path, err := c.ledgerPath()
	if err != nil {
		return nil, err
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another mediatidy run holds %s", lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}

func (c *commandContext) mismatchPreference() datestamp.Source {
	cfg, err := c.ensureConfig()
	if err == nil && cfg.Dates.MismatchPreference == "meta" {
		return datestamp.SourceMeta
	}
	return datestamp.SourceEXIF
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
