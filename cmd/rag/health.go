package main

import (
	"fmt"
	"time"

	"github.com/abelbrown/ragaweb/internal/backend"
	"github.com/abelbrown/ragaweb/internal/config"
)

func (c *cli) runHealth(args []string) error {
	fs := c.flags("health", "[-timeout D]")
	timeout := fs.Duration("timeout", 5*time.Second, "Give up after this long")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	api := backend.NewClient(cfg.Backend.URL, nil)
	api.SetTimeout(*timeout)

	start := time.Now()
	status, err := api.Health(c.ctx)
	if err != nil {
		return fmt.Errorf("health %s: %w", api.BaseURL(), err)
	}
	fmt.Fprintf(c.out, "%s %s (%s)\n", status, api.BaseURL(), time.Since(start).Round(time.Millisecond))
	return nil
}
