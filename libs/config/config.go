package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v6"
)

// Load fills a tagged struct from the environment (`env`, `envDefault`).
func Load(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// CheckPort validates an already-loaded port value.
func CheckPort(key, value string) error {
	return validPort(key, value)
}

func validPort(key, v string) error {
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return nil
}
