package config

import "fmt"

func errMissing(key string) error {
	return fmt.Errorf("config: %s must be set", key)
}

func errInvalid(key, value string) error {
	return fmt.Errorf("config: invalid %s %q", key, value)
}
