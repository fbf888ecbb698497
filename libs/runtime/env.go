package runtime

import "time"

// LoadLocation resolves an IANA zone name, falling back to UTC for an empty name.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
