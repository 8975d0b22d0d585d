package scanner

import (
	"fmt"
	"os"
	"strings"
)

// Blacklist is a set of usernames whose follow changes are suppressed.
// Some accounts deactivate and reactivate often; listing them here keeps
// the noise out of the notification channels.
type Blacklist map[string]struct{}

// LoadBlacklist reads a newline-separated username file. A missing file is
// an empty blacklist, not an error.
func LoadBlacklist(path string) (Blacklist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Blacklist{}, nil
		}
		return nil, fmt.Errorf("read blacklist file: %w", err)
	}

	list := Blacklist{}
	for _, line := range strings.Split(string(raw), "\n") {
		username := strings.TrimSpace(line)
		if username == "" {
			continue
		}
		list[username] = struct{}{}
	}
	return list, nil
}

// Contains reports whether the username is blacklisted.
func (b Blacklist) Contains(username string) bool {
	_, ok := b[username]
	return ok
}
