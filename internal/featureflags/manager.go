// Package featureflags gates optional platform features, such as the
// GeeksforGeeks tutorial import, from the FEATURE_FLAGS config value.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// FlagGfGImport gates the external tutorial import endpoint.
const FlagGfGImport = "gfg_import"

// Manager evaluates flags from a comma-separated key=value list, e.g.
// "gfg_import=on,event_checkin=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses the raw flag list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether the named flag is on for the given user.
// A value is either a boolean (on/true/1, off/false/0) or a percentage
// rollout ("25%") that buckets users deterministically. Unknown flags
// and unknown values are off.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if pctRaw, isPct := strings.CutSuffix(value, "%"); isPct {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		// Anonymous callers never land in a partial rollout.
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < pct
	}

	return false
}

// Raw returns a copy of the configured flag values as parsed.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every configured flag for one user. Used by the
// admin feature-flag endpoint.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rolloutBucket hashes flag name and user into a stable 0-99 bucket, so a
// user stays inside or outside a rollout across requests.
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
