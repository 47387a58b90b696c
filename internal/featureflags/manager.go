// Package featureflags evaluates runtime toggles configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// GoogleSignIn gates identity-provider sign-in and auto-provisioning.
	GoogleSignIn = "google_signin"
	// LiveNotifications gates the websocket notification stream.
	LiveNotifications = "live_notifications"
)

// flag is a parsed toggle; percent is -1 for plain on/off values.
type flag struct {
	raw     string
	on      bool
	percent int
}

// Manager evaluates flags parsed from "name=value" pairs, e.g.
// "google_signin=on,live_notifications=25%".
type Manager struct {
	flags map[string]flag
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]flag)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		if f, ok := parseValue(value); ok {
			out[name] = f
		}
	}
	return &Manager{flags: out}
}

func parseValue(value string) (flag, bool) {
	switch value {
	case "on", "true", "1":
		return flag{raw: value, on: true, percent: -1}, true
	case "off", "false", "0":
		return flag{raw: value, percent: -1}, true
	}
	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return flag{}, false
		}
		return flag{raw: value, percent: min(max(pct, 0), 100)}, true
	}
	return flag{}, false
}

// Enabled returns whether a flag is enabled for a given user. Percentage
// rollouts bucket users deterministically and exclude anonymous callers.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	if f.percent < 0 {
		return f.on
	}
	switch {
	case f.percent == 0:
		return false
	case f.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < f.percent
}

// EnabledOrDefault is Enabled for flags that apply before a user is known;
// unset flags fall back to def.
func (m *Manager) EnabledOrDefault(name string, def bool) bool {
	return m.EnabledForOrDefault(name, 0, def)
}

// EnabledForOrDefault is Enabled with a fallback for unset flags.
func (m *Manager) EnabledForOrDefault(name string, userID uint, def bool) bool {
	if m == nil {
		return def
	}
	if _, ok := m.flags[normalize(name)]; !ok {
		return def
	}
	return m.Enabled(name, userID)
}

// Names returns the configured flag names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.flags))
	for name := range m.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, f := range m.flags {
		out[k] = f.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
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

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
