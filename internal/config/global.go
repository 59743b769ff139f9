// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride, when set, replaces the platform lookup in ConfigDir.
// Tests use it to keep the developer's own plugcheck config out of reach.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir until Reset is called.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores the platform config directory lookup.
func Reset() {
	configDirOverride = ""
}
