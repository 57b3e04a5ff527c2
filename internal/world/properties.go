// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package world

import (
	"os"
	"strings"

	"github.com/samber/oops"
)

// experimentalKey is the server.properties key custom add-ons need.
const experimentalKey = "experimental-gameplay"

// EnsureExperimentalGameplay appends "experimental-gameplay=true" to the
// properties file unless the key is already present, in any form. The
// flag is appended once and never removed. Returns true when the file
// was modified. A missing file is created.
func EnsureExperimentalGameplay(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, oops.With("path", path).Wrapf(err, "read server properties")
	}

	for _, line := range strings.Split(string(data), "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), experimentalKey)
		if !ok {
			continue
		}
		// Only an exact key counts; "experimental-gameplay-foo" is a
		// different property.
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" || strings.HasPrefix(rest, "=") {
			return false, nil
		}
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += experimentalKey + "=true\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, oops.With("path", path).Wrapf(err, "write server properties")
	}
	return true, nil
}
