// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hjson/hjson-go/v4"
)

// Load reads and parses the descriptor file at path, applying the §3
// defaults. Process-level keys may be written snake_case or dash-case;
// both spellings are normalized before decoding.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	normalizeProcessKeys(raw)

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}

	d := defaultDescriptor()
	if err := json.Unmarshal(jsonData, d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if len(d.Process.StartCmd) == 0 {
		return nil, fmt.Errorf("%s: process.start_cmd is required", path)
	}

	return d, nil
}

// normalizeProcessKeys rewrites dash-separated process.* keys (and the
// control.one_time/control.restart_always aliases) to their snake_case
// equivalents in place, so a single set of json tags covers both
// spellings the descriptor schema allows.
func normalizeProcessKeys(raw map[string]interface{}) {
	if control, ok := raw["control"].(map[string]interface{}); ok {
		renameKey(control, "one-time", "one_time")
		renameKey(control, "restart-always", "restart_always")
	}
	if process, ok := raw["process"].(map[string]interface{}); ok {
		for key := range process {
			snake := strings.ReplaceAll(key, "-", "_")
			if snake != key {
				renameKey(process, key, snake)
			}
		}
	}
}

func renameKey(m map[string]interface{}, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	delete(m, from)
	if _, exists := m[to]; !exists {
		m[to] = v
	}
}
