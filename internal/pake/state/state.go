// pake is a content-addressed build engine.
// Copyright (C) 2026 The pake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package state persists the map from canonical target name to its
// last-successfully-recorded result across engine invocations (§4.2).
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"pake/internal/pake/core"
)

// DefaultFileName is the canonical state file name under the engine root.
const DefaultFileName = ".pake-state"

// entry is the on-disk shape of one target's recorded state (§6). Unknown
// fields are tolerated on decode; this struct only ever sees the fields it
// declares.
type entry struct {
	Kind     core.Kind `json:"kind"`
	Value    any       `json:"value,omitempty"`
	InputSig string    `json:"input_sig,omitempty"`
}

// Record is an in-memory entry: the recorded Result plus the input
// signature the resolver computed when it was stored (§4.5 step 9).
type Record struct {
	Result   core.Result
	InputSig string
}

// Map is the full persisted state: canonical target name -> Record.
type Map map[string]Record

// Load reads the state file at path. A missing file yields an empty Map.
// A corrupt file is logged as a warning and also yields an empty Map —
// corruption is never fatal (§4.2).
func Load(path string, log *slog.Logger) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, err
	}

	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		if log != nil {
			log.Warn("state file is corrupt, starting from empty state", "path", path, "error", err)
		}
		return Map{}, nil
	}

	m := make(Map, len(raw))
	for target, e := range raw {
		m[target] = Record{
			Result:   core.Result{Kind: e.Kind, Value: e.Value},
			InputSig: e.InputSig,
		}
	}
	return m, nil
}

// Save writes m to path atomically: it writes to a temp file in the same
// directory, fsyncs it, then renames it over path. A partial write or a
// crash mid-save can never leave path holding truncated JSON.
func Save(path string, m Map) error {
	raw := make(map[string]entry, len(m))
	for target, rec := range m {
		raw[target] = entry{Kind: rec.Result.Kind, Value: rec.Result.Value, InputSig: rec.InputSig}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pake-state-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	tmp = nil // cleanup deferred above is now a no-op

	return os.Rename(tmpPath, path)
}
