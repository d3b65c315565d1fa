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

package resolve

import (
	"github.com/google/uuid"

	"pake/internal/pake/core"
	"pake/internal/pake/hashx"
)

// depToken is the per-dependency entry folded into a rule's input
// signature. Token is either the dependency's canonicalized (kind, value)
// pair, or — for a dependency that ForcesDirty — a fresh random string,
// so the signature can never repeat for it across runs.
type depToken struct {
	Name  string `json:"name"`
	Token any    `json:"token"`
}

type signatureInput struct {
	RuleKind string     `json:"rule_kind"`
	Identity string     `json:"identity"`
	Deps     []depToken `json:"deps"`
}

// computeInputSig folds a rule's kind, its stable identity (its own
// canonical target for Exact rules, its virtual name for Virtual rules,
// or its source pattern text for Pattern rules — anything that would
// change if the host rewrote the rule itself), and its resolved
// dependency results into the digest stored as input_sig (§4.5 step 6,
// §6). A dependency that ForcesDirty contributes a fresh random token
// instead of its value, so the resulting signature can never match a
// prior run's — this is what makes Absent and `always` propagate
// dirtiness to every dependent without special-casing the comparison
// itself. The second return value reports whether any dependency
// ForcesDirty; the caller folds this into its own produced Result (via
// Result.ForceDirty) so the property keeps propagating past this rule
// to whatever depends on it in turn, rather than stopping one level up.
func computeInputSig(ruleKind core.RuleKind, identity string, depNames []string, depResults []core.Result) (sig string, anyForcesDirty bool, err error) {
	toks := make([]depToken, len(depNames))
	for i, name := range depNames {
		r := depResults[i]
		if r.ForcesDirty() {
			anyForcesDirty = true
			toks[i] = depToken{Name: name, Token: uuid.New().String()}
			continue
		}
		toks[i] = depToken{Name: name, Token: map[string]any{"kind": string(r.Kind), "value": r.Value}}
	}
	sig, err = hashx.DigestJSON(signatureInput{
		RuleKind: string(ruleKind),
		Identity: identity,
		Deps:     toks,
	})
	return sig, anyForcesDirty, err
}
