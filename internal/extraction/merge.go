// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/vocab"
)

// MergeKey identifies proposals that describe the same value of the same
// field.
func MergeKey(p Proposal) string {
	return p.SchemaField + "::" + NormalizeBySchema(p.SchemaField, p.RawValue)
}

// Merge collapses proposals to one per merge key. Ambiguous proposals pass
// through in place. Among duplicates the first one is kept unless a later one
// sits under the field's preferred heading and the kept one does not. Either
// way the survivor absorbs the candidate fields and missing metadata of the
// other. The input slice is not modified.
func Merge(v *vocab.Vocabulary, proposals []Proposal, logger *zap.Logger) []Proposal {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]Proposal, 0, len(proposals))
	index := make(map[string]int, len(proposals))

	for _, p := range proposals {
		if p.Ambiguous() {
			out = append(out, p)
			continue
		}
		key := MergeKey(p)
		i, seen := index[key]
		if !seen {
			if IsDateField(p.SchemaField) && p.NormalizedValue == "" {
				if iso, _, ok := NormalizeDate(p.RawValue); ok {
					p.NormalizedValue = iso
				}
			}
			index[key] = len(out)
			out = append(out, p)
			logger.Debug("merge add", zap.String("key", key), zap.String("roleHint", p.RoleHint))
			continue
		}

		kept := &out[i]
		if !v.IsPreferredHeading(kept.SchemaField, kept.RoleHint) && v.IsPreferredHeading(p.SchemaField, p.RoleHint) {
			logger.Debug("merge replace", zap.String("key", key),
				zap.String("from", kept.RoleHint), zap.String("to", p.RoleHint))
			p.CandidateFields = union(p.CandidateFields, kept.CandidateFields)
			if p.NormalizedValue == "" {
				p.NormalizedValue = kept.NormalizedValue
			}
			if p.DisplayValue == "" {
				p.DisplayValue = kept.DisplayValue
			}
			out[i] = p
			continue
		}

		kept.CandidateFields = union(kept.CandidateFields, p.CandidateFields)
		if kept.NormalizedValue == "" {
			kept.NormalizedValue = p.NormalizedValue
		}
		if kept.DisplayValue == "" {
			kept.DisplayValue = p.DisplayValue
		}
		if kept.RoleHint == "" {
			kept.RoleHint = p.RoleHint
		}
		logger.Debug("merge metadata", zap.String("key", key), zap.Strings("candidateFields", kept.CandidateFields))
	}
	return out
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// SortByDocumentOrder returns proposals ordered by page, then vertical
// position, then discovery index when both sides carry one. Missing pages and
// positions sort last. The sort is stable.
func SortByDocumentOrder(proposals []Proposal) []Proposal {
	out := slices.Clone(proposals)
	slices.SortStableFunc(out, func(a, b Proposal) int {
		if c := compareOptional(a.Page, b.Page); c != 0 {
			return c
		}
		if c := compareOptional(a.Position, b.Position); c != 0 {
			return c
		}
		if a.DiscoveryIndex != nil && b.DiscoveryIndex != nil {
			return cmp.Compare(*a.DiscoveryIndex, *b.DiscoveryIndex)
		}
		return 0
	})
	return out
}

func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
