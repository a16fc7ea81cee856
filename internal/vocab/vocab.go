// SPDX-License-Identifier: Apache-2.0

// Package vocab holds the keyword vocabularies that drive contract field
// extraction and placeholder naming. A Vocabulary is loaded once and then
// shared read-only by every extractor.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

// Heading families referenced by the extractors.
const (
	FamilyParties             = "parties"
	FamilyScope               = "scope"
	FamilyFees                = "fees"
	FamilyGoverningLaw        = "governingLaw"
	FamilyInventionAssignment = "inventionAssignment"
	FamilyLicenseTerms        = "licenseTerms"
	FamilyIPValidity          = "ipValidity"
	FamilySignatures          = "signatures"
)

//go:embed contract_keywords.yaml
var defaultDocument []byte

//go:embed schema.cue
var schemaSource string

type FeeStructureRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type SignatureCues struct {
	Ignore      []string `yaml:"ignore" json:"ignore"`
	TailAnchors int      `yaml:"tailAnchors" json:"tailAnchors"`
}

type DateCues struct {
	Effective  []string `yaml:"effective" json:"effective"`
	Expiration []string `yaml:"expiration" json:"expiration"`
	Execution  []string `yaml:"execution" json:"execution"`
}

type AmountCues struct {
	Fee          []string           `yaml:"fee" json:"fee"`
	Retainer     []string           `yaml:"retainer" json:"retainer"`
	FeeStructure []FeeStructureRule `yaml:"feeStructure" json:"feeStructure"`
}

type PartyCues struct {
	RoleLabels    []string `yaml:"roleLabels" json:"roleLabels"`
	InventorVerbs []string `yaml:"inventorVerbs" json:"inventorVerbs"`
}

type IPCues struct {
	TypeCues                []string `yaml:"typeCues" json:"typeCues"`
	LicenseScopeCues        []string `yaml:"licenseScopeCues" json:"licenseScopeCues"`
	InventionAssignmentCues []string `yaml:"inventionAssignmentCues" json:"inventionAssignmentCues"`
}

type GoverningLawCues struct {
	Cues []string `yaml:"cues" json:"cues"`
}

// Vocabulary is the immutable keyword configuration. Callers must not modify
// the exported slices and maps after Load returns.
type Vocabulary struct {
	Headings      map[string][]string `yaml:"headings" json:"headings"`
	FieldFamilies map[string]string   `yaml:"fieldFamilies" json:"fieldFamilies"`
	Signatures    SignatureCues       `yaml:"signatures" json:"signatures"`
	Dates         DateCues            `yaml:"dates" json:"dates"`
	Amounts       AmountCues          `yaml:"amounts" json:"amounts"`
	Parties       PartyCues           `yaml:"parties" json:"parties"`
	IP            IPCues              `yaml:"ip" json:"ip"`
	GoverningLaw  GoverningLawCues    `yaml:"governingLaw" json:"governingLaw"`
	Qualifiers    []string            `yaml:"qualifiers" json:"qualifiers"`
	Placeholders  map[string]string   `yaml:"placeholders" json:"placeholders"`
	Labels        map[string]string   `yaml:"labels" json:"labels"`
	EnumOptions   map[string][]string `yaml:"enumOptions" json:"enumOptions"`

	normalized map[string][]string
	known      map[string]struct{}
	patterns   map[string]*regexp.Regexp
}

var loadDefault = sync.OnceValues(func() (*Vocabulary, error) {
	return Load(defaultDocument)
})

// Default returns the embedded vocabulary. It is parsed and validated once
// per process.
func Default() (*Vocabulary, error) {
	return loadDefault()
}

// MustDefault is like Default but panics if the embedded vocabulary is invalid.
func MustDefault() *Vocabulary {
	v, err := Default()
	if err != nil {
		panic(err)
	}
	return v
}

// LoadFile reads a vocabulary override from disk.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Load(data)
}

// Load decodes a YAML vocabulary document and validates it against the
// vocabulary schema.
func Load(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary: %w", err)
	}
	if err := validate(&v); err != nil {
		return nil, err
	}
	v.index()
	return &v, nil
}

func validate(v *Vocabulary) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile vocabulary schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Vocabulary"))
	val := ctx.Encode(v)
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid vocabulary: %w", err)
	}
	return nil
}

func (v *Vocabulary) index() {
	v.normalized = make(map[string][]string, len(v.Headings))
	v.known = make(map[string]struct{})
	for family, variants := range v.Headings {
		out := make([]string, 0, len(variants))
		for _, h := range variants {
			n := NormalizeHeading(h)
			if n == "" {
				continue
			}
			out = append(out, n)
			v.known[n] = struct{}{}
		}
		v.normalized[family] = out
	}

	v.patterns = make(map[string]*regexp.Regexp)
	compile := func(expr string) { v.patterns[expr] = regexp.MustCompile(expr) }
	for _, c := range append(slices.Clone(v.IP.TypeCues), v.IP.LicenseScopeCues...) {
		compile(wordCueExpr(c))
	}
	for _, l := range v.Parties.RoleLabels {
		compile(stemCueExpr(l))
		compile(rolePhraseExpr(l))
	}
}

func wordCueExpr(cue string) string {
	return `(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(cue)) + `s?\b`
}

func stemCueExpr(cue string) string {
	return `(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(cue))
}

func rolePhraseExpr(label string) string {
	return `(?i)\b(?:the\s+)?` + regexp.QuoteMeta(strings.TrimSpace(label)) + `[A-Za-z()]*`
}

func (v *Vocabulary) pattern(expr string) *regexp.Regexp {
	if re, ok := v.patterns[expr]; ok {
		return re
	}
	return regexp.MustCompile(expr)
}

// WordCue matches cue as a whole word, plural included.
func (v *Vocabulary) WordCue(cue string) *regexp.Regexp {
	return v.pattern(wordCueExpr(cue))
}

// StemCue matches cue at the start of a word, so "assign" also finds
// "assigned".
func (v *Vocabulary) StemCue(cue string) *regexp.Regexp {
	return v.pattern(stemCueExpr(cue))
}

// RolePhrase matches a role label with an optional leading "the" and any
// letters or parentheses that follow it ("the Consultant(s)").
func (v *Vocabulary) RolePhrase(label string) *regexp.Regexp {
	return v.pattern(rolePhraseExpr(label))
}

// HeadingVariants returns the normalized heading variants of a family.
func (v *Vocabulary) HeadingVariants(family string) []string {
	return v.normalized[family]
}

// IsKnownHeading reports whether text, once normalized, exactly equals a
// heading variant of any family.
func (v *Vocabulary) IsKnownHeading(text string) bool {
	_, ok := v.known[NormalizeHeading(text)]
	return ok
}

// HeadingMatches reports whether a heading (or role hint) belongs to family:
// either an exact variant or a heading containing one.
func (v *Vocabulary) HeadingMatches(heading, family string) bool {
	h := NormalizeHeading(heading)
	if h == "" {
		return false
	}
	for _, k := range v.normalized[family] {
		if h == k || strings.Contains(h, k) {
			return true
		}
	}
	return false
}

// FamilyForField returns the heading family that is the canonical home of a
// schema field, ignoring any numeric suffix.
func (v *Vocabulary) FamilyForField(field string) string {
	base, _ := SplitFieldSuffix(field)
	if f, ok := v.FieldFamilies[base]; ok {
		return f
	}
	// a field named after its own family (scope, governingLaw)
	if _, ok := v.normalized[base]; ok {
		return base
	}
	return ""
}

// IsPreferredHeading reports whether roleHint is a canonical heading for
// schemaField. A proposal found under its preferred heading wins merges.
func (v *Vocabulary) IsPreferredHeading(schemaField, roleHint string) bool {
	family := v.FamilyForField(schemaField)
	if family == "" || roleHint == "" {
		return false
	}
	return v.HeadingMatches(roleHint, family)
}

// IsRoleLabel reports whether s is one of the party role labels.
func (v *Vocabulary) IsRoleLabel(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range v.Parties.RoleLabels {
		if s == l {
			return true
		}
	}
	return false
}

// Label returns the display label of a schema field.
func (v *Vocabulary) Label(field string) (string, bool) {
	l, ok := v.Labels[field]
	return l, ok
}

var (
	nbsp          = regexp.MustCompile("\u00a0")
	spaceRun      = regexp.MustCompile(`\s+`)
	trailingPunct = regexp.MustCompile(`[\s:\-–—.;,]+$`)
	leadingNumber = regexp.MustCompile(`(?i)^(?:(?:section|article)\s+)?(?:\d+(?:\.\d+)*\.?|[ivxlc]+[.)])\s+`)
	fieldSuffix   = regexp.MustCompile(`^(.*?)(\d+)$`)
)

// NormalizeHeading lower-cases a heading, collapses whitespace and strips
// trailing punctuation and leading section numbering.
func NormalizeHeading(s string) string {
	s = nbsp.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	s = trailingPunct.ReplaceAllString(s, "")
	s = leadingNumber.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitFieldSuffix splits a numbered schema field ("inventor2") into its base
// name and suffix ("inventor", "2").
func SplitFieldSuffix(field string) (string, string) {
	if m := fieldSuffix.FindStringSubmatch(field); m != nil && m[1] != "" {
		return m[1], m[2]
	}
	return field, ""
}
