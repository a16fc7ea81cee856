// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

// Input types offered to the review form.
const (
	InputText     = "text"
	InputTextarea = "textarea"
	InputDate     = "date"
	InputCurrency = "currency"
	InputSelect   = "select"
)

const longTextThreshold = 80

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	currencyText = regexp.MustCompile(`^\$?\d{1,3}(,\d{3})*(\.\d{2})?$`)
)

// FieldDescriptor describes a placeholderized field for the review form.
type FieldDescriptor struct {
	Field           string   `json:"field" yaml:"field"`
	Label           string   `json:"label" yaml:"label"`
	InputType       string   `json:"inputType" yaml:"inputType"`
	Options         []string `json:"options,omitempty" yaml:"options,omitempty"`
	FullValue       string   `json:"fullValue,omitempty" yaml:"fullValue,omitempty"`
	Placeholder     string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	RawValue        string   `json:"rawValue" yaml:"rawValue"`
	NormalizedValue string   `json:"normalizedValue,omitempty" yaml:"normalizedValue,omitempty"`
}

// Describe builds the form descriptor of a proposal. Ambiguous proposals get
// an empty label and a plain text input.
func Describe(v *vocab.Vocabulary, p extraction.Proposal) FieldDescriptor {
	d := FieldDescriptor{
		Field:           p.SchemaField,
		InputType:       InputText,
		Placeholder:     p.Placeholder,
		RawValue:        p.RawValue,
		NormalizedValue: p.NormalizedValue,
	}
	if p.Ambiguous() {
		return d
	}
	d.Label = fieldLabel(v, p.SchemaField)

	value := p.NormalizedValue
	if value == "" {
		value = p.RawValue
	}
	base, _ := vocab.SplitFieldSuffix(p.SchemaField)
	lower := strings.ToLower(base)
	options := v.EnumOptions[base]

	switch {
	case isoDate.MatchString(value):
		d.InputType = InputDate
	case currencyText.MatchString(value) || strings.Contains(lower, "amount") || (strings.Contains(lower, "fee") && len(options) == 0):
		d.InputType = InputCurrency
	case p.IsExpandable:
		d.InputType = InputTextarea
		d.FullValue = p.SourceText
	case len(options) > 0:
		d.InputType = InputSelect
		d.Options = append([]string(nil), options...)
	case len([]rune(value)) > longTextThreshold:
		d.InputType = InputTextarea
	}
	return d
}

// fieldLabel prefers the vocabulary label and otherwise splits the camelCase
// field name: inventor2 becomes "Inventor #2".
func fieldLabel(v *vocab.Vocabulary, field string) string {
	base, suffix := vocab.SplitFieldSuffix(field)
	label, ok := v.Label(base)
	if !ok {
		label = upperFirst(splitCamel(base))
	}
	if suffix != "" {
		label += " #" + suffix
	}
	return label
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
