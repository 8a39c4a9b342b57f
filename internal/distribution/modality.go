package distribution

import (
	"strings"

	"github.com/raddispatch/distengine/internal/entity"
)

// aliasTable maps every raw token this engine has seen for a modality
// column (Cyrillic abbreviations, underscored English, bare codes) to a
// canonical tag. Tokens absent from this table pass through unchanged
// after trim/uppercase (spec §4.1 step 3).
var aliasTable = map[string]string{
	"KT":      "CT",
	"КТ":      "CT",
	"MRT":     "MRI",
	"МРТ":     "MRI",
	"RENTGEN": "XRAY",
	"РЕНТГЕН": "XRAY",
	"X_RAY":   "XRAY",
	"УЗИ":     "US",
	"ULTRASOUND": "US",
	"":        "OTHER",
	"ПРОЧЕЕ":  "OTHER",
}

// ModalityInput is the tagged variant the Snapshot Loader boundary
// produces from whatever shape the backing store handed it: a single
// string, a "/"-separated string, a list of strings, or nothing at all.
// NormalizeModality is the only place in the core that inspects it.
type ModalityInput struct {
	empty  bool
	single string
	many   []string
}

// NoModality is the null/absent modality descriptor.
func NoModality() ModalityInput {
	return ModalityInput{empty: true}
}

// SingleModality wraps a single raw string, possibly "/"-separated.
func SingleModality(raw string) ModalityInput {
	return ModalityInput{single: raw}
}

// ManyModalities wraps a pre-split sequence of raw tokens.
func ManyModalities(raw []string) ModalityInput {
	return ModalityInput{many: raw}
}

// NormalizeModality canonicalizes a ModalityInput into a set of tags
// from {CT, MRI, XRAY, US, OTHER, ...} per spec §4.1. Pure; it has no
// failure modes — every input shape, including malformed ones, resolves
// to some (possibly empty) set.
func NormalizeModality(input ModalityInput) entity.ModalitySet {
	var tokens []string

	switch {
	case input.empty:
		return entity.NewModalitySet()
	case input.many != nil:
		for _, raw := range input.many {
			tokens = append(tokens, strings.Split(raw, "/")...)
		}
	default:
		tokens = strings.Split(input.single, "/")
	}

	result := make(entity.ModalitySet, len(tokens))
	for _, tok := range tokens {
		canonical := canonicalizeToken(tok)
		if canonical == "" {
			continue
		}
		result[canonical] = struct{}{}
	}
	return result
}

func canonicalizeToken(raw string) string {
	tok := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := aliasTable[tok]; ok {
		return alias
	}
	if tok == "" {
		return ""
	}
	return tok
}
