package match

import (
	"regexp"
	"sort"
	"strings"
)

// Test-name preprocessing before catalog matching: panel recognition,
// compound splitting, and abbreviation expansion. One raw name can fan out
// to several searchable terms; each keeps the original string on its result.

// abbreviations maps common pathology shorthand to the terms catalogs index.
var abbreviations = map[string]string{
	"Vit":  "Vitamin",
	"Vit.": "Vitamin",

	"FBE": "FBC", // Full Blood Examination
	"Hb":  "Haemoglobin",
	"Hgb": "Haemoglobin",
	"WCC": "WBC", // White Cell Count
	"RCC": "RBC", // Red Cell Count

	"U&E":   "UEC",
	"E/LFT": "EUC/LFT",
	"Na":    "Sodium",
	"K":     "Potassium",
	"Ca":    "Calcium",
	"Mg":    "Magnesium",

	"LFT's": "LFT",
	"LFTS":  "LFT",
	"TFT's": "TFT",
	"TFTS":  "TFT",
}

// panels expand a single panel name into its member test codes.
var panels = map[string][]string{
	"EIFT":           {"UEC", "IRON", "FERR", "TFT"},
	"CARDIAC PANEL":  {"TROP", "BNP", "CK", "CKMB"},
	"ANEMIA PANEL":   {"FBC", "IRON", "FERR", "B12", "FOL"},
	"DIABETES PANEL": {"HBA1C", "GLUCOSE", "FRUCTOSAMINE"},
	"LIPID PANEL":    {"CHOL", "TRIG", "HDL", "LDL"},
	"LIVER PANEL":    {"LFT", "GGT", "ALP"},
	"RENAL PANEL":    {"UEC", "CREAT", "EGFR"},
}

// compoundSeparators in order of precedence.
var compoundSeparators = []string{"/", " & ", " and ", "+", ","}

var abbreviationPatterns = buildAbbreviationPatterns()

type abbreviationPattern struct {
	re        *regexp.Regexp
	expansion string
}

func buildAbbreviationPatterns() []abbreviationPattern {
	// Fixed order: map iteration must not influence expansion results.
	keys := make([]string, 0, len(abbreviations))
	for abbrev := range abbreviations {
		keys = append(keys, abbrev)
	}
	sort.Strings(keys)

	out := make([]abbreviationPattern, 0, len(keys))
	for _, abbrev := range keys {
		out = append(out, abbreviationPattern{
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbrev) + `\b`),
			expansion: abbreviations[abbrev],
		})
	}
	return out
}

// preprocess turns one raw test name into one or more searchable terms.
func preprocess(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	if members, ok := panels[strings.ToUpper(name)]; ok {
		out := make([]string, len(members))
		copy(out, members)
		return out
	}

	if parts := splitCompound(name); len(parts) > 1 {
		var out []string
		for _, p := range parts {
			out = append(out, preprocess(p)...)
		}
		return out
	}

	return []string{expandAbbreviations(name)}
}

// splitCompound splits "B12/Folate" or "FBC+UEC" into individual names.
func splitCompound(name string) []string {
	for _, sep := range compoundSeparators {
		if !strings.Contains(name, sep) {
			continue
		}
		var parts []string
		for _, p := range strings.Split(name, sep) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 1 {
			return parts
		}
	}
	return []string{name}
}

// expandAbbreviations rewrites shorthand as whole words only, so "Vit D"
// expands but "Vital" does not.
func expandAbbreviations(name string) string {
	if expansion, ok := abbreviations[name]; ok {
		return expansion
	}
	out := name
	for _, p := range abbreviationPatterns {
		out = p.re.ReplaceAllString(out, p.expansion)
	}
	return out
}
