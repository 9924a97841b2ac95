package utils

import (
	"fmt"
	"strings"
)

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

func GetLeadingStringInBetweenSquareBrackets(str string) (bracketString string, theRestString string) {
	var (
		start = "["
		end   = "]"
	)
	s := strings.Index(str, start)
	if s == -1 {
		return
	}

	// Assume that if the open bracket is not at index 0,
	// it's an open bracket for an array of some sort within the string rather
	// than a marker for a prepended status code (i.e. elasticsearch)
	if s != 0 {
		return
	}

	e := strings.Index(str[s:], end)
	if e == -1 {
		return
	}

	return strings.Trim(str[s:e+1], " "), strings.Trim(str[e+1:], " ")
}

// EncodeSampleId transforms a sample identifier into a safe field-name
// token for flattened documents, where per-sample fields are named
// "<encoded-id>_<field>". Any character outside [A-Za-z0-9_] is replaced
// with its hex code between underscores; the indexing pipeline applies the
// same transformation, so the scheme is a deployment contract.
func EncodeSampleId(sampleId string) string {
	var builder strings.Builder
	for _, r := range sampleId {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		} else {
			builder.WriteString(fmt.Sprintf("_%x_", r))
		}
	}
	return builder.String()
}

// SampleFieldName builds the encoded per-sample field name, e.g.
// ("NA12878", "num_alt") -> "NA12878_num_alt".
func SampleFieldName(sampleId string, field string) string {
	return EncodeSampleId(sampleId) + "_" + field
}
