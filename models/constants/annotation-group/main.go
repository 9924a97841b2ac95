package annotationGroup

import "fmt"

/*
	Synthetic, UI-facing filter categories that expand to sets of
	field-level match terms rather than raw VEP consequence terms.

	The "clinvar" group expands onto the clinvar_clinical_significance
	field, the "hgmd" group onto hgmd_class. The hgmd group only exists
	in the internal (staff) taxonomy.
*/

var publicGroupChildren = map[string][]string{
	"clinvar": {
		"pathogenic",
		"likely_pathogenic",
		"vus_or_conflicting",
		"likely_benign",
		"benign",
	},
}

var internalGroupChildren = map[string][]string{
	"clinvar": publicGroupChildren["clinvar"],
	"hgmd": {
		"disease_causing",
		"likely_disease_causing",
		"hgmd_other",
	},
}

// GroupChildren returns the group-name -> member-terms taxonomy for the
// requesting user class.
func GroupChildren(isStaff bool) map[string][]string {
	if isStaff {
		return internalGroupChildren
	}
	return publicGroupChildren
}

// ClinvarSignificanceTerms expands one clinvar group term into the matching
// clinical-significance strings stored on variant documents.
func ClinvarSignificanceTerms(term string) ([]string, error) {
	switch term {
	case "pathogenic":
		return []string{"Pathogenic", "Pathogenic/Likely_pathogenic"}, nil
	case "likely_pathogenic":
		return []string{"Likely_pathogenic", "Pathogenic/Likely_pathogenic"}, nil
	case "benign":
		return []string{"Benign", "Benign/Likely_benign"}, nil
	case "likely_benign":
		return []string{"Likely_benign", "Benign/Likely_benign"}, nil
	case "vus_or_conflicting":
		return []string{
			"Conflicting_interpretations_of_pathogenicity",
			"Uncertain_significance",
			"not_provided",
			"other",
		}, nil
	default:
		return nil, fmt.Errorf("unexpected clinvar filter: %s", term)
	}
}

// HgmdClassCodes expands one hgmd group term into the matching hgmd_class
// codes stored on variant documents.
func HgmdClassCodes(term string) ([]string, error) {
	switch term {
	case "disease_causing":
		return []string{"DM"}, nil
	case "likely_disease_causing":
		return []string{"DM?"}, nil
	case "hgmd_other":
		return []string{"DP", "DFP", "FP", "FTV"}, nil
	default:
		return nil, fmt.Errorf("unexpected hgmd filter: %s", term)
	}
}
