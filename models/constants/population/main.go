package population

/*
	Population-slug to physical-field-name tables.

	A population can map to more than one underlying field across index
	schema versions; a frequency ceiling passes when any of the mapped
	fields satisfies the comparison (or when the field is absent from
	the index entirely).

	Kept as data rather than branching code so that new schema versions
	are additive.
*/

// FrequencyFields maps a reference-population slug to the allele-frequency
// field name(s) used by the variant indices.
var FrequencyFields = map[string][]string{
	"AF":             {"AF"},
	"1kg_wgs_phase3": {"g1k_POPMAX_AF"},
	"exac_v3":        {"exac_AF_POPMAX"},
	"topmed":         {"topmed_AF"},
	"gnomad_exomes":  {"gnomad_exomes_AF_POPMAX", "gnomad_exomes_AF_POPMAX_OR_GLOBAL"},
	"gnomad_genomes": {"gnomad_genomes_AF_POPMAX", "gnomad_genomes_AF_POPMAX_OR_GLOBAL"},
	"gnomad-exomes2": {"gnomad_exomes_AF_POPMAX", "gnomad_exomes_AF_POPMAX_OR_GLOBAL"},
	"gnomad-genomes2": {
		"gnomad_genomes_AF_POPMAX", "gnomad_genomes_AF_POPMAX_OR_GLOBAL",
	},
}

// AlleleCountFields maps a population slug to its allele-count field.
var AlleleCountFields = map[string][]string{
	"AF":              {"AC"},
	"1kg_wgs_phase3":  {"g1k_AC"},
	"exac_v3":         {"exac_AC"},
	"topmed":          {"topmed_AC"},
	"gnomad_exomes":   {"gnomad_exomes_AC"},
	"gnomad_genomes":  {"gnomad_genomes_AC"},
	"gnomad-exomes2":  {"gnomad_exomes_AC"},
	"gnomad-genomes2": {"gnomad_genomes_AC"},
}

// HemiCountFields maps a population slug to its hemizygote-count field.
var HemiCountFields = map[string][]string{
	"exac_v3":         {"exac_AC_Hemi"},
	"gnomad_exomes":   {"gnomad_exomes_Hemi"},
	"gnomad_genomes":  {"gnomad_genomes_Hemi"},
	"gnomad-exomes2":  {"gnomad_exomes_Hemi"},
	"gnomad-genomes2": {"gnomad_genomes_Hemi"},
}

// HomCountFields maps a population slug to its homozygote-count field.
var HomCountFields = map[string][]string{
	"exac_v3":         {"exac_AC_Hom"},
	"gnomad_exomes":   {"gnomad_exomes_Hom"},
	"gnomad_genomes":  {"gnomad_genomes_Hom"},
	"gnomad-exomes2":  {"gnomad_exomes_Hom"},
	"gnomad-genomes2": {"gnomad_genomes_Hom"},
}
