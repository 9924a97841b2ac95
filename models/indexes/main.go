package indexes

/*
	Canonical output shapes of the variant search layer. Raw
	search-engine hit documents (flattened or nested topology) are
	reshaped into these records by the result normalizer; no
	engine-specific types leak past this package.
*/

// Genotype is one individual's call for a variant. NumAlt carries the
// sentinel -1 for "not genotyped / missing" (never a default of 0).
type Genotype struct {
	NumAlt  int      `json:"num_alt"`
	Alleles []string `json:"alleles"`
	Ab      *float64 `json:"ab"`
	Gq      *float64 `json:"gq"`
	Filter  string   `json:"filter"`

	Extras GenotypeExtras `json:"extras"`
}

type GenotypeExtras struct {
	Ad *string  `json:"ad"`
	Dp *float64 `json:"dp"`
}

// TranscriptConsequence is one VEP transcript-consequence annotation,
// pre-sorted by severity by the indexing pipeline.
type TranscriptConsequence struct {
	GeneId           string   `json:"gene_id" mapstructure:"gene_id"`
	GeneSymbol       string   `json:"gene_symbol" mapstructure:"gene_symbol"`
	TranscriptId     string   `json:"transcript_id" mapstructure:"transcript_id"`
	MajorConsequence string   `json:"major_consequence" mapstructure:"major_consequence"`
	ConsequenceTerms []string `json:"consequence_terms" mapstructure:"consequence_terms"`
	Hgvsc            string   `json:"hgvsc" mapstructure:"hgvsc"`
	Hgvsp            string   `json:"hgvsp" mapstructure:"hgvsp"`
}

type Annotation struct {
	VepAnnotation        []TranscriptConsequence `json:"vep_annotation"`
	VepGroup             string                  `json:"vep_group"`
	VepConsequence       string                  `json:"vep_consequence"`
	AnnotationTags       []string                `json:"annotation_tags"`
	CodingGeneIds        []string                `json:"coding_gene_ids"`
	GeneIds              []string                `json:"gene_ids"`
	WorstVepIndex        int                     `json:"worst_vep_annotation_index"`
	WorstVepIndexPerGene map[string]*int         `json:"worst_vep_index_per_gene"`

	Freqs     map[string]*float64 `json:"freqs"`
	PopCounts map[string]*int     `json:"pop_counts"`
}

// GeneSummary is display metadata for a gene id, used only to decorate
// search output.
type GeneSummary struct {
	GeneId  string `json:"gene_id" mapstructure:"gene_id"`
	Symbol  string `json:"symbol" mapstructure:"symbol"`
	Name    string `json:"name" mapstructure:"name"`
	Chrom   string `json:"chrom" mapstructure:"chrom"`
	Start   int64  `json:"start" mapstructure:"start"`
	Stop    int64  `json:"stop" mapstructure:"stop"`
	GeneSet string `json:"gene_set" mapstructure:"gene_set"`
}

// Extras carries annotation passthrough that is not part of the variant's
// unique identity. Privileged-only fields (hgmd) are nil for non-staff
// requests rather than hidden client-side.
type Extras struct {
	ClinvarVariantId string `json:"clinvar_variant_id,omitempty"`
	ClinvarAlleleId  string `json:"clinvar_allele_id,omitempty"`
	ClinvarClinsig   string `json:"clinvar_clinsig,omitempty"`
	ClinvarGoldStars *int   `json:"clinvar_gold_stars,omitempty"`

	HgmdClass     *string `json:"hgmd_class,omitempty"`
	HgmdAccession *string `json:"hgmd_accession,omitempty"`

	GenomeVersion string  `json:"genome_version"`
	Grch37Coords  *string `json:"grch37_coords"`
	Grch38Coords  *string `json:"grch38_coords"`

	OrigAltAlleles []string `json:"orig_alt_alleles,omitempty"`

	SvType *string  `json:"svtype,omitempty"`
	SvLen  *float64 `json:"svlen,omitempty"`

	ProjectId string `json:"project_id"`
	FamilyId  string `json:"family_id,omitempty"`

	GeneNames map[string]string      `json:"gene_names"`
	Genes     map[string]GeneSummary `json:"genes"`
}

// Variant is the canonical variant record. Unique key: (XPos, Ref, Alt);
// XPos is stable across identical variants regardless of which index
// topology produced the hit.
type Variant struct {
	VariantId string `json:"variant_id"`
	Chrom     string `json:"chr"`
	Pos       int64  `json:"pos"`
	PosEnd    int64  `json:"pos_end"`
	XPos      int64  `json:"xpos"`
	Ref       string `json:"ref"`
	Alt       string `json:"alt"`
	VarType   string `json:"vartype"`

	GeneIds       []string `json:"gene_ids"`
	CodingGeneIds []string `json:"coding_gene_ids"`

	Genotypes map[string]Genotype `json:"genotypes"`

	Annotation Annotation          `json:"annotation"`
	Freqs      map[string]*float64 `json:"db_freqs"`
	PopCounts  map[string]*int     `json:"pop_counts"`

	Extras Extras `json:"extras"`
}
