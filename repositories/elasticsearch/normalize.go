package elasticsearch

import (
	"encoding/json"
	"fmt"
	"strings"

	"varsearch/api/models/constants"
	genomeBuild "varsearch/api/models/constants/genome-build"
	"varsearch/api/models/constants/population"
	"varsearch/api/models/indexes"
	"varsearch/api/services/liftover"
	"varsearch/api/services/registry"

	"github.com/mitchellh/mapstructure"
)

// GeneSummaryProvider supplies display metadata for gene ids found on
// normalized variants. Lookups are decoration only; a failing provider
// never fails a search.
type GeneSummaryProvider interface {
	GetGeneSummaries(geneIds []string) (map[string]indexes.GeneSummary, error)
}

// NormalizeSearchHits reshapes raw hit documents into canonical variant
// records, in engine order.
func NormalizeSearchHits(hits []map[string]interface{}, scope *SearchScope,
	project *registry.Project, familyId string, isStaff bool,
	lift liftover.Liftover, genes GeneSummaryProvider) ([]*indexes.Variant, error) {

	strategy := scope.strategy()

	variants := make([]*indexes.Variant, 0, len(hits))
	for _, hit := range hits {
		variant, err := normalizeHit(hit, scope, strategy, project, familyId, isStaff, lift)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}

	decorateGeneSummaries(variants, genes)

	return variants, nil
}

func normalizeHit(hit map[string]interface{}, scope *SearchScope, strategy QueryStrategy,
	project *registry.Project, familyId string, isStaff bool,
	lift liftover.Liftover) (*indexes.Variant, error) {

	source, ok := hit["_source"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("search hit carries no _source document")
	}

	variant := &indexes.Variant{
		VariantId: stringField(source, "variantId"),
		Chrom:     strings.TrimPrefix(stringField(source, "contig"), "chr"),
		Pos:       intField(source, "start"),
		PosEnd:    intField(source, "end"),
		XPos:      intField(source, "xpos"),
		Ref:       stringField(source, "ref"),
		Alt:       stringField(source, "alt"),
		Genotypes: map[string]indexes.Genotype{},
	}
	if len(variant.Ref) == len(variant.Alt) {
		variant.VarType = "snp"
	} else {
		variant.VarType = "indel"
	}

	// variant-level filter status applies to every genotype of the hit
	filterStatus := "pass"
	if rawFilters, present := source["filters"]; present {
		if filterList, ok := rawFilters.([]interface{}); ok && len(filterList) > 0 {
			names := make([]string, 0, len(filterList))
			for _, name := range filterList {
				names = append(names, fmt.Sprintf("%v", name))
			}
			filterStatus = strings.Join(names, ",")
		}
	}

	for _, pair := range scope.Pairs {
		genotype, err := normalizeGenotype(strategy.SampleFields(hit, pair.SampleId), variant, filterStatus)
		if err != nil {
			return nil, fmt.Errorf("individual %s of variant %s: %s", pair.IndividualId, variant.VariantId, err)
		}
		variant.Genotypes[pair.IndividualId] = genotype
	}

	vepAnnotation, err := decodeTranscriptConsequences(source)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %s", variant.VariantId, err)
	}

	variant.GeneIds = stringSliceField(source, "geneIds")
	variant.CodingGeneIds = stringSliceField(source, "codingGeneIds")

	variant.Annotation = indexes.Annotation{
		VepAnnotation:        vepAnnotation,
		VepGroup:             stringField(source, "mainTranscript_major_consequence"),
		VepConsequence:       stringField(source, "mainTranscript_major_consequence"),
		AnnotationTags:       stringSliceField(source, "transcriptConsequenceTerms"),
		CodingGeneIds:        variant.CodingGeneIds,
		GeneIds:              variant.GeneIds,
		WorstVepIndex:        0,
		WorstVepIndexPerGene: worstVepIndexPerGene(variant.GeneIds, vepAnnotation),
	}

	variant.Freqs = normalizeFreqs(source, scope)
	variant.PopCounts = normalizePopCounts(source, scope)
	variant.Annotation.Freqs = variant.Freqs
	variant.Annotation.PopCounts = variant.PopCounts

	variant.Extras = normalizeExtras(source, variant, vepAnnotation, project, familyId, isStaff, lift)

	return variant, nil
}

// normalizeGenotype maps one sample's fields into a genotype record. An
// individual absent from the hit gets the -1 "not genotyped" sentinel, as
// does a stored num_alt of -1.
func normalizeGenotype(fields map[string]interface{}, variant *indexes.Variant,
	filterStatus string) (indexes.Genotype, error) {

	genotype := indexes.Genotype{NumAlt: -1, Filter: filterStatus}
	if fields == nil {
		return genotype, nil
	}

	if rawNumAlt, present := fields["num_alt"]; present && rawNumAlt != nil {
		numAlt, ok := asInt(rawNumAlt)
		if !ok {
			return genotype, fmt.Errorf("unparseable num_alt value: %v", rawNumAlt)
		}
		genotype.NumAlt = numAlt
	}

	switch genotype.NumAlt {
	case 0:
		genotype.Alleles = []string{variant.Ref, variant.Ref}
	case 1:
		genotype.Alleles = []string{variant.Ref, variant.Alt}
	case 2:
		genotype.Alleles = []string{variant.Alt, variant.Alt}
	case -1:
		genotype.Alleles = []string{}
	default:
		return genotype, fmt.Errorf("unexpected num_alt value: %d", genotype.NumAlt)
	}

	genotype.Ab = floatPtrField(fields, "ab")
	genotype.Gq = floatPtrField(fields, "gq")
	genotype.Extras.Dp = floatPtrField(fields, "dp")
	if ad, present := fields["ad"]; present && ad != nil {
		adText := fmt.Sprintf("%v", ad)
		genotype.Extras.Ad = &adText
	}

	return genotype, nil
}

// decodeTranscriptConsequences handles both storage shapes of
// sortedTranscriptConsequences: a JSON string (flattened indices) and a
// document array (nested indices).
func decodeTranscriptConsequences(source map[string]interface{}) ([]indexes.TranscriptConsequence, error) {
	raw, present := source["sortedTranscriptConsequences"]
	if !present || raw == nil {
		return nil, nil
	}

	var consequences []indexes.TranscriptConsequence
	switch value := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(value), &consequences); err != nil {
			return nil, fmt.Errorf("unparseable sortedTranscriptConsequences: %s", err)
		}
	case []interface{}:
		if err := mapstructure.Decode(value, &consequences); err != nil {
			return nil, fmt.Errorf("undecodable sortedTranscriptConsequences: %s", err)
		}
	default:
		return nil, fmt.Errorf("unexpected sortedTranscriptConsequences shape: %T", raw)
	}
	return consequences, nil
}

// worstVepIndexPerGene records, per hit-level gene, the index of its most
// severe consequence entry. Entries arrive pre-sorted worst first, so the
// first occurrence wins; a gene with no matching entry maps to nil.
func worstVepIndexPerGene(geneIds []string, consequences []indexes.TranscriptConsequence) map[string]*int {
	worst := map[string]*int{}
	for _, geneId := range geneIds {
		worst[geneId] = nil
		for i, consequence := range consequences {
			if consequence.GeneId == geneId {
				index := i
				worst[geneId] = &index
				break
			}
		}
	}
	return worst
}

// normalizeFreqs distinguishes "population not in this index" (nil) from
// "field absent on this hit" (0.0), using the resolved index field set.
func normalizeFreqs(source map[string]interface{}, scope *SearchScope) map[string]*float64 {
	freqs := map[string]*float64{}
	for slug, fields := range population.FrequencyFields {
		freqs[slug] = nil
		for _, field := range fields {
			if !scope.IndexFields[field] {
				continue
			}
			value := 0.0
			if raw, present := source[field]; present && raw != nil {
				if parsed, ok := asFloat(raw); ok {
					value = parsed
				}
			}
			freqs[slug] = &value
			break
		}
	}
	return freqs
}

func normalizePopCounts(source map[string]interface{}, scope *SearchScope) map[string]*int {
	counts := map[string]*int{}
	mergePopCounts(counts, source, scope, population.AlleleCountFields, "AC")
	mergePopCounts(counts, source, scope, population.HomCountFields, "Hom")
	mergePopCounts(counts, source, scope, population.HemiCountFields, "Hemi")
	return counts
}

func mergePopCounts(counts map[string]*int, source map[string]interface{}, scope *SearchScope,
	table map[string][]string, kind string) {

	for slug, fields := range table {
		key := slug + "_" + kind
		counts[key] = nil
		for _, field := range fields {
			if !scope.IndexFields[field] {
				continue
			}
			value := 0
			if raw, present := source[field]; present && raw != nil {
				if parsed, ok := asInt(raw); ok {
					value = parsed
				}
			}
			counts[key] = &value
			break
		}
	}
}

func normalizeExtras(source map[string]interface{}, variant *indexes.Variant,
	vepAnnotation []indexes.TranscriptConsequence,
	project *registry.Project, familyId string, isStaff bool,
	lift liftover.Liftover) indexes.Extras {

	extras := indexes.Extras{
		ClinvarVariantId: stringField(source, "clinvar_variation_id"),
		ClinvarAlleleId:  stringField(source, "clinvar_allele_id"),
		ClinvarClinsig:   stringField(source, "clinvar_clinical_significance"),
		GenomeVersion:    string(project.GenomeVersion),
		ProjectId:        project.ProjectId,
		FamilyId:         familyId,
		GeneNames:        map[string]string{},
	}

	if goldStars, present := source["clinvar_gold_stars"]; present && goldStars != nil {
		if parsed, ok := asInt(goldStars); ok {
			extras.ClinvarGoldStars = &parsed
		}
	}

	// privileged annotations stay server-side for non-staff requests
	if isStaff {
		extras.HgmdClass = stringPtrField(source, "hgmd_class")
		extras.HgmdAccession = stringPtrField(source, "hgmd_accession")
	}

	if origAltAlleles := stringSliceField(source, "originalAltAlleles"); len(origAltAlleles) > 0 {
		for _, encoded := range origAltAlleles {
			pieces := strings.Split(encoded, "-")
			extras.OrigAltAlleles = append(extras.OrigAltAlleles, pieces[len(pieces)-1])
		}
	}

	extras.SvType = stringPtrField(source, "svType")
	if svLen, present := source["svLen"]; present && svLen != nil {
		if parsed, ok := asFloat(svLen); ok {
			extras.SvLen = &parsed
		}
	}

	for _, consequence := range vepAnnotation {
		if consequence.GeneId != "" && consequence.GeneSymbol != "" {
			if _, seen := extras.GeneNames[consequence.GeneId]; !seen {
				extras.GeneNames[consequence.GeneId] = consequence.GeneSymbol
			}
		}
	}

	extras.Grch37Coords, extras.Grch38Coords = buildCoords(variant, project.GenomeVersion, lift)

	return extras
}

// buildCoords reports the variant's identity in both reference builds: the
// native build verbatim, the other through liftover or nil when no mapping
// exists.
func buildCoords(variant *indexes.Variant, build constants.GenomeBuild,
	lift liftover.Liftover) (*string, *string) {

	native := variant.VariantId
	if native == "" {
		native = fmt.Sprintf("%s-%d-%s-%s", variant.Chrom, variant.Pos, variant.Ref, variant.Alt)
	}

	var lifted *string
	if lift != nil {
		var (
			chrom string
			pos   int64
			ok    bool
		)
		if build == genomeBuild.GRCh37 {
			chrom, pos, ok = lift.ToGrch38(variant.Chrom, variant.Pos)
		} else {
			chrom, pos, ok = lift.ToGrch37(variant.Chrom, variant.Pos)
		}
		if ok {
			coords := fmt.Sprintf("%s-%d-%s-%s", chrom, pos, variant.Ref, variant.Alt)
			lifted = &coords
		}
	}

	if build == genomeBuild.GRCh37 {
		return &native, lifted
	}
	return lifted, &native
}

func decorateGeneSummaries(variants []*indexes.Variant, genes GeneSummaryProvider) {
	if genes == nil {
		return
	}

	geneIdSet := map[string]bool{}
	for _, variant := range variants {
		for _, geneId := range variant.GeneIds {
			geneIdSet[geneId] = true
		}
	}
	if len(geneIdSet) == 0 {
		return
	}

	geneIds := make([]string, 0, len(geneIdSet))
	for geneId := range geneIdSet {
		geneIds = append(geneIds, geneId)
	}

	summaries, err := genes.GetGeneSummaries(geneIds)
	if err != nil {
		fmt.Printf("Warning: gene summary lookup failed, returning undecorated variants: %s\n", err)
		return
	}

	for _, variant := range variants {
		variant.Extras.Genes = map[string]indexes.GeneSummary{}
		for _, geneId := range variant.GeneIds {
			if summary, found := summaries[geneId]; found {
				variant.Extras.Genes[geneId] = summary
			}
		}
	}
}

// -- loosely-typed field access ---------------------------------------------

func stringField(source map[string]interface{}, field string) string {
	if value, ok := source[field].(string); ok {
		return value
	}
	return ""
}

func stringPtrField(source map[string]interface{}, field string) *string {
	if value, ok := source[field].(string); ok && value != "" {
		return &value
	}
	return nil
}

func stringSliceField(source map[string]interface{}, field string) []string {
	raw, ok := source[field].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			values = append(values, value)
		}
	}
	return values
}

func intField(source map[string]interface{}, field string) int64 {
	if value, ok := asFloat(source[field]); ok {
		return int64(value)
	}
	return 0
}

func floatPtrField(fields map[string]interface{}, field string) *float64 {
	if value, ok := asFloat(fields[field]); ok {
		return &value
	}
	return nil
}

func asFloat(raw interface{}) (float64, bool) {
	switch value := raw.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		parsed, err := value.Float64()
		return parsed, err == nil
	}
	return 0, false
}

func asInt(raw interface{}) (int, bool) {
	value, ok := asFloat(raw)
	return int(value), ok
}
