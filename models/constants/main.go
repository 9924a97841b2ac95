package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout VarSearch and it's
	associated services.
*/
type GenomeBuild string
type GenotypeMatch string
type SortDirection string
type DatasetType string
type SampleStatus string
