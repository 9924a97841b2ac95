package genomeBuild

import (
	"strings"

	"varsearch/api/models/constants"
)

const (
	Unknown constants.GenomeBuild = "Unknown"

	GRCh37 constants.GenomeBuild = "GRCh37"
	GRCh38 constants.GenomeBuild = "GRCh38"
)

func CastToGenomeBuild(text string) constants.GenomeBuild {
	switch strings.ToLower(text) {
	case "grch37", "hg19":
		return GRCh37
	case "grch38", "hg38":
		return GRCh38
	default:
		return Unknown
	}
}

func IsKnownGenomeBuild(text string) bool {
	// attempt to cast to genome build and
	// return if unknown build
	return CastToGenomeBuild(text) != Unknown
}

// Other returns the opposite build, i.e. the liftover target.
func Other(build constants.GenomeBuild) constants.GenomeBuild {
	switch build {
	case GRCh37:
		return GRCh38
	case GRCh38:
		return GRCh37
	}
	return Unknown
}
