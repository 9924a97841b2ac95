package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

// Offset between chromosomes in the xpos encoding: each chromosome owns a
// block of 1e9 positions, which comfortably exceeds the longest human
// chromosome (~2.5e8 bases).
const XPosChromosomeBlock int64 = 1e9

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 23; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "M")
	return humChroms
}

func IsValidHumanChromosome(text string) bool {
	_, err := Ordinal(text)
	return err == nil
}

// Ordinal maps a chromosome name onto its sort position:
// 1-22 as-is, X=23, Y=24, M/MT=25. A leading "chr" prefix is tolerated.
func Ordinal(chrom string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(chrom, "chr"), "CHR")

	if chromNumber, convErr := strconv.Atoi(trimmed); convErr == nil {
		if chromNumber >= 1 && chromNumber <= 22 {
			return chromNumber, nil
		}
		return 0, fmt.Errorf("chromosome number out of range: %s", chrom)
	}

	switch strings.ToUpper(trimmed) {
	case "X":
		return 23, nil
	case "Y":
		return 24, nil
	case "M", "MT":
		return 25, nil
	}

	return 0, fmt.Errorf("unrecognized chromosome: %s", chrom)
}

func nameFromOrdinal(ordinal int) string {
	switch {
	case ordinal >= 1 && ordinal <= 22:
		return fmt.Sprint(ordinal)
	case ordinal == 23:
		return "X"
	case ordinal == 24:
		return "Y"
	case ordinal == 25:
		return "M"
	}
	return ""
}

// GetXPos encodes (chromosome, 1-based position) into a single integer that
// preserves chromosome order and within-chromosome numeric order.
func GetXPos(chrom string, pos int64) (int64, error) {
	ordinal, err := Ordinal(chrom)
	if err != nil {
		return 0, err
	}
	if pos <= 0 {
		return 0, fmt.Errorf("position must be 1-based and positive, got %d", pos)
	}
	return int64(ordinal)*XPosChromosomeBlock + pos, nil
}

// GetChrPos decodes an xpos back into (chromosome name, 1-based position).
func GetChrPos(xpos int64) (string, int64, error) {
	ordinal := int(xpos / XPosChromosomeBlock)
	pos := xpos % XPosChromosomeBlock

	name := nameFromOrdinal(ordinal)
	if name == "" || pos == 0 {
		return "", 0, fmt.Errorf("invalid xpos: %d", xpos)
	}
	return name, pos, nil
}

// ParseRegion converts a "chrom:start-end" string into the pair of xpos
// values bounding the region (closed interval).
func ParseRegion(region string) (int64, int64, error) {
	chromAndRange := strings.SplitN(region, ":", 2)
	if len(chromAndRange) != 2 {
		return 0, 0, fmt.Errorf("malformed region %q, expected chrom:start-end", region)
	}

	bounds := strings.SplitN(chromAndRange[1], "-", 2)
	if len(bounds) != 2 {
		return 0, 0, fmt.Errorf("malformed region %q, expected chrom:start-end", region)
	}

	start, startErr := strconv.ParseInt(bounds[0], 10, 64)
	end, endErr := strconv.ParseInt(bounds[1], 10, 64)
	if startErr != nil || endErr != nil {
		return 0, 0, fmt.Errorf("malformed region bounds in %q", region)
	}
	if end < start {
		return 0, 0, fmt.Errorf("region end precedes start in %q", region)
	}

	xstart, err := GetXPos(chromAndRange[0], start)
	if err != nil {
		return 0, 0, err
	}
	xend, err := GetXPos(chromAndRange[0], end)
	if err != nil {
		return 0, 0, err
	}
	return xstart, xend, nil
}
