package liftover

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"varsearch/api/models"
)

/*
	Bidirectional GRCh37 <-> GRCh38 coordinate translation built on UCSC
	chain files.

	One converter per direction, constructed lazily on first use; a
	construction failure (typically no network access to fetch the chain)
	is caught and logged, and the direction stays unusable - subsequent
	requests get "no cross-build coordinate available" instead of an
	error. "No mapping" and "multiple/ambiguous mappings" also degrade
	to unavailable.
*/

type Liftover interface {
	ToGrch37(chrom string, pos int64) (string, int64, bool)
	ToGrch38(chrom string, pos int64) (string, int64, bool)
}

type chainBlock struct {
	tStart int64
	tEnd   int64

	qName   string
	qSize   int64
	qStrand byte
	qStart  int64
}

type chainConverter struct {
	// target-chromosome -> blocks sorted by tStart
	blocks map[string][]chainBlock
}

type Service struct {
	cfg *models.Config

	mu       sync.Mutex
	to38     *chainConverter
	to37     *chainConverter
	to38Down bool
	to37Down bool
}

func NewService(cfg *models.Config) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) ToGrch38(chrom string, pos int64) (string, int64, bool) {
	s.mu.Lock()
	if s.to38 == nil && !s.to38Down {
		converter, err := newConverterFromUrl(s.cfg.Liftover.Grch37To38ChainUrl)
		if err != nil {
			fmt.Printf("Warning: unable to set up GRCh37->GRCh38 liftover. Is there a working internet connection? %s\n", err)
			s.to38Down = true
		} else {
			s.to38 = converter
		}
	}
	converter := s.to38
	s.mu.Unlock()

	if converter == nil {
		return "", 0, false
	}
	return converter.convert(chrom, pos)
}

func (s *Service) ToGrch37(chrom string, pos int64) (string, int64, bool) {
	s.mu.Lock()
	if s.to37 == nil && !s.to37Down {
		converter, err := newConverterFromUrl(s.cfg.Liftover.Grch38To37ChainUrl)
		if err != nil {
			fmt.Printf("Warning: unable to set up GRCh38->GRCh37 liftover. Is there a working internet connection? %s\n", err)
			s.to37Down = true
		} else {
			s.to37 = converter
		}
	}
	converter := s.to37
	s.mu.Unlock()

	if converter == nil {
		return "", 0, false
	}
	return converter.convert(chrom, pos)
}

func newConverterFromUrl(url string) (*chainConverter, error) {
	if url == "" {
		return nil, fmt.Errorf("no chain file url configured")
	}

	response, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching chain file %s : status %d", url, response.StatusCode)
	}

	var reader io.Reader = response.Body
	if strings.HasSuffix(url, ".gz") {
		gzReader, gzErr := gzip.NewReader(response.Body)
		if gzErr != nil {
			return nil, gzErr
		}
		defer gzReader.Close()
		reader = gzReader
	}

	return NewConverterFromReader(reader)
}

// NewConverterFromReader parses UCSC chain-format data. Chain target
// strand is always '+'; query blocks on the '-' strand are flipped at
// conversion time.
func NewConverterFromReader(reader io.Reader) (*chainConverter, error) {
	converter := &chainConverter{blocks: map[string][]chainBlock{}}

	var (
		tName   string
		tCursor int64
		qName   string
		qSize   int64
		qStrand byte
		qCursor int64
		inChain bool
	)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			inChain = false
			continue
		}

		fields := strings.Fields(line)
		if fields[0] == "chain" {
			// chain score tName tSize tStrand tStart tEnd qName qSize qStrand qStart qEnd id
			if len(fields) < 12 {
				return nil, fmt.Errorf("malformed chain header: %s", line)
			}
			tName = fields[2]
			tStart, tErr := strconv.ParseInt(fields[5], 10, 64)
			qName = fields[7]
			parsedQSize, qsErr := strconv.ParseInt(fields[8], 10, 64)
			qStrand = fields[9][0]
			qStart, qErr := strconv.ParseInt(fields[10], 10, 64)
			if tErr != nil || qsErr != nil || qErr != nil {
				return nil, fmt.Errorf("malformed chain header: %s", line)
			}
			tCursor = tStart
			qSize = parsedQSize
			qCursor = qStart
			inChain = true
			continue
		}

		if !inChain {
			continue
		}

		// alignment data line: size [dt dq]
		size, sizeErr := strconv.ParseInt(fields[0], 10, 64)
		if sizeErr != nil {
			return nil, fmt.Errorf("malformed chain data line: %s", line)
		}
		if size > 0 {
			converter.blocks[tName] = append(converter.blocks[tName], chainBlock{
				tStart:  tCursor,
				tEnd:    tCursor + size,
				qName:   qName,
				qSize:   qSize,
				qStrand: qStrand,
				qStart:  qCursor,
			})
		}

		if len(fields) >= 3 {
			dt, dtErr := strconv.ParseInt(fields[1], 10, 64)
			dq, dqErr := strconv.ParseInt(fields[2], 10, 64)
			if dtErr != nil || dqErr != nil {
				return nil, fmt.Errorf("malformed chain data line: %s", line)
			}
			tCursor += size + dt
			qCursor += size + dq
		} else {
			// final block of the chain
			inChain = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for name := range converter.blocks {
		blocks := converter.blocks[name]
		sort.Slice(blocks, func(i, j int) bool { return blocks[i].tStart < blocks[j].tStart })
	}

	return converter, nil
}

// convert maps a 1-based position; chain blocks are 0-based half-open.
// Returns ok=false for unmapped positions and for positions covered by
// more than one block (ambiguous).
func (c *chainConverter) convert(chrom string, pos int64) (string, int64, bool) {
	if !strings.HasPrefix(chrom, "chr") {
		chrom = "chr" + chrom
	}
	blocks := c.blocks[chrom]
	if len(blocks) == 0 {
		return "", 0, false
	}

	target := pos - 1

	// first block ending beyond the target position
	i := sort.Search(len(blocks), func(i int) bool { return blocks[i].tEnd > target })
	if i == len(blocks) || blocks[i].tStart > target {
		return "", 0, false
	}

	// a second covering block makes the mapping ambiguous
	if i+1 < len(blocks) && blocks[i+1].tStart <= target {
		return "", 0, false
	}

	block := blocks[i]
	offset := target - block.tStart
	qPos := block.qStart + offset
	if block.qStrand == '-' {
		qPos = block.qSize - 1 - qPos
	}

	return strings.TrimPrefix(block.qName, "chr"), qPos + 1, true
}
