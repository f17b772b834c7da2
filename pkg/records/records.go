// Package records loads specimen occurrence records from files.
//
// A record is one species observation together with the team of collectors
// that made it. Batches can be read from CSV (one record per line, collectors
// joined by a separator inside one column) or from TOML, and feed both the
// bipartite and the coworking builders.
package records

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/herblab/specnet/pkg/errors"
)

// DefaultSeparator splits the collectors column of a CSV batch.
const DefaultSeparator = ";"

// Batch is a parallel set of occurrence records: record i observed
// Species[i], collected by the team Collectors[i].
type Batch struct {
	Species    []string
	Collectors [][]string
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int { return len(b.Species) }

// Validate checks that the batch is structurally sound: parallel lists of
// equal length with well-formed ids. Fails with an INVALID_RECORDS error.
func (b *Batch) Validate() error {
	return errors.ValidateRecords(b.Species, b.Collectors)
}

// Hash returns a SHA-256 content hash of the batch, stable across loads of
// the same data. Used as a cache key component by the pipeline.
func (b *Batch) Hash() string {
	data, _ := json.Marshal(struct {
		Species    []string
		Collectors [][]string
	}{b.Species, b.Collectors})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type csvConfig struct {
	separator string
	comma     rune
	header    bool
}

// CSVOption configures CSV parsing.
type CSVOption func(*csvConfig)

// WithSeparator sets the string that joins collector ids inside the
// collectors column. Defaults to [DefaultSeparator].
func WithSeparator(sep string) CSVOption {
	return func(c *csvConfig) { c.separator = sep }
}

// WithComma sets the CSV field delimiter. Defaults to ','.
func WithComma(r rune) CSVOption {
	return func(c *csvConfig) { c.comma = r }
}

// WithHeader skips the first line of the input.
func WithHeader() CSVOption {
	return func(c *csvConfig) { c.header = true }
}

// ReadCSV parses a batch from CSV. Each line holds two fields: the species
// id and the collector team, joined by the configured separator. Empty
// collector fields yield an empty team. Whitespace around ids is trimmed.
//
// Malformed CSV or empty ids fail with an INVALID_FORMAT / INVALID_RECORDS
// error.
func ReadCSV(r io.Reader, opts ...CSVOption) (*Batch, error) {
	cfg := csvConfig{separator: DefaultSeparator, comma: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	cr := csv.NewReader(r)
	cr.Comma = cfg.comma
	cr.FieldsPerRecord = 2

	b := &Batch{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading csv")
		}
		line++
		if cfg.header && line == 1 {
			continue
		}

		species := strings.TrimSpace(rec[0])
		team := splitTeam(rec[1], cfg.separator)
		b.Species = append(b.Species, species)
		b.Collectors = append(b.Collectors, team)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// splitTeam splits a joined collectors field into trimmed ids, dropping
// empty fragments. An empty field yields an empty team.
func splitTeam(field, sep string) []string {
	team := []string{}
	for _, id := range strings.Split(field, sep) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		team = append(team, id)
	}
	return team
}

// LoadCSV reads a CSV batch from a file at path.
// A missing file fails with a NOT_FOUND_FILE error.
func LoadCSV(path string, opts ...CSVOption) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening %s", path)
	}
	defer f.Close()
	return ReadCSV(f, opts...)
}

// tomlBatch mirrors the on-disk TOML layout:
//
//	[[records]]
//	species = "Mimosa tenuiflora"
//	collectors = ["Silva, J.", "Costa, M."]
type tomlBatch struct {
	Records []tomlRecord `toml:"records"`
}

type tomlRecord struct {
	Species    string   `toml:"species"`
	Collectors []string `toml:"collectors"`
}

// LoadTOML reads a batch from a TOML file of [[records]] tables.
// A missing file fails with NOT_FOUND_FILE; malformed TOML with
// INVALID_FORMAT; bad ids with INVALID_RECORDS.
func LoadTOML(path string) (*Batch, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening %s", path)
	}

	var data tomlBatch
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing %s", path)
	}

	b := &Batch{}
	for _, rec := range data.Records {
		team := rec.Collectors
		if team == nil {
			team = []string{}
		}
		b.Species = append(b.Species, rec.Species)
		b.Collectors = append(b.Collectors, team)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
