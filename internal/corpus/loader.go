package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
)

// batchFilePattern matches the patent batch files inside a data directory.
const batchFilePattern = "patents_ipa*.json"

// Loader reads patent batch files from a data directory into a Store.
// Each file holds a JSON array of patent objects. Records missing a
// critical field (title, abstract, claims) are excluded; records missing
// optional fields (classification, bibtex, ...) are retained.
type Loader struct {
	dataDir  string
	poolSize int
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPoolSize sets the worker pool size for parallel file parsing.
// Default is runtime.NumCPU(), minimum 1.
func WithPoolSize(size int) LoaderOption {
	return func(l *Loader) {
		if size < 1 {
			size = 1
		}
		l.poolSize = size
	}
}

// WithLogger sets a custom logger. Default is zap.NewNop().
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader over the given data directory.
func NewLoader(dataDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dataDir:  dataDir,
		poolSize: runtime.NumCPU(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// patentJSON is the wire shape of a patent object in a batch file.
type patentJSON struct {
	DocNumber      string     `json:"doc_number"`
	Title          string     `json:"title"`
	Abstract       string     `json:"abstract"`
	Claims         claimsText `json:"claims"`
	Classification string     `json:"classification"`
	Description    string     `json:"detailed_description"`
	Bibtex         string     `json:"bibtex"`
}

// claimsText accepts either a single string or an array of claim strings,
// which some batch files use; arrays are joined with single spaces.
type claimsText string

func (c *claimsText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = claimsText(s)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("claims must be a string or array of strings: %w", err)
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	*c = claimsText(strings.Join(nonEmpty, " "))
	return nil
}

// Load parses every batch file in the data directory and returns a Store.
// Files parse concurrently on an ants worker pool; records are assembled
// in sorted filename order so repeated loads of an unchanged directory
// produce an identical corpus.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	files, err := filepath.Glob(filepath.Join(l.dataDir, batchFilePattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", l.dataDir, err)
	}
	if len(files) == 0 {
		l.logger.Warn("no patent batch files found", zap.String("data_dir", l.dataDir))
	}
	sort.Strings(files)

	pool, err := ants.NewPool(l.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type fileResult struct {
		records  []patent.Record
		excluded int
		err      error
	}

	results := make([]fileResult, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		i, path := i, path // per-iteration copies for the closure (pre-go1.22 semantics)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			recs, excluded, err := l.parseFile(path)
			results[i] = fileResult{records: recs, excluded: excluded, err: err}
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit parse job: %w", submitErr)
		}
	}
	wg.Wait()

	var records []patent.Record
	var excluded int
	seen := make(map[string]bool)
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("parse %s: %w", files[i], res.err)
		}
		excluded += res.excluded
		for _, r := range res.records {
			if seen[r.ID()] {
				l.logger.Warn("skipping duplicate patent id", zap.String("id", r.ID()))
				continue
			}
			seen[r.ID()] = true
			records = append(records, r)
		}
	}

	l.logger.Info("corpus loaded",
		zap.Int("files", len(files)),
		zap.Int("patents", len(records)),
		zap.Int("excluded_missing_fields", excluded),
	)

	return NewStore(records)
}

// parseFile reads one batch file and converts its valid records.
func (l *Loader) parseFile(path string) ([]patent.Record, int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, 0, err
	}

	var raw []patentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode batch: %w", err)
	}

	records := make([]patent.Record, 0, len(raw))
	excluded := 0
	for _, p := range raw {
		if strings.TrimSpace(p.Title) == "" ||
			strings.TrimSpace(p.Abstract) == "" ||
			strings.TrimSpace(string(p.Claims)) == "" ||
			strings.TrimSpace(p.DocNumber) == "" {
			excluded++
			continue
		}

		var meta map[string]string
		if p.Description != "" || p.Bibtex != "" {
			meta = make(map[string]string, 2)
			if p.Description != "" {
				meta["detailed_description"] = p.Description
			}
			if p.Bibtex != "" {
				meta["bibtex"] = p.Bibtex
			}
		}

		records = append(records, patent.Reconstruct(
			p.DocNumber, p.Title, p.Abstract, string(p.Claims), p.Classification, meta,
		))
	}
	return records, excluded, nil
}
