// Package ingest bulk-loads theorem corpora from YAML or JSON files
// into the store. Records are validated up front and indexed through a
// worker pool; a bad record is reported and skipped, it never aborts
// the rest of the file.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/normlens/normlens/internal/model"
	"github.com/normlens/normlens/internal/store"
	"github.com/normlens/normlens/internal/validate"
	"github.com/normlens/normlens/internal/worker"
)

// Record is one corpus entry in its file form. Dates are strings so
// corpus files can use plain YYYY-MM-DD.
type Record struct {
	Operator          string  `yaml:"operator" json:"operator"`
	Proposition       string  `yaml:"proposition" json:"proposition"`
	Agent             string  `yaml:"agent,omitempty" json:"agent,omitempty"`
	Jurisdiction      string  `yaml:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	LegalDomain       string  `yaml:"legal_domain,omitempty" json:"legal_domain,omitempty"`
	SourceCase        string  `yaml:"source_case,omitempty" json:"source_case,omitempty"`
	PrecedentStrength float64 `yaml:"precedent_strength" json:"precedent_strength"`
	StartDate         string  `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate           string  `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	Confidence        float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// corpusFile is the top-level file shape
type corpusFile struct {
	Theorems []Record `yaml:"theorems" json:"theorems"`
}

// LoadCorpus reads records from a .yaml/.yml or .json corpus file
func LoadCorpus(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var corpus corpusFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &corpus); err != nil {
			return nil, fmt.Errorf("parse JSON corpus: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &corpus); err != nil {
			return nil, fmt.Errorf("parse YAML corpus: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported corpus format: %s", filepath.Ext(path))
	}

	if len(corpus.Theorems) == 0 {
		return nil, fmt.Errorf("corpus %s contains no theorems", path)
	}
	return corpus.Theorems, nil
}

// defaultConfidence is assigned to records that do not state their own;
// corpus entries are curated assertions.
const defaultConfidence = 0.9

// Outcome is the per-record ingest result
type Outcome struct {
	Index     int
	Record    Record
	TheoremID string
	Err       error
}

// GetError returns the record's error, if any
func (o *Outcome) GetError() error { return o.Err }

// Summary aggregates one ingest run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Ingester feeds validated records into a theorem store
type Ingester struct {
	store   *store.TheoremStore
	config  *model.Config
	workers int
}

// NewIngester creates an ingester over the given store
func NewIngester(theoremStore *store.TheoremStore, cfg *model.Config) *Ingester {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	workers := cfg.Concurrency.IngestWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Ingester{store: theoremStore, config: cfg, workers: workers}
}

// recordJob indexes one record through the worker pool
type recordJob struct {
	index    int
	record   Record
	ingester *Ingester
}

// Execute validates and stores the record
func (j *recordJob) Execute(ctx context.Context) worker.Result {
	id, err := j.ingester.ingestOne(ctx, j.record)
	return &Outcome{Index: j.index, Record: j.record, TheoremID: id, Err: err}
}

func (ing *Ingester) ingestOne(ctx context.Context, rec Record) (string, error) {
	op, err := validate.ParseOperator(rec.Operator)
	if err != nil {
		return "", err
	}
	if err := validate.Proposition(rec.Proposition); err != nil {
		return "", err
	}
	if err := validate.Strength(rec.PrecedentStrength); err != nil {
		return "", err
	}
	scope, err := validate.ParseScope(rec.StartDate, rec.EndDate)
	if err != nil {
		return "", err
	}

	var agent *model.LegalAgent
	if rec.Agent != "" {
		agent = &model.LegalAgent{ID: strings.ToLower(rec.Agent), Name: rec.Agent, Kind: model.AgentRole}
	}

	confidence := rec.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	jurisdiction := rec.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = ing.config.Pipeline.Jurisdiction
	}
	legalDomain := rec.LegalDomain
	if legalDomain == "" {
		legalDomain = ing.config.Pipeline.LegalDomain
	}

	formula := model.NewDeonticFormula(op, rec.Proposition, agent, confidence, rec.Proposition)
	return ing.store.AddTheorem(ctx, formula, scope, jurisdiction, legalDomain, rec.SourceCase, rec.PrecedentStrength)
}

// IngestRecords indexes records concurrently and reports per-record
// outcomes. Order of outcomes follows completion, not input.
func (ing *Ingester) IngestRecords(ctx context.Context, records []Record) Summary {
	summary := Summary{Total: len(records)}
	if len(records) == 0 {
		return summary
	}

	pool := worker.NewPool(ing.workers)
	pool.Start()

	// Drain results while submitting: a corpus larger than the pool's
	// channel buffers would otherwise block Submit forever.
	collector := worker.NewResultCollector()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for result := range pool.Results() {
			collector.Add(result)
		}
	}()

	for i, rec := range records {
		pool.Submit(&recordJob{index: i, record: rec, ingester: ing})
	}
	pool.Close()
	<-drained

	for _, result := range collector.Results() {
		outcome := result.(*Outcome)
		summary.Outcomes = append(summary.Outcomes, *outcome)
		if outcome.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// IngestFile loads a corpus file and indexes its records
func (ing *Ingester) IngestFile(ctx context.Context, path string) (Summary, error) {
	records, err := LoadCorpus(path)
	if err != nil {
		return Summary{}, err
	}
	return ing.IngestRecords(ctx, records), nil
}
