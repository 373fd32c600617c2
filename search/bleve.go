package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"searchlight/models"
)

// BleveBackend implements Backend on top of embedded bleve indexes, one
// physical index per entity type, stored under dataDir.
type BleveBackend struct {
	indexes map[string]bleve.Index
	locks   map[string]*sync.RWMutex
	mu      sync.RWMutex
	dataDir string
	logger  *zap.Logger
}

// NewBleveBackend creates a backend rooted at dataDir
func NewBleveBackend(dataDir string, logger *zap.Logger) *BleveBackend {
	return &BleveBackend{
		indexes: make(map[string]bleve.Index),
		locks:   make(map[string]*sync.RWMutex),
		dataDir: dataDir,
		logger:  logger,
	}
}

func (b *BleveBackend) indexPath(entity *models.EntityType) string {
	return filepath.Join(b.dataDir, fmt.Sprintf("%s_%s", entity.IndexName(), entity.Name))
}

// getIndexLock returns the lock for an entity's index, creating it if necessary
func (b *BleveBackend) getIndexLock(name string) *sync.RWMutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	if lock, exists := b.locks[name]; exists {
		return lock
	}
	lock := &sync.RWMutex{}
	b.locks[name] = lock
	return lock
}

func (b *BleveBackend) getIndex(entity *models.EntityType) (bleve.Index, error) {
	b.mu.RLock()
	index, exists := b.indexes[entity.Name]
	b.mu.RUnlock()

	if !exists {
		return nil, unavailable(fmt.Errorf("index for entity %s is not open", entity.Name))
	}
	return index, nil
}

// EnsureIndex idempotently opens or creates the entity's index with its
// declared mapping.
func (b *BleveBackend) EnsureIndex(entity *models.EntityType) error {
	if !entity.Indexable() {
		return fmt.Errorf("entity %s is not indexable", entity.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.indexes[entity.Name]; exists {
		return nil
	}

	if err := os.MkdirAll(b.dataDir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %v", ErrIndexCreation, err)
	}

	indexPath := b.indexPath(entity)

	var index bleve.Index
	var err error
	if _, statErr := os.Stat(indexPath); statErr == nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			return fmt.Errorf("%w: failed to open index %s: %v", ErrIndexCreation, indexPath, err)
		}
	} else {
		index, err = bleve.New(indexPath, buildIndexMapping(entity))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIndexCreation, err)
		}
		b.logger.Info("Created index",
			zap.String("entity", entity.Name),
			zap.String("index", entity.IndexName()))
	}

	b.indexes[entity.Name] = index
	b.locks[entity.Name] = &sync.RWMutex{}
	return nil
}

// RebuildIndex drops the entity's index and recreates it with a fresh mapping
func (b *BleveBackend) RebuildIndex(entity *models.EntityType) error {
	b.mu.Lock()
	if index, exists := b.indexes[entity.Name]; exists {
		index.Close()
		delete(b.indexes, entity.Name)
		delete(b.locks, entity.Name)
	}
	indexPath := b.indexPath(entity)
	if err := os.RemoveAll(indexPath); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("%w: failed to remove index directory: %v", ErrIndexCreation, err)
	}
	b.mu.Unlock()

	return b.EnsureIndex(entity)
}

// buildIndexMapping builds a bleve mapping from the entity's search settings.
// Declared field types win; facet, suggest and completion fields default to
// keyword so that term filters and prefix completion operate on whole values.
func buildIndexMapping(entity *models.EntityType) mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	s := entity.Search
	for _, f := range s.Fields {
		docMapping.AddFieldMappingsAt(f, fieldMapping(s, f))
	}
	if !contains(s.Fields, entity.PrimaryKey) {
		docMapping.AddFieldMappingsAt(entity.PrimaryKey, keywordFieldMapping())
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func fieldMapping(s *models.SearchSettings, field string) *mapping.FieldMapping {
	switch s.Mapping[field] {
	case "keyword":
		return keywordFieldMapping()
	case "numeric":
		return bleve.NewNumericFieldMapping()
	case "boolean":
		return bleve.NewBooleanFieldMapping()
	case "datetime":
		return bleve.NewDateTimeFieldMapping()
	case "text":
		return bleve.NewTextFieldMapping()
	}
	if contains(s.FacetsFields, field) || contains(s.SuggestFields, field) || contains(s.CompletionFields, field) {
		return keywordFieldMapping()
	}
	return bleve.NewTextFieldMapping()
}

func keywordFieldMapping() *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	return fm
}

// Index upserts one document
func (b *BleveBackend) Index(entity *models.EntityType, id string, doc map[string]any) error {
	index, err := b.getIndex(entity)
	if err != nil {
		return err
	}

	lock := b.getIndexLock(entity.Name)
	lock.Lock()
	defer lock.Unlock()

	if err := index.Index(id, doc); err != nil {
		return unavailable(fmt.Errorf("failed to index document: %v", err))
	}
	return nil
}

// Delete removes one document. Missing documents are not an error.
func (b *BleveBackend) Delete(entity *models.EntityType, id string) error {
	index, err := b.getIndex(entity)
	if err != nil {
		return err
	}

	lock := b.getIndexLock(entity.Name)
	lock.Lock()
	defer lock.Unlock()

	if err := index.Delete(id); err != nil {
		return unavailable(fmt.Errorf("failed to delete document: %v", err))
	}
	return nil
}

// Get fetches one document by id
func (b *BleveBackend) Get(entity *models.EntityType, id string) (map[string]any, error) {
	index, err := b.getIndex(entity)
	if err != nil {
		return nil, err
	}

	lock := b.getIndexLock(entity.Name)
	lock.RLock()
	defer lock.RUnlock()

	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{id}))
	req.Fields = []string{"*"}

	res, err := index.Search(req)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(res.Hits) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, entity.Name, id)
	}

	return hitFields(res.Hits[0].Fields, entity.PrimaryKey, res.Hits[0].ID), nil
}

// Search executes a structured query against the entity's index
func (b *BleveBackend) Search(entity *models.EntityType, spec Spec) (*Result, error) {
	index, err := b.getIndex(entity)
	if err != nil {
		return nil, err
	}

	q, err := buildQuery(spec)
	if err != nil {
		return nil, err
	}

	size := spec.PageSize
	if size <= 0 {
		size = 20
	}
	req := bleve.NewSearchRequestOptions(q, size, spec.Offset(), false)
	req.Fields = []string{"*"}

	if len(spec.Ordering) > 0 {
		req.SortBy(spec.Ordering)
	} else {
		req.SortBy([]string{"-_score"})
	}

	s := entity.Search
	for _, f := range s.FacetsFields {
		req.AddFacet(f, bleve.NewFacetRequest(f, s.FacetsLimit))
	}

	lock := b.getIndexLock(entity.Name)
	lock.RLock()
	res, err := index.Search(req)
	lock.RUnlock()
	if err != nil {
		return nil, unavailable(err)
	}

	result := &Result{
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		result.Hits = append(result.Hits, Hit{
			ID:     hit.ID,
			Fields: hitFields(hit.Fields, entity.PrimaryKey, hit.ID),
		})
	}

	if len(res.Facets) > 0 {
		result.Facets = make(map[string][]FacetTerm, len(res.Facets))
		for name, fr := range res.Facets {
			terms := make([]FacetTerm, 0)
			if fr.Terms != nil {
				for _, t := range fr.Terms.Terms() {
					terms = append(terms, FacetTerm{Term: t.Term, Count: t.Count})
				}
			}
			result.Facets[name] = terms
		}
	}

	if spec.Term != "" && len(s.SuggestFields) > 0 {
		result.Suggestions = b.suggest(index, s, spec.Term)
	}

	return result, nil
}

// buildQuery converts a spec into a bleve query. The free-text term is
// validated up front so that malformed query strings surface as
// ErrQueryRejected instead of failing mid-search.
func buildQuery(spec Spec) (query.Query, error) {
	var parts []query.Query

	if spec.Term == "" {
		parts = append(parts, bleve.NewMatchAllQuery())
	} else {
		qsq := bleve.NewQueryStringQuery(spec.Term)
		if _, err := qsq.Parse(); err != nil {
			return nil, rejected(err)
		}
		parts = append(parts, qsq)
	}

	for _, f := range spec.Filters {
		tq := bleve.NewTermQuery(f.Value)
		tq.SetField(f.Field)
		parts = append(parts, tq)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return bleve.NewConjunctionQuery(parts...), nil
}

// suggest collects close-match terms for each suggest field. Failures here
// only lose suggestions, never the search itself.
func (b *BleveBackend) suggest(index bleve.Index, s *models.SearchSettings, term string) map[string][]string {
	suggestions := make(map[string][]string, len(s.SuggestFields))
	for _, f := range s.SuggestFields {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetField(f)
		req := bleve.NewSearchRequestOptions(fq, 0, 0, false)
		req.AddFacet(f, bleve.NewFacetRequest(f, s.FacetsLimit))

		res, err := index.Search(req)
		if err != nil {
			b.logger.Debug("suggest query failed", zap.String("field", f), zap.Error(err))
			continue
		}
		terms := make([]string, 0)
		if fr, ok := res.Facets[f]; ok && fr.Terms != nil {
			for _, t := range fr.Terms.Terms() {
				terms = append(terms, t.Term)
			}
		}
		suggestions[f] = terms
	}
	return suggestions
}

// Complete returns completion-field values starting with prefix
func (b *BleveBackend) Complete(entity *models.EntityType, prefix string, limit int) ([]string, error) {
	index, err := b.getIndex(entity)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	s := entity.Search
	if len(s.CompletionFields) == 0 {
		return []string{}, nil
	}

	var parts []query.Query
	for _, f := range s.CompletionFields {
		pq := bleve.NewPrefixQuery(prefix)
		pq.SetField(f)
		parts = append(parts, pq)
	}
	q := query.Query(parts[0])
	if len(parts) > 1 {
		q = bleve.NewDisjunctionQuery(parts...)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = s.CompletionFields

	res, err := index.Search(req)
	if err != nil {
		return nil, unavailable(err)
	}

	seen := make(map[string]bool)
	completions := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		for _, f := range s.CompletionFields {
			v, ok := hit.Fields[f].(string)
			if ok && !seen[v] {
				seen[v] = true
				completions = append(completions, v)
			}
		}
	}
	return completions, nil
}

// Close closes all open indexes
func (b *BleveBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, index := range b.indexes {
		if err := index.Close(); err != nil {
			b.logger.Warn("Failed to close index", zap.String("entity", name), zap.Error(err))
		}
		delete(b.indexes, name)
	}
}

// hitFields copies a hit's stored fields into a document map, making sure the
// primary key is present.
func hitFields(fields map[string]any, primaryKey, id string) map[string]any {
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	if _, ok := doc[primaryKey]; !ok {
		doc[primaryKey] = id
	}
	return doc
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
