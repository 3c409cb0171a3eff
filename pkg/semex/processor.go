// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semex extracts coded clinical findings from free text.
//
// A Processor owns a dictionary of terms, each registered under one role
// with one or more codes. Extract segments text into sentences, matches
// dictionary phrases, resolves negation and speculation scope, attaches
// descriptors beneath the findings they describe and returns a Document.
//
// A Processor is safe for concurrent use. Extractions share the dictionary
// under a read lock; LoadVocabulary, AddPhrase and AddCue take it
// exclusively.
package semex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/semex/internal/cache"
	"github.com/pdiddy/semex/internal/dictionary"
	"github.com/pdiddy/semex/internal/match"
	"github.com/pdiddy/semex/internal/metrics"
	"github.com/pdiddy/semex/internal/scope"
	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/internal/vocab"
	"github.com/pdiddy/semex/pkg/types"
)

// Processor runs the extraction pipeline against one dictionary.
type Processor struct {
	mu        sync.RWMutex
	dict      *dictionary.Store
	summaries []types.LoadSummary

	segmenter *segment.Segmenter
	resolver  *scope.Resolver
	maxInput  int

	cache   *cache.Memory[*Document]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a processor. Unless disabled with WithBuiltinCues(false) the
// embedded cue vocabulary is loaded, so negation and speculation work before
// any dictionary file is added.
func New(opts ...Option) (*Processor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Processor{
		dict:      dictionary.NewStore(o.logger),
		segmenter: segment.NewSegmenter(o.scope.SplitOnNewline),
		resolver:  scope.NewResolver(o.scope),
		maxInput:  o.scope.MaxInputBytes,
		metrics:   o.metrics,
		logger:    o.logger,
	}
	if o.cache.Enabled {
		p.cache = cache.NewMemory[*Document](o.cache.TTL, o.cache.CleanupInterval)
	}

	if o.builtinCues {
		summaries, err := p.dict.LoadBuiltinCues()
		if err != nil {
			return nil, fmt.Errorf("loading builtin cues: %w", err)
		}
		p.summaries = append(p.summaries, summaries...)
	}
	p.metrics.Vocabulary(p.dict.Counts())

	return p, nil
}

// Initialize creates a processor and loads every dictionary cfg names: the
// <role>.txt files in cfg.Dir and the files listed per role in cfg.Files.
// A file that cannot be read is logged as a warning and skipped; only an
// unknown role name in cfg.Files is an error.
func Initialize(cfg types.DictionaryConfig, opts ...Option) (*Processor, error) {
	opts = append([]Option{WithBuiltinCues(!cfg.DisableBuiltinCues)}, opts...)
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}

	var discovered map[types.Role][]string
	if cfg.Dir != "" {
		discovered, err = vocab.Discover(cfg.Dir, p.logger)
		if err != nil {
			p.logger.Warn("vocabulary directory not readable", zap.String("dir", cfg.Dir), zap.Error(err))
		}
	}
	files, err := vocab.Merge(discovered, cfg.Files)
	if err != nil {
		return nil, err
	}

	for _, role := range types.AllRoles {
		for _, path := range files[role] {
			if _, err := p.LoadVocabulary(path, role); err != nil {
				p.logger.Warn("dictionary not loaded",
					zap.String("file", path), zap.String("role", string(role)), zap.Error(err))
			}
		}
	}

	p.logger.Info("processor ready", zap.Int("terms", p.Len()))
	return p, nil
}

// LoadVocabulary loads one dictionary file under role. Malformed and
// conflicting lines are counted in the summary, not returned as errors.
func (p *Processor) LoadVocabulary(path string, role types.Role) (types.LoadSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	summary, err := p.dict.LoadFile(path, role)
	if err != nil {
		return summary, err
	}
	p.summaries = append(p.summaries, summary)
	p.vocabularyChanged()
	return summary, nil
}

// LoadedOK loads a dictionary file and reports whether any line registered.
func (p *Processor) LoadedOK(path string, role types.Role) bool {
	summary, err := p.LoadVocabulary(path, role)
	return err == nil && summary.Loaded > 0
}

// AddPhrase registers a single term. It returns false for an empty term or
// code, an unknown role, or a term already registered under another role.
// NEGATOR, SPECULATION and CONFIRMER terms govern the spans after them.
func (p *Processor) AddPhrase(term, code string, role types.Role) bool {
	return p.AddCue(term, code, role, types.DirectionPre)
}

// AddCue registers a single term like AddPhrase. For NEGATOR, SPECULATION
// and CONFIRMER terms dir says whether the cue governs the spans after it
// (DirectionPre) or before it (DirectionPost).
func (p *Processor) AddCue(term, code string, role types.Role, dir types.Direction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ok := p.dict.AddCue(term, code, role, dir)
	if ok {
		p.vocabularyChanged()
	}
	return ok
}

// vocabularyChanged refreshes the vocabulary gauges and drops cached
// documents, whose keys no longer match the dictionary generation. The
// caller holds p.mu.
func (p *Processor) vocabularyChanged() {
	p.metrics.Vocabulary(p.dict.Counts())
	if p.cache == nil {
		return
	}
	if n := p.cache.Len(); n > 0 {
		p.logger.Debug("dropping cached documents", zap.Int("documents", n))
		p.cache.Clear()
	}
}

// Extract runs the pipeline over text. Empty and whitespace-only text yields
// a document with no sentences. Offsets in the result are byte offsets into
// text.
func (p *Processor) Extract(ctx context.Context, text string) (*Document, error) {
	if p.maxInput > 0 && len(text) > p.maxInput {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInputTooLarge, len(text), p.maxInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extracting: %w", err)
	}

	start := time.Now()

	p.mu.RLock()
	defer p.mu.RUnlock()

	var key string
	if p.cache != nil {
		key = cache.Key(text, p.dict.Generation())
		if doc, ok := p.cache.Get(key); ok {
			p.metrics.CacheLookup(true)
			return doc.clone(), nil
		}
		p.metrics.CacheLookup(false)
	}

	doc := newDocument(text)
	for _, span := range p.segmenter.Split(text) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extracting: %w", err)
		}
		hits := match.Sentence(p.dict, text, span.Tokens)
		doc.addSentence(span, p.resolver.Resolve(span.Tokens, hits))
	}

	p.observe(doc, time.Since(start))
	if p.cache != nil {
		p.cache.Set(key, doc.clone())
	}

	p.logger.Debug("extracted",
		zap.Int("bytes", len(text)),
		zap.Int("sentences", len(doc.sentences)),
		zap.Int("objects", len(doc.objects)))

	return doc, nil
}

func (p *Processor) observe(doc *Document, d time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.Duration(d)
	p.metrics.Sentences(len(doc.sentences))
	for _, o := range doc.objects {
		p.metrics.Object(o.role, o.certainty)
	}
}

// Len returns the number of registered terms.
func (p *Processor) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dict.Len()
}

// Entries returns every registered term sorted by role, then term.
func (p *Processor) Entries() []types.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dict.Entries()
}

// Counts returns the number of registered terms per role.
func (p *Processor) Counts() map[types.Role]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dict.Counts()
}

// Summaries returns the load summary of every vocabulary loaded so far,
// builtin cues first.
func (p *Processor) Summaries() []types.LoadSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.LoadSummary(nil), p.summaries...)
}

// Roles lists every role a term can be registered under.
func Roles() []types.Role {
	return append([]types.Role(nil), types.AllRoles...)
}

// Certainties lists every certainty level an object can carry.
func Certainties() []types.Certainty {
	return append([]types.Certainty(nil), types.AllCertainties...)
}
