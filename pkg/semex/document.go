// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semex

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pdiddy/semex/internal/scope"
	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/pkg/types"
)

// ObjectID addresses a semantic object within its Document.
type ObjectID int

// SentenceID addresses a sentence within its Document.
type SentenceID int

// NoObject is the parent of a top-level object.
const NoObject ObjectID = -1

// Token is a word or punctuation mark with byte offsets into the document.
type Token struct {
	Text  string `json:"text" yaml:"text"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Word  bool   `json:"word" yaml:"word"`
}

// Cue is a matched cue phrase: a negator, speculation or confirmation
// marker, a history or family-history marker, or a conjunction.
type Cue struct {
	Text  string     `json:"text" yaml:"text"`
	Codes []string   `json:"codes" yaml:"codes"`
	Role  types.Role `json:"role" yaml:"role"`
	Start int        `json:"start" yaml:"start"`
	End   int        `json:"end" yaml:"end"`
}

// Sentence is a snapshot of one sentence.
type Sentence struct {
	ID      SentenceID
	Text    string
	Start   int
	End     int
	Tokens  []Token
	Objects []ObjectID
	Cues    []Cue
}

// SemanticObject is a snapshot of one object.
type SemanticObject struct {
	ID            ObjectID
	Text          string
	Codes         []string
	Role          types.Role
	Certainty     types.Certainty
	FamilyHistory bool
	Historical    bool
	Start         int
	End           int
	Sentence      SentenceID
	Parent        ObjectID
	Modifiers     []ObjectID
}

type sentence struct {
	text       string
	start, end int
	tokens     []Token
	objects    []ObjectID
	cues       []Cue
}

type object struct {
	text          string
	codes         []string
	role          types.Role
	certainty     types.Certainty
	familyHistory bool
	historical    bool
	start, end    int
	sentence      SentenceID
	parent        ObjectID
	modifiers     []ObjectID
}

// Document holds the sentences and objects extracted from one text. Objects
// and sentences are addressed by handle; handles stay valid for the life of
// the document. A Document is safe for concurrent use.
type Document struct {
	mu        sync.RWMutex
	text      string
	sentences []sentence
	objects   []object
}

func newDocument(text string) *Document {
	return &Document{text: text}
}

// addSentence appends a segmented sentence and its resolved objects.
func (d *Document) addSentence(span segment.Span, res scope.Result) {
	sid := SentenceID(len(d.sentences))
	base := len(d.objects)

	s := sentence{
		text:   span.Text,
		start:  span.Start,
		end:    span.End,
		tokens: make([]Token, len(span.Tokens)),
	}
	for i, t := range span.Tokens {
		s.tokens[i] = Token{Text: t.Text, Start: t.Start, End: t.End, Word: t.Word}
	}
	for _, c := range res.Cues {
		s.cues = append(s.cues, Cue{
			Text:  c.Text,
			Codes: slices.Clone(c.Codes),
			Role:  c.Role,
			Start: c.Start,
			End:   c.End,
		})
	}

	for i, r := range res.Objects {
		o := object{
			text:          r.Span.Text,
			codes:         slices.Clone(r.Span.Codes),
			role:          r.Span.Role,
			certainty:     r.Certainty,
			familyHistory: r.FamilyHistory,
			historical:    r.Historical,
			start:         r.Span.Start,
			end:           r.Span.End,
			sentence:      sid,
			parent:        NoObject,
		}
		if r.Parent != scope.NoParent {
			o.parent = ObjectID(base + r.Parent)
		}
		for _, m := range r.Modifiers {
			o.modifiers = append(o.modifiers, ObjectID(base+m))
		}
		d.objects = append(d.objects, o)
		if r.Parent == scope.NoParent {
			s.objects = append(s.objects, ObjectID(base+i))
		}
	}

	d.sentences = append(d.sentences, s)
}

// Source returns the text the document was extracted from.
func (d *Document) Source() string {
	return d.text
}

// Len returns the number of objects in the document, modifiers included.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// Sentences returns the handles of all sentences in order.
func (d *Document) Sentences() []SentenceID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]SentenceID, len(d.sentences))
	for i := range d.sentences {
		ids[i] = SentenceID(i)
	}
	return ids
}

// Sentence returns a snapshot of a sentence.
func (d *Document) Sentence(id SentenceID) (Sentence, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, err := d.sentence(id)
	if err != nil {
		return Sentence{}, err
	}
	cues := make([]Cue, len(s.cues))
	for i, c := range s.cues {
		cues[i] = c
		cues[i].Codes = slices.Clone(c.Codes)
	}
	return Sentence{
		ID:      id,
		Text:    s.text,
		Start:   s.start,
		End:     s.end,
		Tokens:  slices.Clone(s.tokens),
		Objects: slices.Clone(s.objects),
		Cues:    cues,
	}, nil
}

// Objects returns the top-level objects of a sentence in order of
// appearance. Modifiers are reached through Modifiers.
func (d *Document) Objects(id SentenceID) ([]ObjectID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, err := d.sentence(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.objects), nil
}

// Object returns a snapshot of an object.
func (d *Document) Object(id ObjectID) (SemanticObject, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	o, err := d.object(id)
	if err != nil {
		return SemanticObject{}, err
	}
	return SemanticObject{
		ID:            id,
		Text:          o.text,
		Codes:         slices.Clone(o.codes),
		Role:          o.role,
		Certainty:     o.certainty,
		FamilyHistory: o.familyHistory,
		Historical:    o.historical,
		Start:         o.start,
		End:           o.end,
		Sentence:      o.sentence,
		Parent:        o.parent,
		Modifiers:     slices.Clone(o.modifiers),
	}, nil
}

// Text returns the covered text of an object.
func (d *Document) Text(id ObjectID) (string, error) {
	o, err := d.Object(id)
	return o.Text, err
}

// Codes returns the codes of an object in registration order.
func (d *Document) Codes(id ObjectID) ([]string, error) {
	o, err := d.Object(id)
	return o.Codes, err
}

// Role returns the role of an object.
func (d *Document) Role(id ObjectID) (types.Role, error) {
	o, err := d.Object(id)
	return o.Role, err
}

// Certainty returns the certainty of an object.
func (d *Document) Certainty(id ObjectID) (types.Certainty, error) {
	o, err := d.Object(id)
	return o.Certainty, err
}

// FamilyHistory reports whether an object describes a relative.
func (d *Document) FamilyHistory(id ObjectID) (bool, error) {
	o, err := d.Object(id)
	return o.FamilyHistory, err
}

// Historical reports whether an object describes past history.
func (d *Document) Historical(id ObjectID) (bool, error) {
	o, err := d.Object(id)
	return o.Historical, err
}

// Offsets returns the byte offsets of an object in the document text.
func (d *Document) Offsets(id ObjectID) (start, end int, err error) {
	o, err := d.Object(id)
	return o.Start, o.End, err
}

// Modifiers returns the objects attached beneath an object.
func (d *Document) Modifiers(id ObjectID) ([]ObjectID, error) {
	o, err := d.Object(id)
	return o.Modifiers, err
}

// Parent returns the object an object is attached beneath, or NoObject.
func (d *Document) Parent(id ObjectID) (ObjectID, error) {
	o, err := d.Object(id)
	if err != nil {
		return NoObject, err
	}
	return o.Parent, nil
}

// SentenceOf returns the sentence that owns an object.
func (d *Document) SentenceOf(id ObjectID) (SentenceID, error) {
	o, err := d.Object(id)
	if err != nil {
		return 0, err
	}
	return o.Sentence, nil
}

// SetOffsets moves an object to [start, end) of the document text. The
// object's text follows the new offsets.
func (d *Document) SetOffsets(id ObjectID, start, end int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, err := d.object(id)
	if err != nil {
		return err
	}
	if start < 0 || end < start || end > len(d.text) {
		return fmt.Errorf("%w: [%d, %d) in text of %d bytes", ErrInvalidOffsets, start, end, len(d.text))
	}
	o.start, o.end = start, end
	o.text = d.text[start:end]
	return nil
}

// SetCertainty overrides the certainty of an object.
func (d *Document) SetCertainty(id ObjectID, c types.Certainty) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCertainty, c)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	o, err := d.object(id)
	if err != nil {
		return err
	}
	o.certainty = c
	return nil
}

// SetFamilyHistory overrides the family-history flag of an object.
func (d *Document) SetFamilyHistory(id ObjectID, v bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, err := d.object(id)
	if err != nil {
		return err
	}
	o.familyHistory = v
	return nil
}

// SetSentence moves an object and its modifiers to another sentence. The
// object leaves the old sentence's object list, or its parent's modifiers
// when it was attached, and joins the new sentence as a top-level object in
// offset order.
func (d *Document) SetSentence(id ObjectID, sid SentenceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, err := d.object(id)
	if err != nil {
		return err
	}
	target, err := d.sentence(sid)
	if err != nil {
		return err
	}
	if o.sentence == sid {
		return nil
	}

	if o.parent == NoObject {
		d.detachTop(id)
	} else {
		d.detachModifier(id)
	}
	d.insertTop(target, id)
	d.moveTree(id, sid)
	return nil
}

// AddModifier attaches child beneath parent. A child that already had a
// parent is moved; a top-level child leaves its sentence's object list.
func (d *Document) AddModifier(parent, child ObjectID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.object(parent)
	if err != nil {
		return err
	}
	c, err := d.object(child)
	if err != nil {
		return err
	}
	for a := parent; a != NoObject; a = d.objects[a].parent {
		if a == child {
			return fmt.Errorf("%w: %d is an ancestor of %d", ErrModifierCycle, child, parent)
		}
	}
	if c.parent == parent {
		return nil
	}

	if c.parent == NoObject {
		d.detachTop(child)
	} else {
		d.detachModifier(child)
	}

	c.parent = parent
	p.modifiers = append(p.modifiers, child)
	if c.sentence != p.sentence {
		d.moveTree(child, p.sentence)
	}
	return nil
}

// Record returns the serializable view of the document.
func (d *Document) Record(documentID string) types.ExtractionResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := types.ExtractionResult{
		DocumentID: documentID,
		Sentences:  make([]types.SentenceRecord, 0, len(d.sentences)),
	}
	for i, s := range d.sentences {
		rec := types.SentenceRecord{
			Index:   i,
			Text:    s.text,
			Start:   s.start,
			End:     s.end,
			Objects: make([]types.ObjectRecord, 0, len(s.objects)),
		}
		for _, id := range s.objects {
			rec.Objects = append(rec.Objects, d.record(id))
		}
		result.Sentences = append(result.Sentences, rec)
	}
	return result
}

func (d *Document) record(id ObjectID) types.ObjectRecord {
	o := d.objects[id]
	rec := types.ObjectRecord{
		Text:          o.text,
		Codes:         slices.Clone(o.codes),
		Role:          o.role,
		Certainty:     o.certainty,
		FamilyHistory: o.familyHistory,
		Historical:    o.historical,
		Start:         o.start,
		End:           o.end,
	}
	for _, m := range o.modifiers {
		rec.Modifiers = append(rec.Modifiers, d.record(m))
	}
	return rec
}

// clone returns a deep copy. Cached documents are cloned on the way in and
// out so that setters on one copy never show through another.
func (d *Document) clone() *Document {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := &Document{
		text:      d.text,
		sentences: make([]sentence, len(d.sentences)),
		objects:   make([]object, len(d.objects)),
	}
	for i, s := range d.sentences {
		s.tokens = slices.Clone(s.tokens)
		s.objects = slices.Clone(s.objects)
		s.cues = slices.Clone(s.cues)
		for j := range s.cues {
			s.cues[j].Codes = slices.Clone(s.cues[j].Codes)
		}
		c.sentences[i] = s
	}
	for i, o := range d.objects {
		o.codes = slices.Clone(o.codes)
		o.modifiers = slices.Clone(o.modifiers)
		c.objects[i] = o
	}
	return c
}

func (d *Document) object(id ObjectID) (*object, error) {
	if id < 0 || int(id) >= len(d.objects) {
		return nil, fmt.Errorf("%w: object %d", ErrInvalidHandle, id)
	}
	return &d.objects[id], nil
}

func (d *Document) sentence(id SentenceID) (*sentence, error) {
	if id < 0 || int(id) >= len(d.sentences) {
		return nil, fmt.Errorf("%w: sentence %d", ErrInvalidHandle, id)
	}
	return &d.sentences[id], nil
}

func (d *Document) detachTop(id ObjectID) {
	s := &d.sentences[d.objects[id].sentence]
	s.objects = slices.DeleteFunc(s.objects, func(o ObjectID) bool { return o == id })
}

func (d *Document) detachModifier(id ObjectID) {
	o := &d.objects[id]
	parent := &d.objects[o.parent]
	parent.modifiers = slices.DeleteFunc(parent.modifiers, func(m ObjectID) bool { return m == id })
	o.parent = NoObject
}

func (d *Document) insertTop(s *sentence, id ObjectID) {
	start := d.objects[id].start
	i, _ := slices.BinarySearchFunc(s.objects, start, func(o ObjectID, t int) int {
		return d.objects[o].start - t
	})
	s.objects = slices.Insert(s.objects, i, id)
}

func (d *Document) moveTree(id ObjectID, sid SentenceID) {
	d.objects[id].sentence = sid
	for _, m := range d.objects[id].modifiers {
		d.moveTree(m, sid)
	}
}
