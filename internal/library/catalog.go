package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/csheth/studyhub/internal/store"
)

// ErrEmptyName is returned when a subject is created without a name.
var ErrEmptyName = errors.New("subject name cannot be empty")

// Mirror receives a snapshot of a collection after every change.
type Mirror interface {
	Enqueue(key string, value any)
}

// Loader reads persisted collections.
type Loader interface {
	Load(ctx context.Context, key string, dest any) store.LoadResult
}

// RefIssuer turns a local path into a content reference.
type RefIssuer interface {
	Issue(path string) string
}

// Options wires a Catalog to its collaborators. Zero values are usable.
type Options struct {
	Mirror Mirror
	Refs   RefIssuer
	Now    func() time.Time
	NewID  func() string
	Logger *logrus.Logger
}

// InitReport describes where each collection came from at startup.
type InitReport struct {
	Subjects  store.LoadStatus
	Documents store.LoadStatus
}

// Catalog owns the subjects and documents collections. Documents are kept
// newest first.
type Catalog struct {
	mu        sync.RWMutex
	subjects  []Subject
	documents []Document

	mirror Mirror
	refs   RefIssuer
	now    func() time.Time
	newID  func() string
	log    *logrus.Entry
}

// NewCatalog returns a catalog holding the default subjects and no documents.
func NewCatalog(opts Options) *Catalog {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Catalog{
		subjects:  DefaultSubjects(),
		documents: []Document{},
		mirror:    opts.Mirror,
		refs:      opts.Refs,
		now:       opts.Now,
		newID:     opts.NewID,
		log:       opts.Logger.WithField("component", "catalog"),
	}
}

// Initialize replaces both collections with what loader holds. Absent or
// corrupt subjects fall back to the defaults; absent or corrupt documents
// fall back to an empty list. Startup never fails on storage problems.
func (c *Catalog) Initialize(ctx context.Context, loader Loader) InitReport {
	var subjects []Subject
	subjectsResult := loader.Load(ctx, store.SubjectsKey, &subjects)
	if !subjectsResult.OK() || subjects == nil {
		subjects = DefaultSubjects()
	}
	if unique := uniqueSubjects(subjects); len(unique) != len(subjects) {
		c.log.WithField("dropped", len(subjects)-len(unique)).Warn("stored subjects repeat an id; keeping the first of each")
		subjects = unique
	}

	var documents []Document
	documentsResult := loader.Load(ctx, store.DocumentsKey, &documents)
	if !documentsResult.OK() || documents == nil {
		documents = []Document{}
	}

	c.mu.Lock()
	c.subjects = subjects
	c.documents = documents
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"subjects":        len(subjects),
		"subjectsSource":  subjectsResult.Status.String(),
		"documents":       len(documents),
		"documentsSource": documentsResult.Status.String(),
	}).Info("catalog initialized")
	return InitReport{Subjects: subjectsResult.Status, Documents: documentsResult.Status}
}

// AddDocument files a new upload at the front of the collection. An empty
// targetSubjectID files it under OtherSubjectID.
func (c *Catalog) AddDocument(file FileDescriptor, targetSubjectID string) Document {
	ref := file.Path
	if c.refs != nil {
		ref = c.refs.Issue(file.Path)
	}
	subjectID := targetSubjectID
	if subjectID == "" {
		subjectID = OtherSubjectID
	}
	total := file.TotalPages
	if total < 0 {
		total = 0
	}
	doc := Document{
		ID:         c.newID(),
		Name:       file.Name,
		SubjectID:  subjectID,
		FileURL:    ref,
		LastPage:   1,
		TotalPages: total,
		UploadDate: c.now().UnixMilli(),
	}

	c.mu.Lock()
	c.documents = append([]Document{doc}, c.documents...)
	snapshot := c.documentsLocked()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"id": doc.ID, "subject": subjectID}).Info("document added")
	c.mirrorDocuments(snapshot)
	return doc
}

// UpdatePage records the last viewed page. Unknown ids and non-positive
// pages leave the collection untouched and report false.
func (c *Catalog) UpdatePage(documentID string, page int) bool {
	if page < 1 {
		return false
	}
	c.mu.Lock()
	idx := c.indexLocked(documentID)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	if c.documents[idx].LastPage == page {
		c.mu.Unlock()
		return true
	}
	c.documents[idx].LastPage = page
	snapshot := c.documentsLocked()
	c.mu.Unlock()

	c.mirrorDocuments(snapshot)
	return true
}

// RemoveDocument drops a document. Unknown ids are ignored.
func (c *Catalog) RemoveDocument(documentID string) (Document, bool) {
	c.mu.Lock()
	idx := c.indexLocked(documentID)
	if idx < 0 {
		c.mu.Unlock()
		return Document{}, false
	}
	removed := c.documents[idx]
	c.documents = append(c.documents[:idx:idx], c.documents[idx+1:]...)
	snapshot := c.documentsLocked()
	c.mu.Unlock()

	c.log.WithField("id", documentID).Info("document removed")
	c.mirrorDocuments(snapshot)
	return removed, true
}

// AddSubject appends a user-defined subject with an id derived from name.
func (c *Catalog) AddSubject(name, color, icon string) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, ErrEmptyName
	}
	c.mu.Lock()
	subject := Subject{
		ID:    c.uniqueSubjectIDLocked(slugify(name)),
		Name:  name,
		Color: color,
		Icon:  icon,
	}
	c.subjects = append(c.subjects, subject)
	snapshot := c.subjectsLocked()
	c.mu.Unlock()

	c.log.WithField("id", subject.ID).Info("subject added")
	c.mirrorSubjects(snapshot)
	return subject, nil
}

// RemoveSubject drops a subject. Its documents keep their subjectId and stay
// reachable from the unfiltered view.
func (c *Catalog) RemoveSubject(subjectID string) bool {
	c.mu.Lock()
	idx := -1
	for i, s := range c.subjects {
		if s.ID == subjectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.subjects = append(c.subjects[:idx:idx], c.subjects[idx+1:]...)
	snapshot := c.subjectsLocked()
	c.mu.Unlock()

	c.log.WithField("id", subjectID).Info("subject removed")
	c.mirrorSubjects(snapshot)
	return true
}

// Subjects returns a copy of the subjects in display order.
func (c *Catalog) Subjects() []Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subjectsLocked()
}

// Documents returns a copy of the documents, newest first.
func (c *Catalog) Documents() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.documentsLocked()
}

// Subject looks up a subject by id.
func (c *Catalog) Subject(id string) (Subject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// Document looks up a document by id.
func (c *Catalog) Document(id string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return Document{}, false
	}
	return c.documents[idx], true
}

// CountBySubject counts documents filed under subjectID.
func (c *Catalog) CountBySubject(subjectID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, d := range c.documents {
		if d.SubjectID == subjectID {
			count++
		}
	}
	return count
}

// uniqueSubjects keeps the first subject seen for each id.
func uniqueSubjects(subjects []Subject) []Subject {
	seen := make(map[string]struct{}, len(subjects))
	out := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (c *Catalog) indexLocked(documentID string) int {
	for i, d := range c.documents {
		if d.ID == documentID {
			return i
		}
	}
	return -1
}

func (c *Catalog) documentsLocked() []Document {
	return append([]Document(nil), c.documents...)
}

func (c *Catalog) subjectsLocked() []Subject {
	return append([]Subject(nil), c.subjects...)
}

func (c *Catalog) uniqueSubjectIDLocked(base string) string {
	if base == "" {
		base = "subject"
	}
	taken := map[string]bool{OtherSubjectID: true}
	for _, s := range c.subjects {
		taken[s.ID] = true
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func (c *Catalog) mirrorDocuments(snapshot []Document) {
	if c.mirror != nil {
		c.mirror.Enqueue(store.DocumentsKey, snapshot)
	}
}

func (c *Catalog) mirrorSubjects(snapshot []Subject) {
	if c.mirror != nil {
		c.mirror.Enqueue(store.SubjectsKey, snapshot)
	}
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
