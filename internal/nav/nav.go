package nav

import (
	"fmt"

	"github.com/csheth/studyhub/internal/library"
)

// Catalog is the read side of library.Catalog used to resolve selections.
type Catalog interface {
	Subject(id string) (library.Subject, bool)
	Document(id string) (library.Document, bool)
}

// State tracks the active subject and the open document. Both start unset;
// an unset subject means the dashboard showing every subject.
type State struct {
	subjectID  string
	documentID string
}

func (s *State) SelectSubject(id string) {
	s.subjectID = id
}

func (s *State) ClearSubject() {
	s.subjectID = ""
}

// OpenDocument holds the document by id so a later reopen reads the current
// page from the catalog.
func (s *State) OpenDocument(doc library.Document) {
	s.documentID = doc.ID
}

func (s *State) CloseDocument() {
	s.documentID = ""
}

func (s *State) ActiveSubject() (string, bool) {
	return s.subjectID, s.subjectID != ""
}

func (s *State) OpenDocumentID() (string, bool) {
	return s.documentID, s.documentID != ""
}

// ContextHint describes what the user is looking at for the chat assistant:
// "Subject: <name>" plus ", File: <name>" while a document is open. It is
// empty on the dashboard.
func (s *State) ContextHint(cat Catalog) string {
	if s.subjectID == "" {
		return ""
	}
	subject, ok := cat.Subject(s.subjectID)
	if !ok {
		return ""
	}
	hint := fmt.Sprintf("Subject: %s", subject.Name)
	if s.documentID != "" {
		if doc, ok := cat.Document(s.documentID); ok {
			hint += fmt.Sprintf(", File: %s", doc.Name)
		}
	}
	return hint
}
