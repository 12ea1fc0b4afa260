package library

import (
	"strings"
	"unicode"

	"github.com/sajari/fuzzy"
)

// Filter returns the documents visible for the active subject and search
// query, in their original order. An empty activeSubjectID shows every
// subject; an empty query matches every name. Matching is a case-insensitive
// substring test on the document name.
func Filter(docs []Document, activeSubjectID, query string) []Document {
	needle := strings.ToLower(query)
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if activeSubjectID != "" && doc.SubjectID != activeSubjectID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(doc.Name), needle) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// Suggest proposes a corrected query built from words that appear in the
// names of documents under the active subject. It returns "" when the query
// already matches or no close word exists.
func Suggest(docs []Document, activeSubjectID, query string) string {
	query = strings.TrimSpace(query)
	if query == "" || len(Filter(docs, activeSubjectID, query)) > 0 {
		return ""
	}
	var words []string
	for _, doc := range Filter(docs, activeSubjectID, "") {
		words = append(words, nameWords(doc.Name)...)
	}
	if len(words) == 0 {
		return ""
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	model.SetUseAutocomplete(false)
	model.Train(words)

	terms := strings.Fields(strings.ToLower(query))
	changed := false
	for i, term := range terms {
		if corrected := model.SpellCheck(term); corrected != "" && corrected != term {
			terms[i] = corrected
			changed = true
		}
	}
	if !changed {
		return ""
	}
	suggestion := strings.Join(terms, " ")
	if len(Filter(docs, activeSubjectID, suggestion)) == 0 {
		return ""
	}
	return suggestion
}

func nameWords(name string) []string {
	name = strings.TrimSuffix(strings.ToLower(name), ".pdf")
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			words = append(words, f)
		}
	}
	return words
}
