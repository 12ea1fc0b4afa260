package library

import (
	"reflect"
	"strings"
	"testing"
	"testing/quick"
)

func sampleDocs() []Document {
	return []Document{
		{ID: "1", Name: "Calculus Notes.pdf", SubjectID: "math"},
		{ID: "2", Name: "Cell Biology.pdf", SubjectID: "science"},
		{ID: "3", Name: "Linear Algebra.pdf", SubjectID: "math"},
		{ID: "4", Name: "calc-cheatsheet.pdf", SubjectID: "math"},
		{ID: "5", Name: "Loose scan.pdf", SubjectID: OtherSubjectID},
	}
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		query   string
		want    []string
	}{
		{name: "everything", want: []string{"1", "2", "3", "4", "5"}},
		{name: "subject only", subject: "math", want: []string{"1", "3", "4"}},
		{name: "case insensitive", subject: "math", query: "CALC", want: []string{"1", "4"}},
		{name: "query across subjects", query: "pdf", want: []string{"1", "2", "3", "4", "5"}},
		{name: "no match", subject: "math", query: "biology", want: []string{}},
		{name: "sentinel subject", subject: OtherSubjectID, want: []string{"5"}},
		{name: "unknown subject", subject: "music", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(sampleDocs(), tc.subject, tc.query))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Filter(%q, %q) = %v, want %v", tc.subject, tc.query, got, tc.want)
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	docs := sampleDocs()
	Filter(docs, "math", "calc")
	if !reflect.DeepEqual(docs, sampleDocs()) {
		t.Fatal("input slice was modified")
	}
}

func TestFilterProperties(t *testing.T) {
	subjects := []string{"", "math", "science", OtherSubjectID}
	property := func(names []string, subjectPick uint8, query string) bool {
		docs := make([]Document, len(names))
		for i, name := range names {
			docs[i] = Document{ID: string(rune('a' + i%26)), Name: name, SubjectID: subjects[1+i%3]}
		}
		subject := subjects[int(subjectPick)%len(subjects)]
		once := Filter(docs, subject, query)
		if !reflect.DeepEqual(Filter(once, subject, query), once) {
			return false
		}
		// Output is a subsequence of the input and every entry satisfies the predicate.
		j := 0
		for _, doc := range once {
			for j < len(docs) && !reflect.DeepEqual(docs[j], doc) {
				j++
			}
			if j == len(docs) {
				return false
			}
			j++
			if subject != "" && doc.SubjectID != subject {
				return false
			}
			if !strings.Contains(strings.ToLower(doc.Name), strings.ToLower(query)) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSuggest(t *testing.T) {
	docs := sampleDocs()
	if got := Suggest(docs, "math", "calculs"); got != "calculus" {
		t.Fatalf("expected calculus, got %q", got)
	}
	if got := Suggest(docs, "math", "calc"); got != "" {
		t.Fatalf("matching query should not get a suggestion, got %q", got)
	}
	if got := Suggest(docs, "math", "biolgy"); got != "" {
		t.Fatalf("words outside the active subject should not be suggested, got %q", got)
	}
	if got := Suggest(docs, "", ""); got != "" {
		t.Fatalf("empty query should not get a suggestion, got %q", got)
	}
}
