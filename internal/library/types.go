package library

import "time"

// OtherSubjectID is assigned to documents uploaded while no subject is active.
const OtherSubjectID = "other"

// Subject is a named category documents are filed under.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Document is one uploaded PDF plus its reading progress.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SubjectID  string `json:"subjectId"`
	FileURL    string `json:"fileUrl"`
	LastPage   int    `json:"lastPage"`
	TotalPages int    `json:"totalPages"`
	UploadDate int64  `json:"uploadDate"`
}

// Uploaded converts the stored epoch-millisecond timestamp.
func (d Document) Uploaded() time.Time {
	return time.UnixMilli(d.UploadDate)
}

// Resumable reports whether the reader moved past the first page.
func (d Document) Resumable() bool {
	return d.LastPage > 1
}

// FileDescriptor describes a file picked for upload.
type FileDescriptor struct {
	Name string
	Path string
	// TotalPages is filled when an inspector could count pages at ingest; 0 means unknown.
	TotalPages int
}

// DefaultSubjects returns the subjects seeded on first run.
func DefaultSubjects() []Subject {
	return []Subject{
		{ID: "math", Name: "Mathematics", Color: "blue", Icon: "Calculator"},
		{ID: "science", Name: "Science", Color: "green", Icon: "FlaskConical"},
		{ID: "history", Name: "History", Color: "orange", Icon: "Globe"},
		{ID: "literature", Name: "Literature", Color: "purple", Icon: "BookOpen"},
		{ID: "art", Name: "Art", Color: "pink", Icon: "Palette"},
		{ID: "music", Name: "Music", Color: "indigo", Icon: "Music"},
	}
}
