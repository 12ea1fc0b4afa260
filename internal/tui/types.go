package tui

type stage int

const (
	stageDashboard stage = iota
	stageLibrary
	stageSearch
	stageUpload
	stageNewSubject
	stageReader
)

const heroTagline = "Your subjects, your PDFs, right where you left off."

const (
	minMainWidth     = 40
	sidebarWidth     = 28
	chatPanelWidth   = 46
	recentLimit      = 5
	chatInputLimit   = 500
	uploadInputLimit = 4096
)

const (
	uploadPlaceholder     = "Path to a PDF (eg. ~/Downloads/calculus.pdf)"
	searchPlaceholder     = "Search this library…"
	subjectPlaceholder    = "Subject name, eg. Geography"
	chatPlaceholder       = "Ask your study buddy…"
	noResourcesLabel      = "No resources"
	singleResourceLabel   = "1 Resource"
	resourceCountTemplate = "%d Resources"
)
