package domain

// Course is a remote course as reported by catalog discovery
type Course struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Lesson is a remote lesson within a course
type Lesson struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	URL      string `json:"url"`
}

// LessonFile is one downloadable file attached to a lesson
type LessonFile struct {
	Name string   `json:"name"`
	URL  string   `json:"url"`
	Type FileType `json:"type"`
}

// CourseMetadata is the write-once sidecar recording the original remote
// title of a local course directory. It lets later runs re-identify the
// directory even when the remote title renders differently.
type CourseMetadata struct {
	OriginalTitle  string `json:"original_title"`
	SanitizedTitle string `json:"sanitized_title"`
	DownloadDate   string `json:"download_date"`
}

// IncompleteCourseReport describes the gap between a remote course and its
// local download state. Recomputed every run, never persisted.
type IncompleteCourseReport struct {
	Course         Course  `json:"course"`
	LocalPath      string  `json:"local_path"`
	RemoteLessons  int     `json:"remote_lessons"`
	LocalLessons   int     `json:"local_lessons"`
	MissingLessons int     `json:"missing_lessons"`
	Progress       float64 `json:"progress"`
	LocalSizeBytes int64   `json:"local_size_bytes"`
}
