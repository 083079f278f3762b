package domain

// CatalogDiscovery yields course, lesson and file metadata from the remote
// platform. Implementations live at the scraping boundary; the core only
// consumes this interface. Errors from discovery (including timeouts) are
// treated by callers as empty results, never as fatal conditions.
type CatalogDiscovery interface {
	ListCourses() ([]Course, error)
	ListLessons(courseURL string) ([]Lesson, error)
	ListLessonFiles(lessonURL string) ([]LessonFile, error)
	CountLessons(courseURL string) (int, error)
}
