package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// catalogExport is the on-disk shape of a platform catalog export
type catalogExport struct {
	Courses []catalogCourse `json:"courses"`
}

type catalogCourse struct {
	Title   string          `json:"title"`
	URL     string          `json:"url"`
	Lessons []catalogLesson `json:"lessons"`
}

type catalogLesson struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	URL      string        `json:"url"`
	Files    []catalogFile `json:"files"`
}

type catalogFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FileCatalog implements domain.CatalogDiscovery over a JSON catalog export
// produced by the platform scraper. The export loads once at construction;
// lookups key on course and lesson URLs.
type FileCatalog struct {
	courses []catalogCourse
	byURL   map[string]*catalogCourse
	lessons map[string]*catalogLesson
}

// NewFileCatalog loads a catalog export from path
func NewFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var export catalogExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	c := &FileCatalog{
		courses: export.Courses,
		byURL:   make(map[string]*catalogCourse),
		lessons: make(map[string]*catalogLesson),
	}
	for i := range c.courses {
		course := &c.courses[i]
		c.byURL[course.URL] = course
		for j := range course.Lessons {
			lesson := &course.Lessons[j]
			c.lessons[lesson.URL] = lesson
		}
	}
	return c, nil
}

// ListCourses returns every course in the export
func (c *FileCatalog) ListCourses() ([]domain.Course, error) {
	courses := make([]domain.Course, 0, len(c.courses))
	for _, course := range c.courses {
		courses = append(courses, domain.Course{Title: course.Title, URL: course.URL})
	}
	return courses, nil
}

// ListLessons returns the lessons of the course identified by courseURL
func (c *FileCatalog) ListLessons(courseURL string) ([]domain.Lesson, error) {
	course, ok := c.byURL[courseURL]
	if !ok {
		return nil, fmt.Errorf("course not in catalog: %s", courseURL)
	}
	lessons := make([]domain.Lesson, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		lessons = append(lessons, domain.Lesson{Title: l.Title, Subtitle: l.Subtitle, URL: l.URL})
	}
	return lessons, nil
}

// ListLessonFiles returns the downloadable files of one lesson
func (c *FileCatalog) ListLessonFiles(lessonURL string) ([]domain.LessonFile, error) {
	lesson, ok := c.lessons[lessonURL]
	if !ok {
		return nil, fmt.Errorf("lesson not in catalog: %s", lessonURL)
	}
	files := make([]domain.LessonFile, 0, len(lesson.Files))
	for _, f := range lesson.Files {
		files = append(files, domain.LessonFile{
			Name: f.Name,
			URL:  f.URL,
			Type: domain.DetectFileType(f.Name),
		})
	}
	return files, nil
}

// CountLessons returns the lesson count of one course
func (c *FileCatalog) CountLessons(courseURL string) (int, error) {
	course, ok := c.byURL[courseURL]
	if !ok {
		return 0, fmt.Errorf("course not in catalog: %s", courseURL)
	}
	return len(course.Lessons), nil
}
