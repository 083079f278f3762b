package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edufetch-go/internal/app"
	"github.com/yourusername/edufetch-go/internal/domain"
)

// StatusHandler exposes the live state of a running download over HTTP.
// Everything it serves comes from task snapshots, so it can run alongside
// the terminal monitor without coordinating with the schedulers.
type StatusHandler struct {
	documents *app.Scheduler
	videos    *app.Scheduler
}

// NewStatusHandler creates a status handler over both scheduler pools
func NewStatusHandler(documents, videos *app.Scheduler) *StatusHandler {
	return &StatusHandler{documents: documents, videos: videos}
}

// ProgressResponse is the payload of GET /api/v1/progress
type ProgressResponse struct {
	Documents app.ProgressSummary `json:"documents"`
	Videos    app.ProgressSummary `json:"videos"`
}

// GetProgress handles GET /api/v1/progress
func (h *StatusHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, ProgressResponse{
		Documents: h.documents.Progress(),
		Videos:    h.videos.Progress(),
	})
}

// GetTasks handles GET /api/v1/tasks with optional ?status= filter
func (h *StatusHandler) GetTasks(c *gin.Context) {
	statusFilter := c.Query("status")

	var tasks []domain.TaskView
	for _, view := range append(h.documents.Tasks(), h.videos.Tasks()...) {
		if statusFilter != "" && string(view.Status) != statusFilter {
			continue
		}
		tasks = append(tasks, view)
	}
	if tasks == nil {
		tasks = []domain.TaskView{}
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}
