package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/jvre/memberd/scheduler"
)

// ListJobs handles GET /api/admin/jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	jobs := []scheduler.JobInfo{}
	if h.sched != nil {
		jobs = h.sched.GetJobs()
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// RunJob handles POST /api/admin/jobs/:id/run.
func (h *Handler) RunJob(c *gin.Context) {
	if h.sched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scheduler running"})
		return
	}

	if err := h.sched.RunJobNow(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"triggered": c.Param("id")})
}
