package attendance

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qrattend/internal/apierr"
	"qrattend/internal/auth"
	"qrattend/internal/queue"
)

// Handler serves the scan endpoint and the employee-facing read views.
type Handler struct {
	svc *Service
	q   queue.Queue
}

// RegisterRoutes attaches attendance routes to an authenticated group.
func RegisterRoutes(r gin.IRoutes, svc *Service, q queue.Queue) {
	h := &Handler{svc: svc, q: q}
	r.POST("/attendance/scan", h.Scan)
	r.GET("/attendance/today", h.Today)
	r.GET("/attendance/report", h.Report)
}

// POST /attendance/scan
func (h *Handler) Scan(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qr_code and type are required"})
		return
	}

	res, err := h.svc.RecordScan(c.Request.Context(), claims.Subject, req, c.Request.UserAgent())
	if err != nil {
		recordRejection(err)
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}

	scansAccepted.WithLabelValues(req.Type).Inc()
	h.publish(res.Attendance, req.Type)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       res.Message,
		"attendance":    res.Attendance,
		"working_hours": res.WorkingHours,
	})
}

// publish emits the post-commit scan event; delivery is best effort.
func (h *Handler) publish(att *Attendance, action string) {
	if h.q == nil || att == nil {
		return
	}
	msg, err := queue.NewScanMessage(queue.ScanEvent{
		AttendanceID: att.ID,
		OfficeID:     att.OfficeLocationID,
		Action:       action,
		Date:         att.Date.Format(dateLayout),
	})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.q.Publish(ctx, msg); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

// GET /attendance/today
func (h *Handler) Today(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	view, err := h.svc.Today(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /attendance/report?period=week&date=2026-01-05
func (h *Handler) Report(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	res, err := h.svc.Report(c.Request.Context(), claims.Subject, c.Query("period"), c.Query("date"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
