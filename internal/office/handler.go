package office

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/apierr"
)

type Handler struct {
	svc *Service
}

// RegisterRoutes mounts office CRUD under the given (manager-only) group.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/offices", h.List)
	r.POST("/offices", h.Create)
	r.GET("/offices/:id", h.Get)
	r.PUT("/offices/:id", h.Update)
	r.DELETE("/offices/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("status") == "active"
	locs, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"offices": locs})
}

func (h *Handler) Get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"office": l})
}

func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and address are required"})
		return
	}
	l, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"office": l})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and address are required"})
		return
	}
	l, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"office": l})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
