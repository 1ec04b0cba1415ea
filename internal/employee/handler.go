package employee

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrattend/internal/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes attaches admin employee CRUD to a manager-only group.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/employees", h.List)
	r.POST("/employees", h.Create)
	r.GET("/employees/:id", h.Get)
	r.PUT("/employees/:id", h.Update)
	r.DELETE("/employees/:id", h.Delete)
}

// GET /admin/employees?search=&department=&status=&page=&per_page=
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.Page = parsed
		}
	}
	if v := c.Query("per_page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.PerPage = parsed
		}
	}

	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /admin/employees
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, e)
}

// GET /admin/employees/:id
func (h *Handler) Get(c *gin.Context) {
	e, recent, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": e, "recent_attendances": recent})
}

// PUT /admin/employees/:id
func (h *Handler) Update(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /admin/employees/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
