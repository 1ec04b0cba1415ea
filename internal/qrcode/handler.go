package qrcode

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrattend/internal/apierr"
)

type Handler struct {
	svc *Service
}

// RegisterRoutes mounts QR code management under the given (manager-only) group.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/qr-codes", h.List)
	r.POST("/qr-codes", h.Create)
	r.GET("/qr-codes/:id", h.Get)
	r.PATCH("/qr-codes/:id", h.Update)
	r.DELETE("/qr-codes/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		OfficeID: c.Query("office_location_id"),
		Status:   c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.PerPage, _ = strconv.Atoi(c.Query("per_page"))

	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": v})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "office_location_id and expires_at are required"})
		return
	}
	v, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"qr_code": v})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}
	v, err := h.svc.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": v})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
