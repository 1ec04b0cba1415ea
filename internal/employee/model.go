package employee

import (
	"time"

	"qrattend/internal/auth"
)

// Employee is a full employee row as managed by admins.
type Employee struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Role       auth.Role `json:"role"`
	Status     string    `json:"status"`
	HireDate   time.Time `json:"hire_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UpsertRequest is the create/update payload.
type UpsertRequest struct {
	UserID     string  `json:"user_id" binding:"required"`
	EmployeeID string  `json:"employee_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      *string `json:"phone"`
	Department string  `json:"department" binding:"required"`
	Position   string  `json:"position" binding:"required"`
	Role       string  `json:"role"`
	Status     string  `json:"status"`
	HireDate   string  `json:"hire_date" binding:"required"`
}

// ListQuery filters and paginates the employee listing.
type ListQuery struct {
	Search     string
	Department string
	Status     string
	Page       int
	PerPage    int
}

// ListResult is one page of employees.
type ListResult struct {
	Employees []Employee `json:"employees"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
}

// AttendanceSummary is a compact history row shown on the employee detail page.
type AttendanceSummary struct {
	Date         time.Time  `json:"date"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
}
