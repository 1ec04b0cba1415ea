package employee

import (
	"context"
	"time"

	"qrattend/internal/apierr"
	"qrattend/internal/auth"
	"qrattend/internal/store"
)

// Service validates and executes admin employee operations.
type Service struct {
	store *Store
}

// NewService creates a service backed by a store.
func NewService(s *Store) *Service {
	return &Service{store: s}
}

const dateLayout = "2006-01-02"

func fromRequest(req UpsertRequest) (*Employee, error) {
	role := auth.Role(req.Role)
	if req.Role == "" {
		role = auth.RoleEmployee
	}
	if !role.Valid() {
		return nil, apierr.Invalid("role must be employee, admin, or hrd")
	}
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusInactive {
		return nil, apierr.Invalid("status must be active or inactive")
	}
	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return nil, apierr.Invalid("hire_date must be YYYY-MM-DD")
	}
	return &Employee{
		UserID:     req.UserID,
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Position:   req.Position,
		Role:       role,
		Status:     status,
		HireDate:   hireDate,
	}, nil
}

// List returns a filtered page.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 || q.PerPage > 100 {
		q.PerPage = 15
	}
	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListResult{Employees: rows, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// Create adds an employee; duplicate employee_id, email, or user_id is a conflict.
func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Employee, error) {
	e, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, e); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apierr.Conflict("employee_id, email, or user_id already in use")
		}
		return nil, err
	}
	return e, nil
}

// Get returns an employee with recent attendance history.
func (s *Service) Get(ctx context.Context, id string) (*Employee, []AttendanceSummary, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		return nil, nil, apierr.NotFound("employee not found")
	}
	recent, err := s.store.RecentAttendance(ctx, e.ID, 10)
	if err != nil {
		return nil, nil, err
	}
	return e, recent, nil
}

// Update rewrites an employee.
func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (*Employee, error) {
	e, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	e.ID = id
	ok, err := s.store.Update(ctx, e)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apierr.Conflict("employee_id, email, or user_id already in use")
		}
		return nil, err
	}
	if !ok {
		return nil, apierr.NotFound("employee not found")
	}
	return s.store.Get(ctx, id)
}

// Delete removes an employee and, via the schema, their attendance rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("employee not found")
	}
	return nil
}
