package qrcode

import (
	"context"
	"time"

	"qrattend/internal/apierr"
	"qrattend/internal/store"
)

const maxMintAttempts = 5

// Store is the persistence surface the service depends on.
type Store interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id string) (*Code, error)
	Create(ctx context.Context, c *Code) error
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	OfficeExists(ctx context.Context, id string) (bool, error)
}

// Service wraps the store with token minting and validation rules.
type Service struct {
	store   Store
	baseURL string
	now     func() time.Time
}

func NewService(st Store, baseURL string) *Service {
	return &Service{store: st, baseURL: baseURL, now: time.Now}
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 15
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	switch q.Status {
	case "", "active", "inactive", "expired":
	default:
		return nil, apierr.Invalid("status must be active, inactive, or expired")
	}
	res, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apierr.Internal("could not list qr codes")
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apierr.Internal("could not load qr code")
	}
	if c == nil {
		return nil, apierr.NotFound("qr code not found")
	}
	return s.view(c), nil
}

// Create mints a new code. Token collisions are retried with a fresh
// random token up to maxMintAttempts times.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*View, error) {
	if !req.ExpiresAt.After(s.now()) {
		return nil, apierr.Invalid("expires_at must be in the future")
	}
	ok, err := s.store.OfficeExists(ctx, req.OfficeLocationID)
	if err != nil {
		return nil, apierr.Internal("could not verify office")
	}
	if !ok {
		return nil, apierr.NotFound("office not found")
	}

	c := &Code{
		OfficeLocationID: req.OfficeLocationID,
		IsActive:         true,
		ExpiresAt:        req.ExpiresAt,
	}
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		c.Code, err = newToken()
		if err != nil {
			return nil, apierr.Internal("could not generate token")
		}
		err = s.store.Create(ctx, c)
		if err == nil {
			return s.Get(ctx, c.ID)
		}
		if !store.IsUniqueViolation(err) {
			return nil, apierr.Internal("could not create qr code")
		}
	}
	return nil, apierr.Internal("could not generate a unique token")
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*View, error) {
	ok, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, apierr.Internal("could not update qr code")
	}
	if !ok {
		return nil, apierr.NotFound("qr code not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return apierr.Internal("could not delete qr code")
	}
	if !ok {
		return apierr.NotFound("qr code not found")
	}
	return nil
}

func (s *Service) view(c *Code) *View {
	return &View{
		Code:    *c,
		IsValid: c.Valid(s.now()),
		ScanURL: s.baseURL + "/scan/" + c.Code,
	}
}
