package office

import (
	"context"

	"qrattend/internal/apierr"
)

// Service wraps the store with validation rules.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service { return &Service{store: store} }

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Location, error) {
	locs, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, apierr.Internal("could not list offices")
	}
	if locs == nil {
		locs = []Location{}
	}
	return locs, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Location, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apierr.Internal("could not load office")
	}
	if l == nil {
		return nil, apierr.NotFound("office not found")
	}
	return l, nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Location, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	l := fromRequest(req)
	if err := s.store.Create(ctx, l); err != nil {
		return nil, apierr.Internal("could not create office")
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (*Location, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	l := fromRequest(req)
	l.ID = id
	ok, err := s.store.Update(ctx, l)
	if err != nil {
		return nil, apierr.Internal("could not update office")
	}
	if !ok {
		return nil, apierr.NotFound("office not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return apierr.Internal("could not delete office")
	}
	if !ok {
		return apierr.NotFound("office not found")
	}
	return nil
}

func fromRequest(req UpsertRequest) *Location {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &Location{
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		IsActive:     active,
	}
}
