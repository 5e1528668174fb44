package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
)

func (s *Service) ListImages(ctx context.Context, token string) ([]client.Image, error) {
	return s.Image.ListImages(ctx, token)
}

func (s *Service) GetImage(ctx context.Context, token string, id uuid.UUID) (*client.Image, error) {
	image, err := s.Image.GetImage(ctx, token, id)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, apperror.NotFound(apperror.ReasonImageNotFound, id.String())
		}
		return nil, err
	}
	return image, nil
}
