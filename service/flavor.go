package service

import (
	"context"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
)

func (s *Service) ListFlavors(ctx context.Context, token string) ([]client.Flavor, error) {
	return s.Compute.ListFlavors(ctx, token)
}

func (s *Service) GetFlavor(ctx context.Context, token, flavorID string) (*client.Flavor, error) {
	flavor, err := s.Compute.GetFlavor(ctx, token, flavorID)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, apperror.NotFound(apperror.ReasonFlavorNotFound, flavorID)
		}
		return nil, err
	}
	return flavor, nil
}
