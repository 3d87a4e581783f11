package api

import (
	"context"

	"github.com/absmach/cartridge/agent"
	"github.com/absmach/cartridge/repository"
	"github.com/go-kit/kit/endpoint"
)

func statusEndpoint(svc agent.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		return statusResponse{
			Status: svc.Status(ctx),
		}, nil
	}
}

func listRepositoriesEndpoint(svc agent.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		repos, err := svc.Repositories(ctx)
		if err != nil {
			return listRepositoriesResponse{}, err
		}
		if repos == nil {
			repos = []repository.State{}
		}

		return listRepositoriesResponse{
			Total:        uint64(len(repos)),
			Repositories: repos,
		}, nil
	}
}
