package api

import (
	"context"
	"errors"

	"github.com/cairo-thws/fedt4t/orchestrator"
	"github.com/cairo-thws/fedt4t/pkg/api"
	pkgerrors "github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/go-kit/kit/endpoint"
)

func listAgentsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		agents, err := svc.ListAgents(ctx)
		if err != nil {
			return agentsResponse{}, err
		}

		return agentsResponse{
			AgentPage: agents,
		}, nil
	}
}

func getRoundEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(roundReq)
		if !ok {
			return roundResponse{}, errors.Join(api.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return roundResponse{}, errors.Join(api.ErrValidation, err)
		}

		round, err := svc.GetRound(ctx, req.index)
		if err != nil {
			return roundResponse{}, err
		}

		return roundResponse{
			Round: round,
		}, nil
	}
}

func listRoundsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listRoundsReq)
		if !ok {
			return listRoundsResponse{}, errors.Join(api.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listRoundsResponse{}, errors.Join(api.ErrValidation, err)
		}

		rounds, err := svc.ListRounds(ctx, req.offset, req.limit)
		if err != nil {
			return listRoundsResponse{}, err
		}

		return listRoundsResponse{
			RoundPage: rounds,
		}, nil
	}
}

func leaderboardEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		board, err := svc.Leaderboard(ctx)
		if err != nil {
			return leaderboardResponse{}, err
		}

		return leaderboardResponse{
			Leaderboard: board,
		}, nil
	}
}

func globalModelEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		global, err := svc.GlobalModel(ctx)
		if err != nil {
			return modelResponse{}, err
		}

		return modelResponse{
			Global: global,
		}, nil
	}
}
