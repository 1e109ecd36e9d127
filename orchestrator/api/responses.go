package api

import (
	"net/http"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/orchestrator"
	"github.com/cairo-thws/fedt4t/pkg/api"
)

var (
	_ api.Response = (*agentsResponse)(nil)
	_ api.Response = (*roundResponse)(nil)
	_ api.Response = (*listRoundsResponse)(nil)
	_ api.Response = (*leaderboardResponse)(nil)
	_ api.Response = (*modelResponse)(nil)
)

type agentsResponse struct {
	agent.AgentPage
}

func (a agentsResponse) Code() int {
	return http.StatusOK
}

func (a agentsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (a agentsResponse) Empty() bool {
	return false
}

type roundResponse struct {
	orchestrator.Round
}

func (r roundResponse) Code() int {
	return http.StatusOK
}

func (r roundResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r roundResponse) Empty() bool {
	return false
}

type listRoundsResponse struct {
	orchestrator.RoundPage
}

func (l listRoundsResponse) Code() int {
	return http.StatusOK
}

func (l listRoundsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (l listRoundsResponse) Empty() bool {
	return false
}

type leaderboardResponse struct {
	Leaderboard []agent.Agent `json:"leaderboard"`
}

func (l leaderboardResponse) Code() int {
	return http.StatusOK
}

func (l leaderboardResponse) Headers() map[string]string {
	return map[string]string{}
}

func (l leaderboardResponse) Empty() bool {
	return false
}

type modelResponse struct {
	model.Global
}

func (m modelResponse) Code() int {
	return http.StatusOK
}

func (m modelResponse) Headers() map[string]string {
	return map[string]string{}
}

func (m modelResponse) Empty() bool {
	return false
}
