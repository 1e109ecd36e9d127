package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	agentsEndpoint      = "/agents"
	roundsEndpoint      = "/rounds"
	leaderboardEndpoint = "/leaderboard"
	modelEndpoint       = "/model"
)

type Agent struct {
	ID              int     `json:"id"`
	Name            string  `json:"name,omitempty"`
	Strategy        string  `json:"strategy"`
	ConnState       uint8   `json:"conn_state"`
	CumulativeScore float64 `json:"cumulative_score"`
	LastSeenRound   int     `json:"last_seen_round"`
}

type AgentPage struct {
	Total  uint64  `json:"total"`
	Agents []Agent `json:"agents"`
}

type Round struct {
	ID           string             `json:"id"`
	Index        int                `json:"index"`
	State        uint8              `json:"state"`
	Selected     []int              `json:"selected_agents"`
	Weights      map[int]float64    `json:"aggregation_weights,omitempty"`
	ModelVersion int                `json:"model_version"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Failures     map[int]string     `json:"failures,omitempty"`
	Leaderboard  []Agent            `json:"leaderboard,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

type RoundPage struct {
	Offset uint64  `json:"offset"`
	Limit  uint64  `json:"limit"`
	Total  uint64  `json:"total"`
	Rounds []Round `json:"rounds"`
}

type GlobalModel struct {
	Version    int         `json:"version"`
	Parameters [][]float64 `json:"parameters"`
}

func (sdk *orchestratorSDK) ListAgents() (AgentPage, error) {
	url := sdk.orchestratorURL + agentsEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return AgentPage{}, err
	}

	var page AgentPage
	if err := json.Unmarshal(body, &page); err != nil {
		return AgentPage{}, err
	}

	return page, nil
}

func (sdk *orchestratorSDK) GetRound(index int) (Round, error) {
	url := fmt.Sprintf("%s%s/%d", sdk.orchestratorURL, roundsEndpoint, index)

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return Round{}, err
	}

	var r Round
	if err := json.Unmarshal(body, &r); err != nil {
		return Round{}, err
	}

	return r, nil
}

func (sdk *orchestratorSDK) ListRounds(offset, limit uint64) (RoundPage, error) {
	queries := make([]string, 0)
	if offset > 0 {
		queries = append(queries, fmt.Sprintf("offset=%d", offset))
	}
	if limit > 0 {
		queries = append(queries, fmt.Sprintf("limit=%d", limit))
	}
	url := sdk.orchestratorURL + roundsEndpoint
	if len(queries) > 0 {
		url += "?" + strings.Join(queries, "&")
	}

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return RoundPage{}, err
	}

	var page RoundPage
	if err := json.Unmarshal(body, &page); err != nil {
		return RoundPage{}, err
	}

	return page, nil
}

func (sdk *orchestratorSDK) Leaderboard() ([]Agent, error) {
	url := sdk.orchestratorURL + leaderboardEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Leaderboard []Agent `json:"leaderboard"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	return resp.Leaderboard, nil
}

func (sdk *orchestratorSDK) GlobalModel() (GlobalModel, error) {
	url := sdk.orchestratorURL + modelEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return GlobalModel{}, err
	}

	var g GlobalModel
	if err := json.Unmarshal(body, &g); err != nil {
		return GlobalModel{}, err
	}

	return g, nil
}
