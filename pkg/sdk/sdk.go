package sdk

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type SDK interface {
	// ListAgents lists the registered agents.
	//
	// example:
	//  agentPage, _ := sdk.ListAgents()
	//  fmt.Println(agentPage)
	ListAgents() (AgentPage, error)

	// GetRound gets one round record by index.
	//
	// example:
	//  round, _ := sdk.GetRound(3)
	//  fmt.Println(round)
	GetRound(index int) (Round, error)

	// ListRounds lists round records.
	//
	// example:
	//  roundPage, _ := sdk.ListRounds(0, 10)
	//  fmt.Println(roundPage)
	ListRounds(offset uint64, limit uint64) (RoundPage, error)

	// Leaderboard returns agents ordered by cumulative tournament score.
	//
	// example:
	//  board, _ := sdk.Leaderboard()
	//  fmt.Println(board)
	Leaderboard() ([]Agent, error)

	// GlobalModel returns the current global model snapshot.
	//
	// example:
	//  global, _ := sdk.GlobalModel()
	//  fmt.Println(global.Version)
	GlobalModel() (GlobalModel, error)
}

type orchestratorSDK struct {
	orchestratorURL string
	client          *http.Client
}

type Config struct {
	OrchestratorURL string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &orchestratorSDK{
		orchestratorURL: cfg.OrchestratorURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *orchestratorSDK) processRequest(method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, fmt.Errorf("unexpected response code: %d", resp.StatusCode)
	}

	return body, nil
}
