package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/suite"

	"github.com/tensorplex-labs/reviewsim/internal/cache"
	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

type ServerSuite struct {
	suite.Suite
	server *Server
	store  *cache.Memory
}

func (s *ServerSuite) SetupTest() {
	s.store = cache.NewMemory()
	results, err := cache.NewResultCache[simapi.SimulateResponse](s.store, time.Minute, "test")
	s.Require().NoError(err)

	s.server = NewServer(
		config.ServerEnvConfig{Address: "127.0.0.1", Port: 0, BodySizeLimit: 1 << 20},
		config.SimEnvConfig{Horizon: 73, CycleLengthDays: 2.84, MaxReputation: 5, Preset: config.PresetCasual},
		WithResultCache(results),
	)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(method, path string, body any, headers map[string]string) *http.Response {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.server.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func decode[T any](s *ServerSuite, resp *http.Response) simapi.StdResponse[T] {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var out simapi.StdResponse[T]
	s.Require().NoError(sonic.Unmarshal(data, &out), string(data))
	return out
}

func ptr[T any](v T) *T { return &v }

func (s *ServerSuite) TestHealth() {
	resp := s.do(http.MethodGet, simapi.HealthPath, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", decode[simapi.HealthResponse](s, resp).Body.Status)
}

func (s *ServerSuite) TestPresets() {
	resp := s.do(http.MethodGet, simapi.PresetsPath, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	body := decode[[]simapi.Preset](s, resp).Body
	s.Require().Len(body, 3)
	s.Equal(config.PresetCasual, body[0].Name)
	s.Equal(100.0, body[0].Params.BaseStake)
}

func (s *ServerSuite) TestWeightSystems() {
	resp := s.do(http.MethodGet, simapi.WeightSystemsPath, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	body := decode[[]simapi.WeightSystem](s, resp).Body
	s.Require().Len(body, 2)
	s.Equal("current", body[0].Name)
	s.Len(body[0].Weights, 5)
	s.Equal("community", body[1].Name)
}

func (s *ServerSuite) TestSimulateCompletes() {
	resp := s.do(http.MethodPost, simapi.SimulatePath, simapi.SimulateRequest{Preset: "casual"}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	out := decode[simapi.SimulateResponse](s, resp)
	s.Nil(out.Error)
	s.Equal("completed", out.Body.Status)
	s.Len(out.Body.Records, 73)
	s.InDelta(600.0, out.Body.Records[0].Reward, 1e-9)
	s.Equal(73, out.Body.Summary.Cycles)
	s.False(out.Body.Cached)
}

func (s *ServerSuite) TestSimulateHaltIsNotAnError() {
	req := simapi.SimulateRequest{Preset: "casual", BaseStake: ptr(500.0)}
	resp := s.do(http.MethodPost, simapi.SimulatePath, req, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	out := decode[simapi.SimulateResponse](s, resp)
	s.Nil(out.Error)
	s.Equal("halted", out.Body.Status)
	s.Require().NotNil(out.Body.Halt)
	s.Equal("insufficient_balance", out.Body.Halt.Reason)
	s.Equal(1, out.Body.Halt.Cycle)
	s.Empty(out.Body.Records)
	s.Equal(1000.0, out.Body.InitialBalance)
	s.Equal(1000.0, out.Body.Summary.FinalBalance)
}

func (s *ServerSuite) TestSimulateInvalidInput() {
	cases := map[string]simapi.SimulateRequest{
		"negative stake":   {BaseStake: ptr(-1.0)},
		"unknown preset":   {Preset: "weekend"},
		"unknown system":   {WeightSystem: "legacy"},
		"unknown law":      {GrowthLaw: "cubic"},
		"luck, no seed":    {Luck: &simapi.Luck{Min: 0.9, Max: 1.1}},
		"no reviewers":     {TotalReviewers: ptr(0)},
		"unknown rewards":  {RewardModel: "bonus"},
		"horizon too long": {Horizon: simulator.MaxHorizon + 1},
		"horizon overflow": {Horizon: 1 << 45},
	}
	for name, req := range cases {
		s.Run(name, func() {
			resp := s.do(http.MethodPost, simapi.SimulatePath, req, nil)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
			out := decode[simapi.SimulateResponse](s, resp)
			s.NotNil(out.Error)
		})
	}
}

func (s *ServerSuite) TestSimulateOversizedHorizonIsNotCached() {
	req := simapi.SimulateRequest{Preset: "casual", Horizon: simulator.MaxHorizon * 4}
	resp := s.do(http.MethodPost, simapi.SimulatePath, req, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Zero(s.store.Len())

	req.Horizon = simulator.MaxHorizon
	out := decode[simapi.SimulateResponse](s, s.do(http.MethodPost, simapi.SimulatePath, req, nil))
	s.Equal("completed", out.Body.Status)
	s.Len(out.Body.Records, simulator.MaxHorizon)
}

func (s *ServerSuite) TestSimulateMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, simapi.SimulatePath, bytes.NewReader([]byte("{")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.server.App.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestSimulateCachesDeterministicRequests() {
	req := simapi.SimulateRequest{Preset: "dedicated", Seed: ptr(uint64(9)), Luck: &simapi.Luck{Min: 0.8, Max: 1.2}}

	first := decode[simapi.SimulateResponse](s, s.do(http.MethodPost, simapi.SimulatePath, req, nil)).Body
	second := decode[simapi.SimulateResponse](s, s.do(http.MethodPost, simapi.SimulatePath, req, nil)).Body

	s.False(first.Cached)
	s.True(second.Cached)
	s.Equal(first.Records, second.Records)
	s.Equal(1, s.store.Len())
}

func (s *ServerSuite) TestCustomWeightsHalt() {
	req := simapi.SimulateRequest{Weights: &simapi.WeightSystem{
		Weights: []simapi.Weight{{Factor: "stake", Value: 0.5}},
	}}
	out := decode[simapi.SimulateResponse](s, s.do(http.MethodPost, simapi.SimulatePath, req, nil))
	s.Equal("halted", out.Body.Status)
	s.Equal("invalid_weight_configuration", out.Body.Halt.Reason)
	s.Equal("custom", out.Body.WeightSystem)
}

func (s *ServerSuite) TestCustomWeightsNormalized() {
	weights := &simapi.WeightSystem{
		Weights:   []simapi.Weight{{Factor: "stake", Value: 4}, {Factor: "reputation", Value: 4}},
		Normalize: true,
	}
	out := decode[simapi.SimulateResponse](s, s.do(http.MethodPost, simapi.SimulatePath, simapi.SimulateRequest{Weights: weights}, nil))
	s.Equal("completed", out.Body.Status)
	s.Equal("custom", out.Body.WeightSystem)
	s.Len(out.Body.Records, 73)

	req := simapi.ScoreRequest{
		Weights: &simapi.WeightSystem{Weights: []simapi.Weight{{Factor: "stake", Value: 2}}, Normalize: true},
		Stake:   100, MaxStake: 500, Reputation: 1, ReviewTime: 12,
	}
	resp := s.do(http.MethodPost, simapi.ScorePath, req, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	body := decode[simapi.ScoreResponse](s, resp).Body
	s.Require().Len(body.Components, 1)
	s.InDelta(1.0, body.Components[0].Weight, 1e-12)
	s.InDelta(0.2, body.Total, 1e-12)
}

func (s *ServerSuite) TestScore() {
	req := simapi.ScoreRequest{
		Stake: 100, MaxStake: 500, Reputation: 1, ReviewTime: 12, Holdings: 1000, TotalHoldings: 5000,
	}
	resp := s.do(http.MethodPost, simapi.ScorePath, req, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	body := decode[simapi.ScoreResponse](s, resp).Body
	s.Equal("current", body.System)
	s.Len(body.Components, 5)
	s.InDelta(0.345, body.Total, 1e-12)
}

func (s *ServerSuite) TestScoreSubmissionOrder() {
	req := simapi.ScoreRequest{
		Stake: 100, MaxStake: 500, Reputation: 1, Holdings: 1000, TotalHoldings: 5000,
		SubmissionOrder: ptr(100.0),
	}
	body := decode[simapi.ScoreResponse](s, s.do(http.MethodPost, simapi.ScorePath, req, nil)).Body
	for _, c := range body.Components {
		if c.Factor == "timing" {
			s.InDelta(0.001, c.Raw, 1e-12)
		}
	}

	req.SubmissionOrder = ptr(101.0)
	resp := s.do(http.MethodPost, simapi.ScorePath, req, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestScoreRejectsBadInput() {
	resp := s.do(http.MethodPost, simapi.ScorePath, simapi.ScoreRequest{Stake: -5}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, simapi.ScorePath, simapi.ScoreRequest{
		Weights: &simapi.WeightSystem{Weights: []simapi.Weight{{Factor: "stake", Value: 2}}},
	}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestZstdRoundTrip() {
	enc, err := zstd.NewWriter(nil)
	s.Require().NoError(err)
	payload, err := sonic.Marshal(simapi.SimulateRequest{Preset: "casual", Horizon: 5})
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, simapi.SimulatePath, bytes.NewReader(enc.EncodeAll(payload, nil)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderContentEncoding, "zstd")
	req.Header.Set(fiber.HeaderAcceptEncoding, "zstd")

	resp, err := s.server.App.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("zstd", resp.Header.Get(fiber.HeaderContentEncoding))

	compressed, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	dec, err := zstd.NewReader(nil)
	s.Require().NoError(err)
	data, err := dec.DecodeAll(compressed, nil)
	s.Require().NoError(err)

	var out simapi.StdResponse[simapi.SimulateResponse]
	s.Require().NoError(sonic.Unmarshal(data, &out))
	s.Len(out.Body.Records, 5)
}

func (s *ServerSuite) TestZstdBadBody() {
	req := httptest.NewRequest(http.MethodPost, simapi.SimulatePath, bytes.NewReader([]byte("plain")))
	req.Header.Set(fiber.HeaderContentEncoding, "zstd")
	resp, err := s.server.App.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
