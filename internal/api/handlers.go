package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/internal/reputation"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(createResponse(simapi.HealthResponse{Status: "ok"}, nil))
}

func (s *Server) handlePresets(c *fiber.Ctx) error {
	presets := config.Presets()
	out := make([]simapi.Preset, len(presets))
	for i, p := range presets {
		out[i] = fromPreset(p)
	}
	return c.JSON(createResponse(out, nil))
}

func (s *Server) handleWeightSystems(c *fiber.Ctx) error {
	systems := scoring.WeightSystems()
	out := make([]simapi.WeightSystem, len(systems))
	for i, ws := range systems {
		out[i] = fromWeightConfig(ws)
	}
	return c.JSON(createResponse(out, nil))
}

func (s *Server) handleSimulate(c *fiber.Ctx) error {
	var req simapi.SimulateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error().Err(err).Str("route", c.Path()).Msg("Failed to parse request body")
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(simapi.SimulateResponse{}, err))
	}

	scenario := ToScenario(req)
	compute := func() (simapi.SimulateResponse, error) {
		return s.simulate(scenario)
	}

	var (
		resp simapi.SimulateResponse
		hit  bool
		err  error
	)
	if s.results != nil && scenario.Deterministic() {
		key, keyErr := s.results.Key("simulate", struct {
			Request  simapi.SimulateRequest `json:"request"`
			Defaults config.SimEnvConfig    `json:"defaults"`
		}{req, s.defaults})
		if keyErr != nil {
			return keyErr
		}
		resp, hit, err = s.results.GetOrCompute(c.UserContext(), key, compute)
	} else {
		resp, err = compute()
	}
	if err != nil {
		if isBadRequest(err) {
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(simapi.SimulateResponse{}, err))
		}
		return err
	}

	resp.Cached = hit
	return c.JSON(createResponse(resp, nil))
}

func (s *Server) simulate(scenario *config.Scenario) (simapi.SimulateResponse, error) {
	params, opts, err := scenario.Resolve(s.defaults)
	if err != nil {
		return simapi.SimulateResponse{}, err
	}
	res, err := simulator.New(opts...).Run(params)
	if err != nil {
		return simapi.SimulateResponse{}, err
	}

	log.Debug().
		Str("status", string(res.Status)).
		Int("cycles", len(res.Records)).
		Msg("Simulation served")
	return FromResult(res), nil
}

func (s *Server) handleScore(c *fiber.Ctx) error {
	var req simapi.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error().Err(err).Str("route", c.Path()).Msg("Failed to parse request body")
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(simapi.ScoreResponse{}, err))
	}

	cfg, opts, in, err := ScoreInputs(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(simapi.ScoreResponse{}, err))
	}
	scorer, err := scoring.NewScorer(cfg, opts...)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(simapi.ScoreResponse{}, err))
	}
	return c.JSON(createResponse(FromBreakdown(scorer.Score(in)), nil))
}

func isBadRequest(err error) bool {
	return errors.Is(err, simulator.ErrInvalidParams) ||
		errors.Is(err, config.ErrUnknownPreset) ||
		errors.Is(err, scoring.ErrUnknownWeightSystem) ||
		errors.Is(err, reputation.ErrUnknownLaw)
}
