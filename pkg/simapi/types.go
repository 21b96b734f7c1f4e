// Package simapi holds the wire types shared by the simulation service and
// its clients.
package simapi

const (
	HealthPath        = "/health"
	PresetsPath       = "/api/v1/presets"
	WeightSystemsPath = "/api/v1/weight-systems"
	SimulatePath      = "/api/v1/simulate"
	ScorePath         = "/api/v1/score"
)

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

type Weight struct {
	Factor string  `json:"factor"`
	Value  float64 `json:"value"`
}

// WeightSystem is a named factor weighting. Custom systems sent with
// Normalize set are rescaled to sum to 1 before use.
type WeightSystem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Weights     []Weight `json:"weights"`
	Normalize   bool     `json:"normalize,omitempty"`
}

type Params struct {
	BaseStake          float64 `json:"base_stake"`
	ProjectPool        float64 `json:"project_pool"`
	ReviewsPerCycle    int     `json:"reviews_per_cycle"`
	TotalReviewers     int     `json:"total_reviewers"`
	TokenHoldings      float64 `json:"token_holdings"`
	StartingReputation float64 `json:"starting_reputation"`
	AvgReviewTime      float64 `json:"avg_review_time"`
}

type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Params `json:"params"`
}

type Luck struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SimulateRequest starts from a preset and overrides any field that is set.
// Weights, when present, replace the named weight system.
type SimulateRequest struct {
	Preset       string        `json:"preset,omitempty"`
	WeightSystem string        `json:"weight_system,omitempty"`
	Weights      *WeightSystem `json:"weights,omitempty"`
	GrowthLaw    string        `json:"growth_law,omitempty"`
	RewardModel  string        `json:"reward_model,omitempty"`
	Horizon      int           `json:"horizon,omitempty"`
	Seed         *uint64       `json:"seed,omitempty"`
	Luck         *Luck         `json:"luck,omitempty"`

	BaseStake          *float64 `json:"base_stake,omitempty"`
	ProjectPool        *float64 `json:"project_pool,omitempty"`
	ReviewsPerCycle    *int     `json:"reviews_per_cycle,omitempty"`
	TotalReviewers     *int     `json:"total_reviewers,omitempty"`
	TokenHoldings      *float64 `json:"token_holdings,omitempty"`
	StartingReputation *float64 `json:"starting_reputation,omitempty"`
	AvgReviewTime      *float64 `json:"avg_review_time,omitempty"`
	TotalHoldings      *float64 `json:"total_holdings,omitempty"`
}

type CycleRecord struct {
	Cycle       int     `json:"cycle"`
	Days        int     `json:"days"`
	Balance     float64 `json:"balance"`
	Reputation  float64 `json:"reputation"`
	Reward      float64 `json:"reward"`
	ROI         float64 `json:"roi"`
	GrowthRate  float64 `json:"growth_rate"`
	ShareOfPool float64 `json:"share_of_pool"`
	Weight      float64 `json:"weight"`
}

type Halt struct {
	Reason string `json:"reason"`
	Cycle  int    `json:"cycle"`
	Detail string `json:"detail"`
}

type Summary struct {
	Cycles          int     `json:"cycles"`
	Days            int     `json:"days"`
	FinalBalance    float64 `json:"final_balance"`
	FinalReputation float64 `json:"final_reputation"`
	TotalReward     float64 `json:"total_reward"`
	MeanReward      float64 `json:"mean_reward"`
	RewardStdDev    float64 `json:"reward_std_dev"`
	ROI             float64 `json:"roi"`
}

// SimulateResponse is returned with status 200 for both completed and halted
// runs; Status tells them apart.
type SimulateResponse struct {
	Status         string        `json:"status"`
	Halt           *Halt         `json:"halt,omitempty"`
	InitialBalance float64       `json:"initial_balance"`
	Records        []CycleRecord `json:"records"`
	Summary        Summary       `json:"summary"`
	WeightSystem   string        `json:"weight_system"`
	GrowthLaw      string        `json:"growth_law"`
	RewardModel    string        `json:"reward_model"`
	Cached         bool          `json:"cached"`
}

// ScoreRequest scores one review. SubmissionOrder, when set, places the
// review on a 0..100 time scale instead of using ReviewTime in hours.
type ScoreRequest struct {
	WeightSystem    string        `json:"weight_system,omitempty"`
	Weights         *WeightSystem `json:"weights,omitempty"`
	Stake           float64       `json:"stake"`
	MaxStake        float64       `json:"max_stake"`
	Reputation      float64       `json:"reputation"`
	ReviewTime      float64       `json:"review_time"`
	SubmissionOrder *float64      `json:"submission_order,omitempty"`
	Holdings        float64       `json:"holdings"`
	TotalHoldings   float64       `json:"total_holdings"`
	Certainty       float64       `json:"certainty,omitempty"`
	Vote            float64       `json:"vote,omitempty"`
	OtherVotes      []float64     `json:"other_votes,omitempty"`
}

type Component struct {
	Factor   string  `json:"factor"`
	Weight   float64 `json:"weight"`
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

type ScoreResponse struct {
	System     string      `json:"system"`
	Components []Component `json:"components"`
	Total      float64     `json:"total"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
