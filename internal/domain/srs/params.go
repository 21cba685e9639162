package srs

// easyEaseDelta is the SM-2 ease adjustment q' = 0.1 - (5-q)*(0.08+(5-q)*0.02)
// evaluated once for the Easy tier (q = 3). It is negative: Easy lowers ease by 0.14.
const easyEaseDelta = 0.1 - (5-3)*(0.08+(5-3)*0.02)

// Params defines all configurable parameters for the scheduling algorithm
type Params struct {
	// Floor applied to the ease factor after every update
	MinEaseFactor float64

	// Ease adjustments
	EasyEaseDelta   float64
	HardEasePenalty float64

	// Fixed intervals in days
	FirstInterval  int
	SecondInterval int
	HardInterval   int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEaseFactor   float64
	EasyEaseDelta   float64
	HardEasePenalty float64
	FirstInterval   int
	SecondInterval  int
	HardInterval    int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:   1.3,
		EasyEaseDelta:   easyEaseDelta,
		HardEasePenalty: 0.2,
		FirstInterval:   1,
		SecondInterval:  6,
		HardInterval:    1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.EasyEaseDelta != 0 {
		params.EasyEaseDelta = config.EasyEaseDelta
	}
	if config.HardEasePenalty > 0 {
		params.HardEasePenalty = config.HardEasePenalty
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.HardInterval > 0 {
		params.HardInterval = config.HardInterval
	}

	return params
}
