package stage

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/registry"
)

// Derived-field keys introduced by stage effects. Stage 2 models the aerostat
// cloud-environment scan, stage 3 the drone burst probes.
const (
	KeyRadarDBZ       = "cloud_env_radar_dbz"
	KeyEchoTop        = "cloud_env_echo_top"
	KeyMoistureColumn = "cloud_env_moisture_column"
	KeyConvectiveCoef = "cloud_env_ctc"

	KeyDBZGrowth     = "burst_dbz_growth"
	KeyRainfallBurst = "burst_rainfall_burst"
	KeyVerticalWind  = "micro_vertical_wind"
)

// effectField is one bounded-uniform accumulator increment.
type effectField struct {
	key  string
	base float64
	lo   float64
	hi   float64
}

var stage2Fields = []effectField{
	{KeyRadarDBZ, 5, 8, 18},
	{KeyEchoTop, 5000, 500, 1200},
	{KeyMoistureColumn, 20, 3, 7},
	{KeyConvectiveCoef, 0, 0.2, 0.8},
}

var stage3Fields = []effectField{
	{KeyDBZGrowth, 0, 5, 22},
	{KeyRainfallBurst, 0, 10, 40},
	{KeyVerticalWind, 0, 0.5, 4},
}

// Risk increment draw ranges per asset.
var riskDraw = map[domain.Asset][2]float64{
	domain.AssetAerostat: {12, 28},
	domain.AssetDrone:    {20, 35},
}

// Engine applies and reverts simulated escalation effects across all non-real
// nodes. Each activate call applies fresh random increments, modelling
// continuous drift while an asset stays deployed. Deactivation only resets
// the stage scalar; accumulated derived fields persist as residual readings.
type Engine struct {
	reg *registry.Registry
	rng *rand.Rand
}

// New builds a stage engine over the given registry. A nil rng gets a
// time-seeded source; tests pass a fixed seed for reproducible draws.
func New(reg *registry.Registry, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{reg: reg, rng: rng}
}

// Apply toggles one asset's effects for every non-real node and returns the
// updated snapshot of those nodes.
func (e *Engine) Apply(asset domain.Asset, activate bool) (map[string]domain.Node, error) {
	var fields []effectField
	switch asset {
	case domain.AssetAerostat:
		fields = stage2Fields
	case domain.AssetDrone:
		fields = stage3Fields
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAsset, asset)
	}

	draw := riskDraw[asset]
	snap := e.reg.MutateSimulated(func(id string, n *domain.Node) {
		if !activate {
			n.Stage = domain.StageBaseline
			return
		}
		n.Stage = asset.Stage()
		for _, f := range fields {
			accumulate(n, f.key, f.base, e.uniform(f.lo, f.hi))
		}
		n.Risk += e.uniform(draw[0], draw[1])
	})
	return snap, nil
}

// Drift applies a small bounded perturbation to every simulated node's raw
// sensor readings, the periodic tick that keeps simulated telemetry moving.
func (e *Engine) Drift() map[string]domain.Node {
	return e.reg.MutateSimulated(func(id string, n *domain.Node) {
		nudge(n.Temperature, e.uniform(-0.4, 0.4), -40, 60)
		nudge(n.Pressure, e.uniform(-0.8, 0.8), 850, 1100)
		nudge(n.Humidity, e.uniform(-1.5, 1.5), 0, 100)
		nudge(n.RainfallMM, e.uniform(0, 0.6), 0, 500)
		nudge(n.WindSpeed, e.uniform(-0.5, 0.5), 0, 120)
	})
}

// uniform draws from [lo, hi). Callers run inside the registry critical
// section, which also serializes access to the rng.
func (e *Engine) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

func accumulate(n *domain.Node, key string, base, delta float64) {
	if n.Derived == nil {
		n.Derived = make(map[string]float64)
	}
	if _, ok := n.Derived[key]; !ok {
		n.Derived[key] = base
	}
	n.Derived[key] += delta
}

func nudge(field *float64, delta, lo, hi float64) {
	if field == nil {
		return
	}
	v := *field + delta
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	*field = v
}
