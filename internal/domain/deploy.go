package domain

// Asset names a deployable simulated intervention.
type Asset string

const (
	AssetAerostat Asset = "aerostat"
	AssetDrone    Asset = "drone"
)

// Stage returns the escalation level the asset drives while deployed.
func (a Asset) Stage() int {
	switch a {
	case AssetAerostat:
		return StageAerostat
	case AssetDrone:
		return StageDrone
	default:
		return StageBaseline
	}
}

// Valid reports whether the asset is one of the two known deployables.
func (a Asset) Valid() bool {
	return a == AssetAerostat || a == AssetDrone
}

// AssetState is the deployment status of one asset.
type AssetState string

const (
	AssetIdle   AssetState = "idle"
	AssetActive AssetState = "active"
)

// DeployState maps each asset to its independent deployment status.
type DeployState map[Asset]AssetState

// DefaultDeployState returns both assets idle, the process-start default.
func DefaultDeployState() DeployState {
	return DeployState{
		AssetAerostat: AssetIdle,
		AssetDrone:    AssetIdle,
	}
}

// Clone returns an independent copy.
func (d DeployState) Clone() DeployState {
	out := make(DeployState, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
