package ports

import "github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"

// Collector streams hardware readings from a field transport (OPC UA
// gateways, serial relays, simulators) into the ingestion path.
type Collector interface {
	Start(out chan<- domain.HardwareReading) error
	Stop() error
}
