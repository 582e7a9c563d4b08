package domain

import "time"

type CarStatus string

const (
	CarStatusAvailable     CarStatus = "AVAILABLE"
	CarStatusDisabled      CarStatus = "DISABLED"
	CarStatusInMaintenance CarStatus = "IN_MAINTENANCE"
)

type CarCategory string

const (
	CategoryEconomy CarCategory = "ECONOMY"
	CategoryCompact CarCategory = "COMPACT"
	CategorySUV     CarCategory = "SUV"
	CategoryLuxury  CarCategory = "LUXURY"
	CategoryVan     CarCategory = "VAN"
)

type Car struct {
	ID            int64
	LicensePlate  string
	Brand         string
	Model         string
	Category      CarCategory
	BranchID      int64
	Status        CarStatus
	BaseDailyRate float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Operational reports whether the car can be handed out at all, regardless of
// any window overlap.
func (c *Car) Operational() bool {
	return c.Status != CarStatusDisabled && c.Status != CarStatusInMaintenance
}

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "SCHEDULED"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenanceStatus = "COMPLETED"
)
