package models

import "time"

type ServiceType string

const (
	ServiceMedical ServiceType = "MEDICAL"
	ServiceFire    ServiceType = "FIRE"
	ServicePolice  ServiceType = "POLICE"
)

type VehicleType string

const (
	VehicleAmbulance VehicleType = "AMBULANCE"
	VehicleFireTruck VehicleType = "FIRE_TRUCK"
	VehiclePoliceCar VehicleType = "POLICE_CAR"
)

// VehicleTypeFor maps an incident's service type to the vehicle type that can
// respond to it.
func VehicleTypeFor(s ServiceType) (VehicleType, bool) {
	switch s {
	case ServiceMedical:
		return VehicleAmbulance, true
	case ServiceFire:
		return VehicleFireTruck, true
	case ServicePolice:
		return VehiclePoliceCar, true
	}
	return "", false
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleOnRoute     VehicleStatus = "ON_ROUTE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
)

type IncidentStatus string

const (
	IncidentReported  IncidentStatus = "REPORTED"
	IncidentAccepted  IncidentStatus = "ACCEPTED"
	IncidentAssigned  IncidentStatus = "ASSIGNED"
	IncidentResolved  IncidentStatus = "RESOLVED"
	IncidentCancelled IncidentStatus = "CANCELLED"
)

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentEnroute   AssignmentStatus = "ENROUTE"
	AssignmentArrived   AssignmentStatus = "ARRIVED"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

// Terminal reports whether the assignment can no longer change.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

type Incident struct {
	ID          int64          `json:"id"`
	ServiceType ServiceType    `json:"service_type"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Address     string         `json:"address,omitempty"`
	Severity    int            `json:"severity"`
	Status      IncidentStatus `json:"status"`
	ReportedAt  time.Time      `json:"reported_at"`
	AssignedAt  *time.Time     `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	ReportedBy  string         `json:"reported_by,omitempty"`
	Description string         `json:"description,omitempty"`
}

type Vehicle struct {
	ID                 int64         `json:"id"`
	RegistrationNumber string        `json:"registration_number"`
	Type               VehicleType   `json:"type"`
	Capacity           int           `json:"capacity"`
	Status             VehicleStatus `json:"status"`
	Latitude           float64       `json:"latitude"`
	Longitude          float64       `json:"longitude"`
	LastUpdated        time.Time     `json:"last_updated"`
}

type Assignment struct {
	ID          int64            `json:"id"`
	IncidentID  int64            `json:"incident_id"`
	VehicleID   int64            `json:"vehicle_id"`
	AssignedBy  string           `json:"assigned_by"`
	Status      AssignmentStatus `json:"status"`
	AssignedAt  time.Time        `json:"assigned_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
	ArrivedAt   *time.Time       `json:"arrived_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Position is a vehicle's most recent coordinates in the hot cache.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Point is a single route waypoint.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Route is the ephemeral, cache-only path a vehicle is simulated along. It is
// never persisted to durable storage.
type Route struct {
	VehicleID int64         `json:"vehicle_id"`
	Points    []Point       `json:"points"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}
