package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rescuegrid/backend/internal/db"
	"github.com/rescuegrid/backend/internal/models"
)

// fakeStore mirrors the persistence contract in memory, including the
// conditional vehicle claim and the transactional composites.
type fakeStore struct {
	mu          sync.Mutex
	incidents   map[int64]models.Incident
	vehicles    map[int64]models.Vehicle
	assignments map[int64]models.Assignment
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		incidents:   map[int64]models.Incident{},
		vehicles:    map[int64]models.Vehicle{},
		assignments: map[int64]models.Assignment{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateIncident(_ context.Context, inc models.Incident) (models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc.ID = f.id()
	f.incidents[inc.ID] = inc
	return inc, nil
}

func (f *fakeStore) GetIncident(_ context.Context, id int64) (models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return models.Incident{}, db.ErrNotFound
	}
	return inc, nil
}

func (f *fakeStore) ListIncidents(_ context.Context) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range f.incidents {
		out = append(out, inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListIncidentsByStatus(_ context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range f.incidents {
		if inc.Status == status {
			out = append(out, inc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListReportedIncidentsByPriority(_ context.Context, severityWeight float64, now time.Time) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range f.incidents {
		if inc.Status == models.IncidentReported {
			out = append(out, inc)
		}
	}
	score := func(inc models.Incident) float64 {
		return float64(inc.Severity)*severityWeight + now.Sub(inc.ReportedAt).Minutes()
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := score(out[i]), score(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) SetIncidentStatus(_ context.Context, id int64, status models.IncidentStatus, assignedAt, resolvedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return db.ErrNotFound
	}
	inc.Status = status
	if assignedAt != nil {
		inc.AssignedAt = assignedAt
	}
	if resolvedAt != nil {
		inc.ResolvedAt = resolvedAt
	}
	f.incidents[id] = inc
	return nil
}

func (f *fakeStore) SetIncidentSeverity(_ context.Context, id int64, severity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return db.ErrNotFound
	}
	inc.Severity = severity
	f.incidents[id] = inc
	return nil
}

func (f *fakeStore) DeleteIncident(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.incidents[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.incidents, id)
	for aid, a := range f.assignments {
		if a.IncidentID == id {
			delete(f.assignments, aid)
		}
	}
	return nil
}

func (f *fakeStore) CreateVehicle(_ context.Context, v models.Vehicle) (models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.id()
	f.vehicles[v.ID] = v
	return v, nil
}

func (f *fakeStore) GetVehicle(_ context.Context, id int64) (models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return models.Vehicle{}, db.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) ListVehicles(_ context.Context) ([]models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListAvailableVehiclesByType(_ context.Context, vtype models.VehicleType) ([]models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range f.vehicles {
		if v.Status == models.VehicleAvailable && v.Type == vtype {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SetVehiclePosition(_ context.Context, id int64, lat, lon float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return db.ErrNotFound
	}
	v.Latitude = lat
	v.Longitude = lon
	v.LastUpdated = at
	f.vehicles[id] = v
	return nil
}

func (f *fakeStore) SetVehicleStatus(_ context.Context, id int64, status models.VehicleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return db.ErrNotFound
	}
	v.Status = status
	f.vehicles[id] = v
	return nil
}

func (f *fakeStore) GetAssignment(_ context.Context, id int64) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, db.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) ListAssignments(_ context.Context) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range f.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListAssignmentsByStatus(_ context.Context, status models.AssignmentStatus) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range f.assignments {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListActiveAssignmentsByVehicle(_ context.Context, vehicleID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range f.assignments {
		if a.VehicleID == vehicleID && !a.Status.Terminal() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListAssignmentsByIncident(_ context.Context, incidentID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range f.assignments {
		if a.IncidentID == incidentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, a models.Assignment) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.vehicles[a.VehicleID]
	if !ok {
		return models.Assignment{}, db.ErrNotFound
	}
	if v.Status != models.VehicleAvailable {
		return models.Assignment{}, db.ErrVehicleUnavailable
	}
	inc, ok := f.incidents[a.IncidentID]
	if !ok {
		return models.Assignment{}, db.ErrNotFound
	}

	v.Status = models.VehicleOnRoute
	f.vehicles[v.ID] = v

	a.ID = f.id()
	f.assignments[a.ID] = a

	at := a.AssignedAt
	inc.Status = models.IncidentAssigned
	inc.AssignedAt = &at
	f.incidents[inc.ID] = inc
	return a, nil
}

func (f *fakeStore) SaveAssignment(_ context.Context, a models.Assignment, vehicleStatus *models.VehicleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[a.ID]; !ok {
		return db.ErrNotFound
	}
	f.assignments[a.ID] = a
	if vehicleStatus != nil {
		v, ok := f.vehicles[a.VehicleID]
		if !ok {
			return db.ErrNotFound
		}
		v.Status = *vehicleStatus
		f.vehicles[v.ID] = v
	}
	return nil
}

func (f *fakeStore) ReassignVehicle(_ context.Context, assignmentID, oldVehicleID, newVehicleID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	newV, ok := f.vehicles[newVehicleID]
	if !ok {
		return db.ErrNotFound
	}
	if newV.Status != models.VehicleAvailable {
		return db.ErrVehicleUnavailable
	}
	a, ok := f.assignments[assignmentID]
	if !ok {
		return db.ErrNotFound
	}

	newV.Status = models.VehicleOnRoute
	f.vehicles[newVehicleID] = newV

	if oldV, ok := f.vehicles[oldVehicleID]; ok {
		oldV.Status = models.VehicleAvailable
		f.vehicles[oldVehicleID] = oldV
	}

	a.VehicleID = newVehicleID
	a.AssignedAt = at
	a.AcceptedAt = nil
	a.ArrivedAt = nil
	a.Status = models.AssignmentAssigned
	f.assignments[assignmentID] = a
	return nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier captures broadcast topics.
type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Notify(_ context.Context, topic string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
	return nil
}

func (n *recordingNotifier) count(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, t := range n.topics {
		if t == topic {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) seen(topic string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, t := range n.topics {
		if t == topic {
			return true
		}
	}
	return false
}
