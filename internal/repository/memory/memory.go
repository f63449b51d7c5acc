// Package memory provides in-memory repositories and a recording event
// publisher for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	placeDomain "github.com/kilat-cab/service-ride/internal/domain/place"
	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	userDomain "github.com/kilat-cab/service-ride/internal/domain/user"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
	"github.com/kilat-cab/service-ride/internal/platform/kafka"
)

// UserRepository is an in-memory user.UserRepository honouring soft deletes.
type UserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsDeleted() {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email && !u.IsDeleted() {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User", email)
}

func (r *UserRepository) FindByIDIncludingDeleted(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) List(_ context.Context, page, limit int) ([]*userDomain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userDomain.User
	for _, u := range r.users {
		if !u.IsDeleted() {
			out = append(out, u)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *UserRepository) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *UserRepository) Update(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return domain.NewNotFoundError("User", u.ID().String())
	}
	r.users[u.ID()] = u
	return nil
}

// RideRepository is an in-memory ride.RideRepository. Listings are newest first.
type RideRepository struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*rideDomain.RideBooking
	order []uuid.UUID
}

func NewRideRepository() *RideRepository {
	return &RideRepository{rides: make(map[uuid.UUID]*rideDomain.RideBooking)}
}

func (r *RideRepository) FindByID(_ context.Context, id uuid.UUID) (*rideDomain.RideBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rides[id]
	if !ok {
		return nil, domain.NewNotFoundError("RideBooking", id.String())
	}
	return rd, nil
}

func (r *RideRepository) FindByPassengerID(_ context.Context, passengerID uuid.UUID, page, limit int) ([]*rideDomain.RideBooking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rideDomain.RideBooking
	for i := len(r.order) - 1; i >= 0; i-- {
		if rd := r.rides[r.order[i]]; rd.PassengerID() == passengerID {
			out = append(out, rd)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *RideRepository) FindOpenByPassengerID(_ context.Context, passengerID uuid.UUID) ([]*rideDomain.RideBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rideDomain.RideBooking
	for _, id := range r.order {
		if rd := r.rides[id]; rd.PassengerID() == passengerID && !rd.Status().IsTerminal() {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (r *RideRepository) ListAll(_ context.Context, page, limit int) ([]*rideDomain.RideBooking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*rideDomain.RideBooking, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rides[id])
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *RideRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, rd := range r.rides {
		counts[rd.Status().String()]++
	}
	return counts, nil
}

func (r *RideRepository) SumPenalties(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, rd := range r.rides {
		if p := rd.CancellationPenalty(); p != nil {
			total += *p
		}
	}
	return total, nil
}

func (r *RideRepository) Save(_ context.Context, rd *rideDomain.RideBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rides[rd.ID()] = rd
	r.order = append(r.order, rd.ID())
	return nil
}

func (r *RideRepository) Update(_ context.Context, rd *rideDomain.RideBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rides[rd.ID()] = rd
	return nil
}

// PlaceRepository is an in-memory place.PlaceRepository.
type PlaceRepository struct {
	mu     sync.Mutex
	places map[uuid.UUID]*placeDomain.SavedPlace
}

func NewPlaceRepository() *PlaceRepository {
	return &PlaceRepository{places: make(map[uuid.UUID]*placeDomain.SavedPlace)}
}

func (r *PlaceRepository) FindByID(_ context.Context, id uuid.UUID) (*placeDomain.SavedPlace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.places[id]
	if !ok {
		return nil, domain.NewNotFoundError("SavedPlace", id.String())
	}
	return p, nil
}

func (r *PlaceRepository) FindByPassengerID(_ context.Context, passengerID uuid.UUID) ([]*placeDomain.SavedPlace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*placeDomain.SavedPlace
	for _, p := range r.places {
		if p.IsOwnedBy(passengerID) && p.IsActive() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out, nil
}

func (r *PlaceRepository) Save(_ context.Context, p *placeDomain.SavedPlace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.places[p.ID()] = p
	return nil
}

func (r *PlaceRepository) Update(_ context.Context, p *placeDomain.SavedPlace) error {
	return r.Save(context.Background(), p)
}

// PublishedEvent is one captured publish call.
type PublishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

// RecordingPublisher captures events instead of sending them to Kafka.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

func (p *RecordingPublisher) PublishEventWithKey(_ context.Context, topic, key string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{Topic: topic, Key: key, Event: ce})
	return nil
}

// Types returns the published event types in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Event.Type
	}
	return out
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
