// Package memory implements domain.Store in process memory for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

type metricKey struct {
	userID string
	day    time.Time
}

// Store keeps every table in maps guarded by one RWMutex.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	metrics     map[metricKey]domain.DailyMetric
	insights    map[string]domain.Insight
	goals       map[string]domain.Goal
	members     map[string]domain.TeamMemberProfile
	devices     map[string]domain.Device
	experiments map[string]domain.Experiment
	benchmarks  map[string]domain.ExperimentBenchmark
	runs        map[string]domain.ExperimentTestRun
	activity    []domain.ActivityLog
	outbox      []domain.OutboxEvent
}

var _ domain.Store = (*Store)(nil)

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		metrics:     make(map[metricKey]domain.DailyMetric),
		insights:    make(map[string]domain.Insight),
		goals:       make(map[string]domain.Goal),
		members:     make(map[string]domain.TeamMemberProfile),
		devices:     make(map[string]domain.Device),
		experiments: make(map[string]domain.Experiment),
		benchmarks:  make(map[string]domain.ExperimentBenchmark),
		runs:        make(map[string]domain.ExperimentTestRun),
	}
}

// OutboxEvents returns a copy of every event recorded so far.
func (s *Store) OutboxEvents() []domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxEvent(nil), s.outbox...)
}

// UpsertUser implements domain.UserRepository. Users are matched on GitHub ID.
func (s *Store) UpsertUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.users {
		if existing.GitHubID != user.GitHubID {
			continue
		}
		existing.Login = user.Login
		existing.Name = user.Name
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		existing.Role = user.Role
		existing.UpdatedAt = user.UpdatedAt
		if len(user.SealedToken) > 0 {
			existing.SealedToken = user.SealedToken
		}
		s.users[id] = existing
		out := existing
		return &out, nil
	}

	s.users[user.ID] = user
	out := user
	return &out, nil
}

// GetUser implements domain.UserRepository.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ListUsers implements domain.UserRepository.
func (s *Store) ListUsers(_ context.Context, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListUsersWithTokens implements domain.UserRepository.
func (s *Store) ListUsersWithTokens(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, u := range s.users {
		if len(u.SealedToken) > 0 {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}

// DeleteUser implements domain.UserRepository, cascading to every owned row.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for k := range s.metrics {
		if k.userID == id {
			delete(s.metrics, k)
		}
	}
	for k, v := range s.insights {
		if v.UserID == id {
			delete(s.insights, k)
		}
	}
	for k, v := range s.goals {
		if v.UserID == id {
			delete(s.goals, k)
		}
	}
	for k, v := range s.members {
		if v.OwnerID == id {
			delete(s.members, k)
		}
	}
	for k, v := range s.devices {
		if v.UserID == id {
			delete(s.devices, k)
		}
	}
	for k, v := range s.experiments {
		if v.UserID == id {
			s.deleteExperimentLocked(k)
		}
	}
	kept := s.activity[:0]
	for _, a := range s.activity {
		if a.UserID != id {
			kept = append(kept, a)
		}
	}
	s.activity = kept
	return nil
}

// MarkSynced implements domain.UserRepository.
func (s *Store) MarkSynced(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	at = at.UTC()
	u.LastSyncedAt = &at
	s.users[id] = u
	return nil
}

// UpsertDailyMetrics implements domain.MetricRepository.
func (s *Store) UpsertDailyMetrics(_ context.Context, userID string, metrics []domain.DailyMetric, entry domain.ActivityLog, events []domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range metrics {
		m.UserID = userID
		m.Date = domain.DayStart(m.Date)
		key := metricKey{userID: userID, day: m.Date}
		if existing, ok := s.metrics[key]; ok {
			m.FocusMinutes = existing.FocusMinutes
		}
		s.metrics[key] = m
	}
	if entry.ID != "" {
		s.activity = append(s.activity, entry)
	}
	s.outbox = append(s.outbox, events...)
	return nil
}

// ListDailyMetrics implements domain.MetricRepository.
func (s *Store) ListDailyMetrics(_ context.Context, userID string, from, to time.Time) ([]domain.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from, to = domain.DayStart(from), domain.DayStart(to)
	out := make([]domain.DailyMetric, 0)
	for k, m := range s.metrics {
		if k.userID == userID && !k.day.Before(from) && !k.day.After(to) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// AddFocusMinutes implements domain.MetricRepository.
func (s *Store) AddFocusMinutes(_ context.Context, userID string, day time.Time, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := metricKey{userID: userID, day: domain.DayStart(day)}
	m, ok := s.metrics[key]
	if !ok {
		m = domain.DailyMetric{UserID: userID, Date: key.day}
	}
	m.FocusMinutes += minutes
	s.metrics[key] = m
	return nil
}

// ReplaceInsights implements domain.InsightRepository. Dismissed rows are kept.
func (s *Store) ReplaceInsights(_ context.Context, userID string, insights []domain.Insight, events []domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, in := range s.insights {
		if in.UserID == userID && !in.Dismissed {
			delete(s.insights, id)
		}
	}
	for _, in := range insights {
		in.UserID = userID
		s.insights[in.ID] = in
	}
	s.outbox = append(s.outbox, events...)
	return nil
}

// ListInsights implements domain.InsightRepository.
func (s *Store) ListInsights(_ context.Context, userID string, includeDismissed bool) ([]domain.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Insight, 0)
	for _, in := range s.insights {
		if in.UserID != userID || (in.Dismissed && !includeDismissed) {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DismissInsight implements domain.InsightRepository.
func (s *Store) DismissInsight(_ context.Context, userID, insightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.insights[insightID]
	if !ok || in.UserID != userID {
		return domain.ErrNotFound
	}
	in.Dismissed = true
	s.insights[insightID] = in
	return nil
}

// CreateGoal implements domain.GoalRepository.
func (s *Store) CreateGoal(_ context.Context, goal domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goal.ID] = goal
	return nil
}

// UpdateGoal implements domain.GoalRepository.
func (s *Store) UpdateGoal(_ context.Context, goal domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return domain.ErrNotFound
	}
	s.goals[goal.ID] = goal
	return nil
}

// GetGoal implements domain.GoalRepository.
func (s *Store) GetGoal(_ context.Context, userID, goalID string) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, nil
	}
	return &g, nil
}

// ListGoals implements domain.GoalRepository.
func (s *Store) ListGoals(_ context.Context, userID string) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteGoal implements domain.GoalRepository.
func (s *Store) DeleteGoal(_ context.Context, userID, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.goals, goalID)
	return nil
}

// AddMember implements domain.TeamRepository. Logins are unique per owner regardless of case.
func (s *Store) AddMember(_ context.Context, member domain.TeamMemberProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.OwnerID == member.OwnerID && strings.EqualFold(m.Login, member.Login) {
			return domain.ErrConflict
		}
	}
	s.members[member.ID] = member
	return nil
}

// RemoveMember implements domain.TeamRepository.
func (s *Store) RemoveMember(_ context.Context, ownerID, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.members {
		if m.OwnerID == ownerID && strings.EqualFold(m.Login, login) {
			delete(s.members, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListMembers implements domain.TeamRepository.
func (s *Store) ListMembers(_ context.Context, ownerID string) ([]domain.TeamMemberProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TeamMemberProfile, 0)
	for _, m := range s.members {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Login < out[j].Login
	})
	return out, nil
}

// UpsertDevice implements domain.DeviceRepository.
func (s *Store) UpsertDevice(_ context.Context, device domain.Device) (*domain.Device, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.devices {
		if d.UserID == device.UserID && d.Fingerprint == device.Fingerprint {
			d.LastSeenAt = device.LastSeenAt
			if device.Name != "" {
				d.Name = device.Name
			}
			s.devices[id] = d
			out := d
			return &out, false, nil
		}
	}
	s.devices[device.ID] = device
	out := device
	return &out, true, nil
}

// GetDevice implements domain.DeviceRepository.
func (s *Store) GetDevice(_ context.Context, userID, deviceID string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return &d, nil
}

// ListDevices implements domain.DeviceRepository.
func (s *Store) ListDevices(_ context.Context, userID string) ([]domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Device, 0)
	for _, d := range s.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	return out, nil
}

// TouchDevice implements domain.DeviceRepository.
func (s *Store) TouchDevice(_ context.Context, userID, deviceID string, at time.Time) error {
	return s.updateDevice(userID, deviceID, func(d *domain.Device) { d.LastSeenAt = at })
}

// SetDeviceTrusted implements domain.DeviceRepository.
func (s *Store) SetDeviceTrusted(_ context.Context, userID, deviceID string, trusted bool) error {
	return s.updateDevice(userID, deviceID, func(d *domain.Device) { d.Trusted = trusted })
}

func (s *Store) updateDevice(userID, deviceID string, fn func(*domain.Device)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok || d.UserID != userID {
		return domain.ErrNotFound
	}
	fn(&d)
	s.devices[deviceID] = d
	return nil
}

// DeleteDevice implements domain.DeviceRepository.
func (s *Store) DeleteDevice(_ context.Context, userID, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok || d.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.devices, deviceID)
	return nil
}

// CreateExperiment implements domain.ExperimentRepository.
func (s *Store) CreateExperiment(_ context.Context, exp domain.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp.Benchmarks = nil
	s.experiments[exp.ID] = exp
	return nil
}

// UpdateExperiment implements domain.ExperimentRepository.
func (s *Store) UpdateExperiment(_ context.Context, exp domain.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.experiments[exp.ID]
	if !ok || existing.UserID != exp.UserID {
		return domain.ErrNotFound
	}
	exp.Benchmarks = nil
	s.experiments[exp.ID] = exp
	return nil
}

// GetExperiment implements domain.ExperimentRepository, populating benchmarks.
func (s *Store) GetExperiment(_ context.Context, userID, experimentID string) (*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.experiments[experimentID]
	if !ok || exp.UserID != userID {
		return nil, nil
	}
	exp.Benchmarks = s.benchmarksLocked(exp.ID)
	return &exp, nil
}

// ListExperiments implements domain.ExperimentRepository.
func (s *Store) ListExperiments(_ context.Context, userID string) ([]domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Experiment, 0)
	for _, exp := range s.experiments {
		if exp.UserID == userID {
			exp.Benchmarks = s.benchmarksLocked(exp.ID)
			out = append(out, exp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteExperiment implements domain.ExperimentRepository.
func (s *Store) DeleteExperiment(_ context.Context, userID, experimentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.experiments[experimentID]
	if !ok || exp.UserID != userID {
		return domain.ErrNotFound
	}
	s.deleteExperimentLocked(experimentID)
	return nil
}

func (s *Store) deleteExperimentLocked(experimentID string) {
	delete(s.experiments, experimentID)
	for id, b := range s.benchmarks {
		if b.ExperimentID == experimentID {
			delete(s.benchmarks, id)
		}
	}
	for id, r := range s.runs {
		if r.ExperimentID == experimentID {
			delete(s.runs, id)
		}
	}
}

func (s *Store) benchmarksLocked(experimentID string) []domain.ExperimentBenchmark {
	out := make([]domain.ExperimentBenchmark, 0)
	for _, b := range s.benchmarks {
		if b.ExperimentID == experimentID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddBenchmark implements domain.ExperimentRepository.
func (s *Store) AddBenchmark(_ context.Context, benchmark domain.ExperimentBenchmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.experiments[benchmark.ExperimentID]; !ok {
		return domain.ErrNotFound
	}
	s.benchmarks[benchmark.ID] = benchmark
	return nil
}

// AddTestRun implements domain.ExperimentRepository.
func (s *Store) AddTestRun(_ context.Context, run domain.ExperimentTestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.benchmarks[run.BenchmarkID]
	if !ok || b.ExperimentID != run.ExperimentID {
		return domain.ErrNotFound
	}
	s.runs[run.ID] = run
	return nil
}

// ListTestRuns implements domain.ExperimentRepository.
func (s *Store) ListTestRuns(_ context.Context, experimentID string) ([]domain.ExperimentTestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExperimentTestRun, 0)
	for _, r := range s.runs {
		if r.ExperimentID == experimentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RanAt.Before(out[j].RanAt) })
	return out, nil
}

// AppendActivity implements domain.ActivityRepository.
// Entries with an id already present are ignored.
func (s *Store) AppendActivity(_ context.Context, entry domain.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.activity {
		if existing.ID == entry.ID {
			return nil
		}
	}
	s.activity = append(s.activity, entry)
	return nil
}

// ListActivity implements domain.ActivityRepository.
func (s *Store) ListActivity(_ context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityLog, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]domain.ActivityLog, 0)
	for _, a := range s.activity {
		if a.UserID != userID {
			continue
		}
		if cursor != nil && !before(a, *cursor) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	if limit <= 0 || len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	return page, &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

// before reports whether a sorts after the cursor in newest-first order.
func before(a domain.ActivityLog, c domain.Cursor) bool {
	if a.CreatedAt.Equal(c.CreatedAt) {
		return a.ID < c.ID
	}
	return a.CreatedAt.Before(c.CreatedAt)
}

// Stats implements domain.StatsRepository.
func (s *Store) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		Users:        len(s.users),
		DailyMetrics: len(s.metrics),
		Insights:     len(s.insights),
		Goals:        len(s.goals),
		TeamMembers:  len(s.members),
		Devices:      len(s.devices),
		Experiments:  len(s.experiments),
		ActivityLogs: len(s.activity),
	}, nil
}
