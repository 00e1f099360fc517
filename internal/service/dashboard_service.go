package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ops-dashboard/internal/analytics"
	"ops-dashboard/internal/models"
)

// DashboardService orchestrates every write: validation, persistence, data
// version bump and change event.
type DashboardService struct {
	store    Store
	cache    Cache
	events   *eventPublisher
	eventLog EventLog
	logger   *zap.Logger
	now      func() time.Time
}

func NewDashboardService(
	store Store,
	cache Cache,
	publisher Publisher,
	eventLog EventLog,
	subjectPrefix string,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		store:    store,
		cache:    cache,
		events:   &eventPublisher{conn: publisher, prefix: subjectPrefix, logger: logger},
		eventLog: eventLog,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DashboardService) today() models.Date {
	return models.DateOf(s.now())
}

// touch moves the data version so memoized aggregations are recomputed and
// drops the cached copies of the given projects.
func (s *DashboardService) touch(ctx context.Context, projectIDs ...int) {
	if _, err := s.cache.BumpVersion(ctx, projectIDs...); err != nil {
		s.logger.Warn("failed to bump data version", zap.Ints("project_ids", projectIDs), zap.Error(err))
	}
}

func (s *DashboardService) ListEngineers(ctx context.Context) ([]models.Engineer, error) {
	return s.store.ListEngineers(ctx)
}

func (s *DashboardService) GetEngineer(ctx context.Context, id int) (*models.Engineer, error) {
	return s.store.GetEngineer(ctx, id)
}

func (s *DashboardService) CreateEngineer(ctx context.Context, e *models.Engineer) error {
	if e.TotalHours == 0 {
		e.TotalHours = models.DefaultTotalHours
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateEngineer(ctx, e); err != nil {
		return err
	}
	if e.NonProjectTime == nil {
		e.NonProjectTime = []models.NonProjectTime{}
	}

	s.touch(ctx)
	s.events.publish(EntityEngineer, ActionCreated, e.ID, 0, e)
	return nil
}

func (s *DashboardService) UpdateEngineer(ctx context.Context, id int, patch models.EngineerPatch) (*models.Engineer, error) {
	e, err := s.store.GetEngineer(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(e)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	// Projects carry the engineer's name as owner and on tasks and assignments.
	affected, err := s.engineerProjects(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateEngineer(ctx, e); err != nil {
		return nil, err
	}

	s.touch(ctx, affected...)
	s.events.publish(EntityEngineer, ActionUpdated, e.ID, 0, e)
	return e, nil
}

// DeleteEngineer clears the engineer from owned projects and drops their
// tasks and assignments.
func (s *DashboardService) DeleteEngineer(ctx context.Context, id int) error {
	affected, err := s.engineerProjects(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEngineer(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, affected...)
	s.events.publish(EntityEngineer, ActionDeleted, id, 0, nil)
	return nil
}

// engineerProjects returns the projects that own, task or assign engineer id.
func (s *DashboardService) engineerProjects(ctx context.Context, id int) ([]int, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, p := range projects {
		if references(p, id) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func references(p models.Project, engineerID int) bool {
	if p.OwnerID != nil && *p.OwnerID == engineerID {
		return true
	}
	for _, t := range p.Tasks {
		if t.EngineerID == engineerID {
			return true
		}
	}
	for _, m := range p.Milestones {
		for _, a := range m.Assignments {
			if a.EngineerID == engineerID {
				return true
			}
		}
	}
	return false
}

func (s *DashboardService) AddNonProjectTime(ctx context.Context, engineerID int, n *models.NonProjectTime) error {
	if _, err := s.store.GetEngineer(ctx, engineerID); err != nil {
		return err
	}
	n.EngineerID = engineerID
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateNonProjectTime(ctx, n); err != nil {
		return err
	}

	s.touch(ctx)
	s.events.publish(EntityNonProjectTime, ActionCreated, n.ID, 0, n)
	return nil
}

func (s *DashboardService) UpdateNonProjectTime(ctx context.Context, engineerID, id int, patch models.NonProjectTimePatch) (*models.NonProjectTime, error) {
	n, err := s.store.GetNonProjectTime(ctx, engineerID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(n)
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateNonProjectTime(ctx, n); err != nil {
		return nil, err
	}

	s.touch(ctx)
	s.events.publish(EntityNonProjectTime, ActionUpdated, n.ID, 0, n)
	return n, nil
}

func (s *DashboardService) DeleteNonProjectTime(ctx context.Context, engineerID, id int) error {
	if err := s.store.DeleteNonProjectTime(ctx, engineerID, id); err != nil {
		return err
	}

	s.touch(ctx)
	s.events.publish(EntityNonProjectTime, ActionDeleted, id, 0, nil)
	return nil
}

// ListProjects returns the projects passing f.
func (s *DashboardService) ListProjects(ctx context.Context, f analytics.Filter) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(projects), nil
}

// GetProject reads through the project cache.
func (s *DashboardService) GetProject(ctx context.Context, id int) (*models.Project, error) {
	cached, err := s.cache.GetProject(ctx, id)
	if err != nil {
		s.logger.Warn("project cache read failed", zap.Int("project_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetProject(ctx, p); err != nil {
		s.logger.Warn("failed to cache project", zap.Int("project_id", id), zap.Error(err))
	}
	return p, nil
}

func (s *DashboardService) CreateProject(ctx context.Context, p *models.Project) error {
	p.Defaults()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.resolveOwner(ctx, p); err != nil {
		return err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return err
	}

	created, err := s.store.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created

	s.touch(ctx, p.ID)
	s.events.publish(EntityProject, ActionCreated, p.ID, p.ID, p)
	return nil
}

func (s *DashboardService) UpdateProject(ctx context.Context, id int, patch models.ProjectPatch) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := patch.Apply(p)
	switch {
	case patch.OwnerID.Set && patch.OwnerID.Value != nil:
		if err := s.resolveOwner(ctx, p); err != nil {
			return nil, err
		}
	case patch.OwnerID.Set:
		p.Owner = models.UnassignedOwner
	case patch.Owner != nil:
		if err := s.reassignOwner(ctx, p, *patch.Owner); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProject(ctx, p, changes); err != nil {
		return nil, err
	}

	updated, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, id)
	s.events.publish(EntityProject, ActionUpdated, id, id, changes)
	return updated, nil
}

func (s *DashboardService) DeleteProject(ctx context.Context, id int) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, id)
	s.events.publish(EntityProject, ActionDeleted, id, id, nil)
	return nil
}

// resolveOwner fills OwnerID from the owner name, or the name from the id.
// An unknown owner name leaves the project unowned.
func (s *DashboardService) resolveOwner(ctx context.Context, p *models.Project) error {
	if p.OwnerID != nil {
		e, err := s.store.GetEngineer(ctx, *p.OwnerID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ValidationErrors{{Field: "ownerId", Message: "owner not found"}}
			}
			return err
		}
		p.Owner = e.Name
		return nil
	}
	if p.Owner == "" || p.Owner == models.UnassignedOwner {
		p.Owner = models.UnassignedOwner
		return nil
	}
	e, err := s.store.FindEngineerByName(ctx, p.Owner)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			p.Owner = models.UnassignedOwner
			return nil
		}
		return err
	}
	p.OwnerID = &e.ID
	return nil
}

// reassignOwner changes the owner by name on update. "Unassigned" clears the
// owner; an unknown name keeps the current one.
func (s *DashboardService) reassignOwner(ctx context.Context, p *models.Project, name string) error {
	if name == "" || name == models.UnassignedOwner {
		p.OwnerID = nil
		p.Owner = models.UnassignedOwner
		return nil
	}
	e, err := s.store.FindEngineerByName(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	p.OwnerID = &e.ID
	p.Owner = e.Name
	return nil
}

// ProjectEvents returns the project's logged change events, newest first.
func (s *DashboardService) ProjectEvents(ctx context.Context, projectID, limit int) ([]models.ChangeEvent, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	if s.eventLog == nil {
		return []models.ChangeEvent{}, nil
	}
	return s.eventLog.ListEvents(ctx, projectID, limit)
}
