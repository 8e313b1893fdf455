package db

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

type (
	// MemoryRepository is a Repository kept in process, for local runs and tests.
	MemoryRepository struct {
		submissions *submissionTable
		lines       *lineTable

		// FailLineInserts makes InsertPayrollLines fail with the given error.
		FailLineInserts error
	}

	submissionTable struct {
		t     map[uuid.UUID]model.Submission
		mutex sync.RWMutex
	}

	lineTable struct {
		t     map[uuid.UUID][]model.PayrollLine
		mutex sync.RWMutex
	}
)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		submissions: &submissionTable{t: make(map[uuid.UUID]model.Submission)},
		lines:       &lineTable{t: make(map[uuid.UUID][]model.PayrollLine)},
	}
}

func (m *MemoryRepository) CreateSubmission(_ context.Context, s *model.Submission) error {
	m.submissions.mutex.Lock()
	defer m.submissions.mutex.Unlock()

	m.submissions.t[s.ID] = *s
	return nil
}

func (m *MemoryRepository) UpdateSubmission(_ context.Context, s *model.Submission) error {
	m.submissions.mutex.Lock()
	defer m.submissions.mutex.Unlock()

	if _, ok := m.submissions.t[s.ID]; !ok {
		return errors.ErrSubmissionNotFound
	}
	m.submissions.t[s.ID] = *s
	return nil
}

func (m *MemoryRepository) GetSubmission(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	m.submissions.mutex.RLock()
	defer m.submissions.mutex.RUnlock()

	s, ok := m.submissions.t[id]
	if !ok {
		return nil, errors.ErrSubmissionNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) ListSubmissions(_ context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	m.submissions.mutex.RLock()
	defer m.submissions.mutex.RUnlock()

	var out []model.Submission
	for _, s := range m.submissions.t {
		if filter.SchoolID != nil && s.SchoolID != *filter.SchoolID {
			continue
		}
		if filter.Period != "" && s.Period != filter.Period {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PayrollType != "" && s.PayrollType != filter.PayrollType {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) DeleteSubmission(_ context.Context, id uuid.UUID) error {
	m.submissions.mutex.Lock()
	delete(m.submissions.t, id)
	m.submissions.mutex.Unlock()

	m.lines.mutex.Lock()
	delete(m.lines.t, id)
	m.lines.mutex.Unlock()
	return nil
}

func (m *MemoryRepository) HasClosedSubmission(_ context.Context, schoolID uuid.UUID, period string, payrollType model.PayrollType, exclude uuid.UUID) (bool, error) {
	m.submissions.mutex.RLock()
	defer m.submissions.mutex.RUnlock()

	for id, s := range m.submissions.t {
		if id != exclude && s.SchoolID == schoolID && s.Period == period &&
			s.PayrollType == payrollType && s.Status == model.SubmissionClosed {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) InsertPayrollLines(_ context.Context, lines []model.PayrollLine) error {
	if m.FailLineInserts != nil {
		return m.FailLineInserts
	}

	m.lines.mutex.Lock()
	defer m.lines.mutex.Unlock()

	for _, l := range lines {
		m.lines.t[l.SubmissionID] = append(m.lines.t[l.SubmissionID], l)
	}
	return nil
}

func (m *MemoryRepository) GetPayrollLines(_ context.Context, submissionID uuid.UUID) ([]model.PayrollLine, error) {
	m.lines.mutex.RLock()
	defer m.lines.mutex.RUnlock()

	out := append([]model.PayrollLine(nil), m.lines.t[submissionID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out, nil
}

func (m *MemoryRepository) GetClosedPayrollLines(ctx context.Context, period string) ([]model.PayrollLine, error) {
	closed, err := m.ListSubmissions(ctx, model.SubmissionFilter{Period: period, Status: model.SubmissionClosed})
	if err != nil {
		return nil, err
	}

	var out []model.PayrollLine
	for _, s := range closed {
		lines, _ := m.GetPayrollLines(ctx, s.ID)
		out = append(out, lines...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := deref(out[i].InstitutionCode), deref(out[j].InstitutionCode)
		if a != b {
			return a < b
		}
		return deref(out[i].RegistryNumber) < deref(out[j].RegistryNumber)
	})
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
