package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/settings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockEscalator struct {
	mock.Mock
}

func (m *mockEscalator) EscalationCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]complaint.Complaint, error) {
	args := m.Called(ctx, olderThan, limit)
	c, _ := args.Get(0).([]complaint.Complaint)
	return c, args.Error(1)
}

func (m *mockEscalator) UpdateFields(ctx context.Context, id uuid.UUID, actor common.Actor, req complaint.UpdateFieldsRequest) (*complaint.Complaint, error) {
	args := m.Called(ctx, id, actor, req)
	c, _ := args.Get(0).(*complaint.Complaint)
	return c, args.Error(1)
}

type stubSettings struct {
	current settings.Settings
	err     error
}

func (s *stubSettings) Get(ctx context.Context) (*settings.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := s.current
	return &cp, nil
}

func candidate() complaint.Complaint {
	var c complaint.Complaint
	c.ID = uuid.New()
	return c
}

func TestEscalationJob_DisabledDoesNothing(t *testing.T) {
	esc := new(mockEscalator)
	job := NewEscalationJob(esc, &stubSettings{current: settings.Defaults()}, zap.NewNop(), &config.Config{})

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	esc.AssertNotCalled(t, "EscalationCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestEscalationJob_EscalatesCandidates(t *testing.T) {
	esc := new(mockEscalator)
	current := settings.Defaults()
	current.AutoEscalationEnabled = true
	current.EscalationThresholdHours = 72
	job := NewEscalationJob(esc, &stubSettings{current: current}, zap.NewNop(), &config.Config{})

	first, second := candidate(), candidate()
	esc.On("EscalationCandidates", mock.Anything, 72*time.Hour, EscalationBatchSize).
		Return([]complaint.Complaint{first, second}, nil).Once()
	esc.On("UpdateFields", mock.Anything, first.ID, common.SystemActor, mock.MatchedBy(func(req complaint.UpdateFieldsRequest) bool {
		return req.Priority != nil && *req.Priority == "High" && req.Category == nil
	})).Return(&complaint.Complaint{}, nil).Once()
	esc.On("UpdateFields", mock.Anything, second.ID, common.SystemActor, mock.Anything).
		Return(nil, errors.New("row vanished")).Once()

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	esc.AssertExpectations(t)
}

func TestEscalationJob_SettingsError(t *testing.T) {
	job := NewEscalationJob(new(mockEscalator), &stubSettings{err: errors.New("db down")}, zap.NewNop(), &config.Config{})
	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestEscalationJob_SetupRejectsBadSchedule(t *testing.T) {
	job := NewEscalationJob(new(mockEscalator), &stubSettings{}, zap.NewNop(), &config.Config{EscalationJobSchedule: "every tuesday"})
	assert.Error(t, job.SetupAndStart())

	idle := NewEscalationJob(new(mockEscalator), &stubSettings{}, zap.NewNop(), &config.Config{})
	assert.NoError(t, idle.SetupAndStart())
	idle.Stop()
}

func TestCronLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("wake", "now", "t0", "dangling")
	l.Error(errors.New("boom"), "panic", "entry", 3)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "t0", entries[0].ContextMap()["now"])
	assert.Equal(t, "MISSING_VALUE", entries[0].ContextMap()["dangling"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
