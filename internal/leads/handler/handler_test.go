package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/leads/assignment"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/intake"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/review"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs every service with in-memory slices.
type memStore struct {
	mu         sync.Mutex
	leads      []domain.Lead
	duplicates []domain.DuplicateRecord
	team       []domain.Telecaller
}

func (m *memStore) FetchExistingLeads(_ context.Context, managerID uuid.UUID) ([]domain.ExistingLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ExistingLead, 0, len(m.leads))
	for _, l := range m.leads {
		if l.ManagerID != managerID {
			continue
		}
		email := ""
		if l.Email != nil {
			email = *l.Email
		}
		out = append(out, domain.ExistingLead{ID: l.ID, ManagerID: l.ManagerID, AssignedTo: l.AssignedTo, Phone: l.Phone, Email: email, Status: l.Status})
	}
	return out, nil
}

func (m *memStore) InsertLeads(_ context.Context, _ uuid.UUID, leads []domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads = append(m.leads, leads...)
	return nil
}

func (m *memStore) InsertDuplicates(_ context.Context, dups []domain.DuplicateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duplicates = append(m.duplicates, dups...)
	return nil
}

func (m *memStore) InsertLead(ctx context.Context, lead domain.Lead) error {
	return m.InsertLeads(ctx, lead.ManagerID, []domain.Lead{lead})
}

func (m *memStore) ListTelecallers(context.Context, uuid.UUID) ([]domain.Telecaller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Telecaller, 0, len(m.team))
	for _, t := range m.team {
		if !t.IsPaused {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) SetTelecallerPaused(_ context.Context, managerID, telecallerID uuid.UUID, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.team {
		if m.team[i].ID == telecallerID && m.team[i].ManagerID == managerID {
			m.team[i].IsPaused = paused
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) UpdateLeadAssignment(_ context.Context, _, leadID, telecallerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.leads {
		if m.leads[i].ID == leadID {
			id := telecallerID
			m.leads[i].AssignedTo = &id
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) ListLeadSummaries(_ context.Context, _ uuid.UUID, assignedTo *uuid.UUID) ([]domain.LeadSummary, error) {
	out := make([]domain.LeadSummary, 0)
	for _, l := range m.leads {
		if assignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *assignedTo) {
			continue
		}
		out = append(out, domain.LeadSummary{ID: l.ID, Phone: l.Phone, Status: l.Status, CreatedAt: l.CreatedAt.Format(time.RFC3339)})
	}
	return out, nil
}

func (m *memStore) CountDuplicates(context.Context, uuid.UUID) (int, error) {
	return len(m.duplicates), nil
}

func (m *memStore) CountLeadsByTelecaller(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	return map[uuid.UUID]int{}, nil
}

func (m *memStore) ListDuplicates(context.Context, uuid.UUID) ([]domain.DuplicateRecord, error) {
	return m.duplicates, nil
}

func (m *memStore) GetDuplicate(_ context.Context, _, id uuid.UUID) (domain.DuplicateRecord, error) {
	for _, d := range m.duplicates {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.DuplicateRecord{}, repository.ErrNotFound
}

func (m *memStore) DeleteDuplicate(_ context.Context, _, id uuid.UUID) error {
	for i, d := range m.duplicates {
		if d.ID == id {
			m.duplicates = append(m.duplicates[:i], m.duplicates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) ListLeads(_ context.Context, _ uuid.UUID, assignedTo *uuid.UUID) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, l := range m.leads {
		if assignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *assignedTo) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) ListUnassigned(context.Context, uuid.UUID, repository.PoolFilter) ([]domain.Lead, error) {
	return m.ListLeads(context.Background(), uuid.Nil, nil)
}

func (m *memStore) PoolFilterOptions(context.Context, uuid.UUID) (repository.FilterOptions, error) {
	return repository.FilterOptions{Cities: []string{"Pune"}}, nil
}

type fakeQueue struct {
	payload scheduler.LeadImportPayload
}

func (f *fakeQueue) EnqueueLeadImport(_ context.Context, payload scheduler.LeadImportPayload) (string, error) {
	f.payload = payload
	return "task-1", nil
}

type testEnv struct {
	store   *memStore
	router  *gin.Engine
	manager httpkit.Scope
}

func newTestEnv(t *testing.T, queue scheduler.ImportQueue, scope *httpkit.Scope) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	managerID := uuid.New()
	env := &testEnv{
		store:   &memStore{},
		manager: httpkit.Scope{CallerID: managerID, ManagerID: managerID, Role: httpkit.RoleManager},
	}
	if scope == nil {
		scope = &env.manager
	}

	h := New(Services{
		Intake:     intake.New(env.store, nil, nil),
		Assignment: assignment.New(env.store, assignment.NewMemoryStore(time.Hour), nil, nil, "", 4),
		Dashboard:  dashboard.New(env.store, nil),
		Review:     review.New(env.store, nil, nil),
		Leads:      env.store,
		Queue:      queue,
	}, validator.New("IN"), nil)

	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(httpkit.ContextScopeKey, *scope)
		c.Next()
	})
	h.RegisterRoutes(api)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestImportSynchronous(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	body := []byte(`{"rows": [
		{"name": "Asha", "phone": 9876543210},
		{"name": "Asha again", "phone": "98765-43210"},
		{"name": "No phone"}
	]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp["inserted"])
	assert.EqualValues(t, 1, resp["batchSkipped"])
	assert.EqualValues(t, 1, resp["rejected"])
	require.Len(t, env.store.leads, 1)
	assert.Equal(t, "9876543210", env.store.leads[0].Phone)
}

func TestImportAsyncNeedsQueue(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/leads/import?async=true", map[string]any{"rows": []map[string]string{{"phone": "1"}}})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestImportAsyncEnqueues(t *testing.T) {
	queue := &fakeQueue{}
	env := newTestEnv(t, queue, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/leads/import?async=true", map[string]any{"rows": []map[string]string{{"phone": "1"}}})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, env.manager.ManagerID.String(), queue.payload.ManagerID)
	assert.Len(t, queue.payload.Rows, 1)
	assert.Empty(t, env.store.leads)
}

func TestTelecallerCannotImport(t *testing.T) {
	scope := httpkit.Scope{CallerID: uuid.New(), ManagerID: uuid.New(), Role: httpkit.RoleTelecaller}
	env := newTestEnv(t, nil, &scope)

	rec := env.do(t, http.MethodPost, "/api/v1/leads/import", map[string]any{"rows": []map[string]string{{"phone": "1"}}})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDistributeErrorMapping(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	leadID := uuid.New()

	rec := env.do(t, http.MethodPost, "/api/v1/assignment/distribute", map[string]any{"leadIds": []uuid.UUID{leadID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.store.team = []domain.Telecaller{{ID: uuid.New()}}
	rec = env.do(t, http.MethodPost, "/api/v1/assignment/distribute", map[string]any{"leadIds": []uuid.UUID{leadID}, "policy": "by_availability"})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestDistributeReportsPerLeadFailures(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	telecaller := domain.Telecaller{ID: uuid.New()}
	env.store.team = []domain.Telecaller{telecaller}
	existing := domain.Lead{ID: uuid.New(), ManagerID: env.manager.ManagerID, Phone: "1", Status: domain.StatusNew}
	env.store.leads = []domain.Lead{existing}

	rec := env.do(t, http.MethodPost, "/api/v1/assignment/distribute", map[string]any{"leadIds": []uuid.UUID{existing.ID, uuid.New()}})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Assigned []map[string]any `json:"assigned"`
		Failed   []map[string]any `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Assigned, 1)
	assert.Len(t, resp.Failed, 1)
	assert.Equal(t, telecaller.ID, *env.store.leads[0].AssignedTo)
}

func TestManualFormAssignsTelecallerToSelf(t *testing.T) {
	scope := httpkit.Scope{CallerID: uuid.New(), ManagerID: uuid.New(), Role: httpkit.RoleTelecaller}
	env := newTestEnv(t, nil, &scope)

	rec := env.do(t, http.MethodPost, "/api/v1/leads", map[string]any{
		"name":       "Ravi",
		"phone":      "+91 98765 43210",
		"source":     "Walk-in",
		"notes":      "<b>call after 6</b>",
		"assignedTo": uuid.New(),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.store.leads, 1)
	lead := env.store.leads[0]
	assert.Equal(t, scope.CallerID, *lead.AssignedTo)
	assert.Equal(t, scope.ManagerID, lead.ManagerID)
	require.NotNil(t, lead.Notes)
	assert.Equal(t, "call after 6", *lead.Notes)
	assert.NotContains(t, lead.CustomFields, "notes")
}

func TestManualFormRejectsImplausiblePhone(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/leads", map[string]any{"name": "Ravi", "phone": "12", "source": "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.leads)
}

func TestDashboardHidesQuarantineFromTelecaller(t *testing.T) {
	scope := httpkit.Scope{CallerID: uuid.New(), ManagerID: uuid.New(), Role: httpkit.RoleTelecaller}
	env := newTestEnv(t, nil, &scope)
	env.store.duplicates = []domain.DuplicateRecord{{ID: uuid.New()}}

	rec := env.do(t, http.MethodGet, "/api/v1/leads/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "quarantinedDuplicates")
	assert.Contains(t, resp, "repeatedPhones")
}

func TestPromoteDuplicateEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	telecaller := domain.Telecaller{ID: uuid.New()}
	env.store.team = []domain.Telecaller{telecaller}
	dup := domain.DuplicateRecord{ID: uuid.New(), ManagerID: env.manager.ManagerID, OriginalLeadID: uuid.New(), Phone: "1", Status: domain.StatusDuplicate}
	env.store.duplicates = []domain.DuplicateRecord{dup}

	rec := env.do(t, http.MethodPost, "/api/v1/duplicates/"+dup.ID.String()+"/promote", map[string]any{"telecallerId": telecaller.ID})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, env.store.duplicates)
	require.Len(t, env.store.leads, 1)
	assert.Equal(t, domain.StatusNew, env.store.leads[0].Status)

	rec = env.do(t, http.MethodPost, "/api/v1/duplicates/"+dup.ID.String()+"/ignore", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManagerPausesTelecaller(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	paused := domain.Telecaller{ID: uuid.New(), ManagerID: env.manager.ManagerID, FullName: "A"}
	active := domain.Telecaller{ID: uuid.New(), ManagerID: env.manager.ManagerID, FullName: "B"}
	env.store.team = []domain.Telecaller{paused, active}

	rec := env.do(t, http.MethodPatch, "/api/v1/team/telecallers/"+paused.ID.String()+"/paused", map[string]any{"paused": true})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.True(t, env.store.team[0].IsPaused)

	rec = env.do(t, http.MethodGet, "/api/v1/assignment/availability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Telecallers []struct {
			TelecallerID uuid.UUID `json:"telecallerId"`
		} `json:"telecallers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Telecallers, 1)
	assert.Equal(t, active.ID, resp.Telecallers[0].TelecallerID)

	rec = env.do(t, http.MethodPatch, "/api/v1/team/telecallers/"+paused.ID.String()+"/paused", map[string]any{"paused": false})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, env.store.team[0].IsPaused)
}

func TestPauseTelecallerOfAnotherTeamIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	other := domain.Telecaller{ID: uuid.New(), ManagerID: uuid.New()}
	env.store.team = []domain.Telecaller{other}

	rec := env.do(t, http.MethodPatch, "/api/v1/team/telecallers/"+other.ID.String()+"/paused", map[string]any{"paused": true})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.store.team[0].IsPaused)
}

func TestPauseTelecallerRequiresPausedField(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPatch, "/api/v1/team/telecallers/"+uuid.NewString()+"/paused", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTelecallerCannotPauseTeammates(t *testing.T) {
	scope := httpkit.Scope{CallerID: uuid.New(), ManagerID: uuid.New(), Role: httpkit.RoleTelecaller}
	env := newTestEnv(t, nil, &scope)
	mate := domain.Telecaller{ID: uuid.New(), ManagerID: scope.ManagerID}
	env.store.team = []domain.Telecaller{mate}

	rec := env.do(t, http.MethodPatch, "/api/v1/team/telecallers/"+mate.ID.String()+"/paused", map[string]any{"paused": true})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.store.team[0].IsPaused)
}
