package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/petcare/appointment-service/internal/appointment"
)

type fakeRepo struct {
	seq   int
	items map[string]appointment.Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]appointment.Appointment{}}
}

func (r *fakeRepo) Insert(ctx context.Context, a appointment.Appointment) (*appointment.Appointment, error) {
	r.seq++
	a.ID = fmt.Sprintf("appt-%d", r.seq)
	r.items[a.ID] = a
	out := a
	return &out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *fakeRepo) List(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, error) {
	out := make([]appointment.Appointment, 0)
	for _, a := range r.items {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.PetID != "" && (a.PetID == nil || *a.PetID != f.PetID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, p appointment.Patch, now time.Time) (*appointment.Appointment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if p.Owner != nil {
		a.Owner = p.Owner
	}
	if p.Phone != nil {
		a.Phone = p.Phone
	}
	if p.PetName != nil {
		a.PetName = p.PetName
	}
	if p.PetType != nil {
		a.PetType = p.PetType
	}
	if p.Service != nil {
		a.Service = p.Service
	}
	if p.Date != nil {
		a.Date = p.Date
	}
	if p.Time != nil {
		a.Time = p.Time
	}
	if p.Vet != nil {
		a.Vet = p.Vet
	}
	if p.PetID != nil {
		a.PetID = p.PetID
	}
	if p.VetName != nil {
		a.VetName = p.VetName
	}
	if p.Reason != nil {
		a.Reason = p.Reason
	}
	if p.ScheduledAt != nil {
		a.ScheduledAt = p.ScheduledAt
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	a.UpdatedAt = now
	r.items[id] = a
	return &a, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id, status string, now time.Time) (*appointment.Appointment, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = status
	a.UpdatedAt = now
	r.items[id] = a
	return &a, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeRegistry struct {
	pets map[string]bool
}

func (f *fakeRegistry) Exists(ctx context.Context, petID string) (bool, error) {
	return f.pets[petID], nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestServer(t *testing.T, repo *fakeRepo, reg *fakeRegistry) *httptest.Server {
	t.Helper()
	svc := appointment.NewService(repo, reg)
	ts := httptest.NewServer(NewRouter(RouterConfig{
		Service: svc,
		DB:      okPinger{},
		Env:     "test",
		Version: "test",
	}))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, decoded
}

func TestBookingLifecycle(t *testing.T) {
	repo := newFakeRepo()
	ts := newTestServer(t, repo, &fakeRegistry{})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{
		"owner":   "Jane",
		"petName": "Rex",
		"service": "Grooming",
		"date":    "2024-01-10",
		"time":    "10:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %v)", resp.StatusCode, body)
	}
	if body["status"] != "pending" || body["vet"] != "Any Available Vet" || body["phone"] != "" {
		t.Fatalf("walk-in defaults missing: %v", body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("created record has no id: %v", body)
	}

	// Round-trip: an immediate GET returns the created record.
	resp, got := doJSON(t, http.MethodGet, ts.URL+"/appointments/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	if got["owner"] != "Jane" || got["createdAt"] != body["createdAt"] {
		t.Fatalf("round-trip mismatch: created %v, fetched %v", body, got)
	}

	resp, patched := doJSON(t, http.MethodPatch, ts.URL+"/appointments/"+id+"/status", map[string]any{"status": "done"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", resp.StatusCode)
	}
	if patched["status"] != "done" || patched["owner"] != "Jane" {
		t.Fatalf("status change must touch only status: %v", patched)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/appointments/"+id, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/appointments/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestCreate_LegacyInvalidPet(t *testing.T) {
	repo := newFakeRepo()
	ts := newTestServer(t, repo, &fakeRegistry{pets: map[string]bool{}})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{
		"petId":       "ghost",
		"vetName":     "Dr. Chen",
		"scheduledAt": "2026-03-05T10:00:00Z",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "invalid petId: pet not found" {
		t.Fatalf("error body = %v", body)
	}
	if len(repo.items) != 0 {
		t.Fatalf("rejected create must not persist, found %d records", len(repo.items))
	}
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	ts := newTestServer(t, newFakeRepo(), &fakeRegistry{})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{"owner": "Jane"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "required fields missing" {
		t.Fatalf("error body = %v", body)
	}
}

func TestUpdate_InvalidPetRef(t *testing.T) {
	repo := newFakeRepo()
	reg := &fakeRegistry{pets: map[string]bool{"pet-1": true}}
	ts := newTestServer(t, repo, reg)

	_, created := doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{
		"petId":       "pet-1",
		"vetName":     "Dr. Chen",
		"scheduledAt": "2026-03-05T10:00:00Z",
	})
	id := created["id"].(string)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/appointments/"+id, map[string]any{"petId": "ghost"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// On a nonexistent record the 404 wins over the bad reference.
	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/appointments/missing", map[string]any{"petId": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	resp, merged := doJSON(t, http.MethodPut, ts.URL+"/appointments/"+id, map[string]any{"status": "confirmed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if merged["status"] != "confirmed" || merged["vetName"] != "Dr. Chen" {
		t.Fatalf("merge result wrong: %v", merged)
	}
}

func TestPatchStatus_Validation(t *testing.T) {
	ts := newTestServer(t, newFakeRepo(), &fakeRegistry{})

	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/appointments/any/status", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "status is required" {
		t.Fatalf("error body = %v", body)
	}

	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/appointments/missing/status", map[string]any{"status": "done"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != "appointment not found" {
		t.Fatalf("error body = %v", body)
	}
}

func TestList_FilterPassthrough(t *testing.T) {
	repo := newFakeRepo()
	reg := &fakeRegistry{pets: map[string]bool{"pet-1": true, "pet-2": true}}
	ts := newTestServer(t, repo, reg)

	for _, p := range []struct{ pet, status string }{
		{"pet-1", "completed"},
		{"pet-2", "completed"},
		{"pet-1", "scheduled"},
	} {
		doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{
			"petId":       p.pet,
			"vetName":     "Dr. Chen",
			"scheduledAt": "2026-03-05T10:00:00Z",
			"status":      p.status,
		})
	}

	resp, err := http.Get(ts.URL + "/appointments?status=completed&petId=pet-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()

	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0]["petId"] != "pet-1" || items[0]["status"] != "completed" {
		t.Fatalf("combined filter result wrong: %v", items)
	}
}

func TestStatsEndpoint(t *testing.T) {
	repo := newFakeRepo()
	reg := &fakeRegistry{pets: map[string]bool{"pet-1": true}}
	ts := newTestServer(t, repo, reg)

	for _, status := range []string{"Completed", "completed", "pending"} {
		doJSON(t, http.MethodPost, ts.URL+"/appointments", map[string]any{
			"petId":       "pet-1",
			"vetName":     "Dr. Chen",
			"scheduledAt": "2026-03-05T10:00:00Z",
			"status":      status,
		})
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/appointments/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if body["total"].(float64) != 3 {
		t.Fatalf("total = %v, want 3", body["total"])
	}
	byStatus := body["byStatus"].(map[string]any)
	if byStatus["completed"].(float64) != 2 || byStatus["pending"].(float64) != 1 {
		t.Fatalf("byStatus = %v", byStatus)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, newFakeRepo(), &fakeRegistry{})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" || body["service"] != "appointment-service" {
		t.Fatalf("health body = %v", body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/health/ready", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readiness status = %d, want 200", resp.StatusCode)
	}
	deps := body["dependencies"].(map[string]any)
	if deps["postgres"] != "ok" {
		t.Fatalf("readiness deps = %v", deps)
	}
}
