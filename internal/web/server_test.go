package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/frota/internal/config"
	"github.com/JonMunkholm/frota/internal/core"
	_ "github.com/JonMunkholm/frota/internal/core/entities"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const testCompany = "6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f"

// fakeStore serves canned records and records the calls it receives.
type fakeStore struct {
	records  map[string][]core.Record
	err      error
	pingErr  error
	lastOpts core.ListOptions
	lastIn   core.Input
	deleted  []uuid.UUID

	imported   string
	importOpts core.ImportOptions
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) List(_ context.Context, key string, opts core.ListOptions) ([]core.Record, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.records[key], nil
}

func (f *fakeStore) Get(_ context.Context, key string, id uuid.UUID) (core.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records[key] {
		if r["id"] == id.String() {
			return r, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, key string, in core.Input) (core.Record, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	r := core.Record{"id": uuid.NewString()}
	for k, v := range in {
		r[k] = v
	}
	return r, nil
}

func (f *fakeStore) Update(_ context.Context, key string, id uuid.UUID, in core.Input) (core.Record, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	r := core.Record{"id": id.String()}
	for k, v := range in {
		r[k] = v
	}
	return r, nil
}

func (f *fakeStore) Delete(_ context.Context, key string, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) Import(_ context.Context, key string, r io.Reader, opts core.ImportOptions) (*core.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.imported, f.importOpts = string(data), opts
	if f.err != nil {
		return nil, f.err
	}
	return &core.ImportResult{
		Entity:    key,
		FileName:  opts.FileName,
		DryRun:    opts.DryRun,
		TotalRows: 2,
		Inserted:  1,
		Skipped:   1,
		Ignored:   []string{"Cor"},
		FailedRows: []core.FailedRow{
			{Line: 3, Reason: "Placa: placa inválida", Fields: map[string]string{"plate": "placa inválida"}},
		},
		Duration: 1500 * time.Millisecond,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import:   config.ImportConfig{MaxFileSize: 1 << 20, Timeout: time.Minute},
		Security: config.SecurityConfig{EnableCSP: true},
		Tenant:   config.TenantConfig{Header: "X-Company-ID", QueryParam: "company"},
	}
}

func vehicleRecords() []core.Record {
	return []core.Record{
		{"id": "00000000-0000-0000-0000-000000000001", "plate": "XYZ9A99", "model": "Uno", "mileage": int64(120000), "status": "available"},
		{"id": "00000000-0000-0000-0000-000000000002", "plate": "ABC1234", "model": "Strada", "mileage": int64(5300), "status": "maintenance"},
		{"id": "00000000-0000-0000-0000-000000000003", "plate": "MNO5E67", "model": "Fiorino", "mileage": nil, "status": "in_use"},
	}
}

func newTestServer(t *testing.T, store *fakeStore, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s := NewServer(store, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if !strings.HasPrefix(target, "/companies") && !strings.Contains(target, "company=") {
		req.Header.Set("X-Company-ID", testCompany)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)

	if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}

	store.pingErr = errors.New("connection refused")
	if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestListEntities(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)
	rec := do(t, s, http.MethodGet, "/api/entities", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := decode[[]EntityResponse](t, rec)
	if len(got) != core.Count() {
		t.Fatalf("got %d entities, want %d", len(got), core.Count())
	}

	var vehicles *EntityResponse
	for i := range got {
		if got[i].Key == "vehicles" {
			vehicles = &got[i]
		}
	}
	if vehicles == nil {
		t.Fatal("vehicles missing from /api/entities")
	}
	want := ColumnInfo{Key: "plate", Header: "Placa", Type: "text", Required: true, Sortable: true, Mask: "plate"}
	if diff := cmp.Diff(want, vehicles.Columns[0]); diff != "" {
		t.Errorf("plate column mismatch (-want +got):\n%s", diff)
	}
	if !vehicles.Scoped {
		t.Error("vehicles should be company-scoped")
	}
}

func TestListRecords_SortCycle(t *testing.T) {
	store := &fakeStore{records: map[string][]core.Record{"vehicles": vehicleRecords()}}
	s := newTestServer(t, store, nil)

	tests := []struct {
		name      string
		query     string
		wantSort  SortResponse
		wantOrder []string
	}{
		{
			name:      "unsorted keeps input order",
			query:     "",
			wantOrder: []string{"XYZ-9A99", "ABC-1234", "MNO-5E67"},
		},
		{
			name:      "first click sorts ascending",
			query:     "?click=plate",
			wantSort:  SortResponse{Column: "plate", Direction: "asc"},
			wantOrder: []string{"ABC-1234", "MNO-5E67", "XYZ-9A99"},
		},
		{
			name:      "second click sorts descending",
			query:     "?sort=plate&dir=asc&click=plate",
			wantSort:  SortResponse{Column: "plate", Direction: "desc"},
			wantOrder: []string{"XYZ-9A99", "MNO-5E67", "ABC-1234"},
		},
		{
			name:      "third click restores input order",
			query:     "?sort=plate&dir=desc&click=plate",
			wantOrder: []string{"XYZ-9A99", "ABC-1234", "MNO-5E67"},
		},
		{
			name:      "click on another column starts ascending",
			query:     "?sort=plate&dir=desc&click=model",
			wantSort:  SortResponse{Column: "model", Direction: "asc"},
			wantOrder: []string{"MNO-5E67", "ABC-1234", "XYZ-9A99"},
		},
		{
			name:      "numeric column sorts by value with nulls last",
			query:     "?sort=mileage&dir=asc",
			wantSort:  SortResponse{Column: "mileage", Direction: "asc"},
			wantOrder: []string{"ABC-1234", "XYZ-9A99", "MNO-5E67"},
		},
		{
			name:      "unknown sort column is ignored",
			query:     "?sort=bogus&dir=asc",
			wantOrder: []string{"XYZ-9A99", "ABC-1234", "MNO-5E67"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/vehicles"+tt.query, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
			}
			got := decode[ListResponse](t, rec)

			if diff := cmp.Diff(tt.wantSort, got.Sort); diff != "" {
				t.Errorf("sort mismatch (-want +got):\n%s", diff)
			}
			var order []string
			for _, line := range got.Cells {
				order = append(order, line[0])
			}
			if diff := cmp.Diff(tt.wantOrder, order); diff != "" {
				t.Errorf("row order mismatch (-want +got):\n%s", diff)
			}
			if len(got.Rows) != len(got.Cells) {
				t.Errorf("got %d rows and %d cell lines", len(got.Rows), len(got.Cells))
			}
		})
	}
}

func TestListRecords_DisplayAndOptions(t *testing.T) {
	store := &fakeStore{records: map[string][]core.Record{"vehicles": vehicleRecords()}}
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodGet, "/api/vehicles?q=%20uno%20&limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if diff := cmp.Diff(core.ListOptions{Search: "uno", Limit: 10}, store.lastOpts); diff != "" {
		t.Errorf("list options mismatch (-want +got):\n%s", diff)
	}

	got := decode[ListResponse](t, rec)
	wantFirst := []string{"XYZ-9A99", "", "Uno", "", "120.000", "Disponível"}
	if diff := cmp.Diff(wantFirst, got.Cells[0]); diff != "" {
		t.Errorf("display cells mismatch (-want +got):\n%s", diff)
	}

	do(t, s, http.MethodGet, "/api/vehicles?limit=999999", "", nil)
	if store.lastOpts.Limit != MaxListLimit {
		t.Errorf("limit = %d, want capped at %d", store.lastOpts.Limit, MaxListLimit)
	}
}

func TestEntityPage(t *testing.T) {
	store := &fakeStore{records: map[string][]core.Record{"vehicles": vehicleRecords()}}
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodGet, "/vehicles?company="+testCompany+"&sort=plate&dir=asc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	html := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<h1>Veículos</h1>",
		"company=" + testCompany + "&amp;dir=desc&amp;sort=plate",
		`<input type="hidden" name="company" value="` + testCompany + `">`,
		"<td>ABC-1234</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Index(html, "ABC-1234") > strings.Index(html, "XYZ-9A99") {
		t.Error("rows not sorted by plate ascending")
	}

	frag := do(t, s, http.MethodGet, "/vehicles", "", map[string]string{"HX-Request": "true"})
	if body := frag.Body.String(); strings.Contains(body, "<html") || !strings.Contains(body, `id="entity-table"`) {
		t.Errorf("HTMX request should get the table fragment only:\n%s", body)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)
	rec := do(t, s, http.MethodGet, "/?company="+testCompany, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<h2>Frota</h2>", `href="/vehicles?company=` + testCompany + `"`} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		method     string
		target     string
		body       string
		headers    map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown entity api", method: http.MethodGet, target: "/api/trucks", wantStatus: http.StatusNotFound, wantCode: "ENT001"},
		{name: "no company", storeErr: core.ErrNoCompany, method: http.MethodGet, target: "/api/vehicles", wantStatus: http.StatusBadRequest, wantCode: "ENT003"},
		{name: "not found", storeErr: core.ErrNotFound, method: http.MethodDelete, target: "/api/vehicles/00000000-0000-0000-0000-000000000009", wantStatus: http.StatusNotFound, wantCode: "ENT002"},
		{name: "bad id", method: http.MethodPut, target: "/api/vehicles/abc", body: `{"model":"Uno"}`, wantStatus: http.StatusBadRequest, wantCode: "VAL003"},
		{name: "bad body", method: http.MethodPost, target: "/api/vehicles", body: `{"model":`, wantStatus: http.StatusBadRequest, wantCode: "ERR000"},
		{name: "nested body value", method: http.MethodPost, target: "/api/vehicles", body: `{"model":{"a":1}}`, wantStatus: http.StatusBadRequest, wantCode: "ERR000"},
		{name: "unknown mask", method: http.MethodGet, target: "/api/mask/rg?value=1", wantStatus: http.StatusBadRequest, wantCode: "VAL002"},
		{
			name: "vehicle of another company",
			storeErr: &pgconn.PgError{
				Code:           "23503",
				Message:        `insert or update on table "maintenance_records" violates foreign key constraint "maintenance_records_vehicle_fkey"`,
				ConstraintName: "maintenance_records_vehicle_fkey",
			},
			method:     http.MethodPost,
			target:     "/api/maintenance_records",
			body:       `{"vehicle_id":"00000000-0000-0000-0000-000000000009"}`,
			wantStatus: http.StatusConflict,
			wantCode:   "DB002",
		},
		{name: "database down", storeErr: errors.New("dial tcp: connection refused"), method: http.MethodGet, target: "/api/vehicles", wantStatus: http.StatusInternalServerError, wantCode: "DB003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeStore{err: tt.storeErr}, nil)
			rec := do(t, s, tt.method, tt.target, tt.body, tt.headers)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			got := decode[ErrorResponse](t, rec)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestErrors_PageAndHTMX(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)

	rec := do(t, s, http.MethodGet, "/trucks", "", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "(ENT001)") {
		t.Errorf("page error = %d %q", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/trucks", "", map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `role="alert"`) {
		t.Errorf("htmx error = %d %q", rec.Code, rec.Body)
	}
}

func TestCreateRecord(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodPost, "/api/vehicles", `{"plate":"ABC-1234","model":"Uno","year":2020,"mileage":null}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	want := core.Input{"plate": "ABC-1234", "model": "Uno", "year": "2020", "mileage": ""}
	if diff := cmp.Diff(want, store.lastIn); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRecord_JSONDecimals(t *testing.T) {
	tests := []struct {
		body    string
		wantIn  string
		wantNum float64
	}{
		{`{"cost": 1.234}`, "1,234", 1.234},
		{`{"cost": 1234.5}`, "1234,5", 1234.5},
		{`{"cost": -0.75}`, "-0,75", -0.75},
		{`{"cost": 1500}`, "1500", 1500},
	}
	for _, tt := range tests {
		store := &fakeStore{}
		s := newTestServer(t, store, nil)

		rec := do(t, s, http.MethodPost, "/api/maintenance_records", tt.body, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: status = %d, want 201: %s", tt.body, rec.Code, rec.Body)
		}
		if got := store.lastIn["cost"]; got != tt.wantIn {
			t.Errorf("%s: cost input = %q, want %q", tt.body, got, tt.wantIn)
		}
		f, err := core.ToPgNumeric(store.lastIn["cost"]).Float64Value()
		if err != nil || !f.Valid || f.Float64 != tt.wantNum {
			t.Errorf("%s: stored cost = %v (%v), want %v", tt.body, f.Float64, err, tt.wantNum)
		}
	}
}

func TestCreateRecord_Form(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", strings.NewReader("plate=ABC-1234&model=Uno"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Company-ID", testCompany)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if diff := cmp.Diff(core.Input{"plate": "ABC-1234", "model": "Uno"}, store.lastIn); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRecord_ValidationErrors(t *testing.T) {
	verrs := core.ValidationErrors{
		{Field: "plate", Value: "AB", Message: "placa inválida"},
		{Field: "model", Message: "campo obrigatório"},
	}
	s := newTestServer(t, &fakeStore{err: verrs}, nil)

	rec := do(t, s, http.MethodPost, "/api/vehicles", `{"plate":"AB"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	got := decode[ErrorResponse](t, rec)
	want := map[string]string{"plate": "placa inválida", "model": "campo obrigatório"}
	if diff := cmp.Diff(want, got.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if got.Code != "VAL001" {
		t.Errorf("code = %q, want VAL001", got.Code)
	}
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)
	id := "00000000-0000-0000-0000-000000000002"

	rec := do(t, s, http.MethodPut, "/api/vehicles/"+id, `{"status":"maintenance"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["id"] != id || got["status"] != "maintenance" {
		t.Errorf("update response = %v", got)
	}

	rec = do(t, s, http.MethodDelete, "/api/vehicles/"+id, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0].String() != id {
		t.Errorf("deleted = %v", store.deleted)
	}
}

func TestGetRecord(t *testing.T) {
	store := &fakeStore{records: map[string][]core.Record{"vehicles": vehicleRecords()}}
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodGet, "/api/vehicles/00000000-0000-0000-0000-000000000002", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["plate"] != "ABC1234" {
		t.Errorf("plate = %v, want ABC1234", got["plate"])
	}
}

func TestMask(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)

	tests := []struct {
		target string
		want   MaskResponse
	}{
		{"/api/mask/cpf?value=52998224725", MaskResponse{Kind: "cpf", Masked: "529.982.247-25", Clean: "52998224725", Valid: true}},
		{"/api/mask/cpfCnpj?value=529982", MaskResponse{Kind: "cpfCnpj", Masked: "529.982", Clean: "529982", Valid: false}},
		{"/api/mask/PLATE?value=bra2e19", MaskResponse{Kind: "plate", Masked: "BRA-2E19", Clean: "BRA2E19", Valid: true}},
		{"/api/mask/phone?value=11987654321", MaskResponse{Kind: "phone", Masked: "(11) 98765-4321", Clean: "11987654321", Valid: true}},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodGet, tt.target, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.target, rec.Code)
		}
		if diff := cmp.Diff(tt.want, decode[MaskResponse](t, rec)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.target, diff)
		}
	}
}

func TestTenantRejected(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, nil)
	rec := do(t, s, http.MethodGet, "/api/vehicles", "", map[string]string{"X-Company-ID": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, &fakeStore{}, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/entities", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", got.Code)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") {
		t.Fatal("first request denied")
	}
	if rl.allow("a") {
		t.Fatal("second request in window allowed")
	}
	if !rl.allow("b") {
		t.Fatal("other client denied")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.allow("a") {
		t.Error("request after window reset denied")
	}
}

func importRequest(t *testing.T, target, contentType string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Company-ID", testCompany)
	return req
}

func TestImport_Multipart(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "frota.csv")
	if err != nil {
		t.Fatal(err)
	}
	csvData := "Placa;Modelo\nABC-1234;Uno\nAB;Strada\n"
	if _, err := io.WriteString(fw, csvData); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, importRequest(t, "/api/vehicles/import", mw.FormDataContentType(), &buf))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	if store.imported != csvData {
		t.Errorf("store got %q, want %q", store.imported, csvData)
	}
	wantOpts := core.ImportOptions{FileName: "frota.csv", MaxSize: 1 << 20}
	if diff := cmp.Diff(wantOpts, store.importOpts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	want := ImportResponse{
		Entity:    "vehicles",
		FileName:  "frota.csv",
		TotalRows: 2,
		Inserted:  1,
		Skipped:   1,
		Ignored:   []string{"Cor"},
		FailedRows: []FailedRowResponse{
			{Line: 3, Reason: "Placa: placa inválida", Fields: map[string]string{"plate": "placa inválida"}},
		},
		DurationMs: 1500,
	}
	if diff := cmp.Diff(want, decode[ImportResponse](t, rec)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_CSVBodyDryRun(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, nil)

	rec := httptest.NewRecorder()
	req := importRequest(t, "/api/vehicles/import?dry_run=true&name=frota.csv", "text/csv", strings.NewReader("Placa\nABC1234\n"))
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if diff := cmp.Diff(core.ImportOptions{FileName: "frota.csv", DryRun: true, MaxSize: 1 << 20}, store.importOpts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if got := decode[ImportResponse](t, rec); !got.DryRun {
		t.Error("response should report the dry run")
	}
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		target     string
		body       string
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{name: "unknown entity", target: "/api/trucks/import", body: "a\n", wantStatus: http.StatusNotFound, wantCode: "ENT001"},
		{name: "bad dry_run", target: "/api/vehicles/import?dry_run=talvez", body: "a\n", wantStatus: http.StatusBadRequest, wantCode: "ERR000"},
		{
			name:       "header not recognized",
			storeErr:   fmt.Errorf("import vehicles: %w: missing Placa", core.ErrImportHeader),
			target:     "/api/vehicles/import",
			body:       "Modelo\nUno\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL004",
		},
		{name: "too many imports", storeErr: core.ErrTooManyImports, target: "/api/vehicles/import", body: "a\n", wantStatus: http.StatusServiceUnavailable, wantCode: "RATE002"},
		{
			name:       "body over the limit",
			target:     "/api/vehicles/import",
			body:       strings.Repeat("x", 200+multipartOverhead),
			maxSize:    100,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "VAL005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Import.MaxFileSize = tt.maxSize
			}
			s := newTestServer(t, &fakeStore{err: tt.storeErr}, cfg)

			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, importRequest(t, tt.target, "text/csv", strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}
