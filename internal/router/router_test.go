package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pet-adoption-admin/internal/router"
)

// fakeBackend simula el servicio de adopciones con el wire real
// (camelCase + envelope {"data": ...}).
type fakeBackend struct {
	mu       sync.Mutex
	seq      int
	requests map[string]map[string]any

	patchHits int // cuántos PATCH /status llegaron realmente al backend
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{requests: map[string]map[string]any{}}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/admin/adoption-requests", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			f.mu.Lock()
			data := make([]map[string]any, 0, len(f.requests))
			for _, ar := range f.requests {
				data = append(data, ar)
			}
			f.mu.Unlock()

			writeEnvelope(w, http.StatusOK, map[string]any{
				"data": data,
				"pagination": map[string]any{
					"page": 1, "limit": 20, "total": len(data), "totalPages": 1,
				},
			})

		case http.MethodPost:
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)

			f.mu.Lock()
			f.seq++
			id := fmt.Sprintf("ar-%d", f.seq)
			ar := map[string]any{
				"id":             id,
				"petId":          in["petId"],
				"applicantName":  in["applicantName"],
				"applicantEmail": in["applicantEmail"],
				"status":         "pending",
				"createdAt":      time.Now().UTC().Format(time.RFC3339),
			}
			f.requests[id] = ar
			f.mu.Unlock()

			writeEnvelope(w, http.StatusCreated, map[string]any{"data": ar})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/admin/adoption-requests/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"periodDays": 30, "total": 3, "pending": 1, "approved": 2, "approvalRate": 0.66,
			},
		})
	})

	mux.HandleFunc("/admin/adoption-requests/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/admin/adoption-requests/")
		parts := strings.Split(rest, "/")
		id := parts[0]

		f.mu.Lock()
		ar, ok := f.requests[id]
		f.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusNotFound, map[string]any{
				"code": "NOT_FOUND", "message": "adoption request not found",
			})
			return
		}

		// PATCH /{id} (update de status/notes)
		if len(parts) == 1 && r.Method == http.MethodPatch {
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)

			f.mu.Lock()
			f.patchHits++
			ar["status"] = in["status"]
			if v, ok := in["rejectionReason"].(string); ok && v != "" {
				ar["rejectionReason"] = v
			}
			if v, ok := in["withdrawalReason"].(string); ok && v != "" {
				ar["withdrawalReason"] = v
			}
			f.mu.Unlock()

			writeEnvelope(w, http.StatusOK, map[string]any{"data": ar})
			return
		}

		if r.Method == http.MethodGet && len(parts) == 1 {
			writeEnvelope(w, http.StatusOK, map[string]any{"data": ar})
			return
		}

		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	return mux
}

func (f *fakeBackend) patches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patchHits
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newStack(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	backend := newFakeBackend()
	upstream := httptest.NewServer(backend.handler())
	t.Cleanup(upstream.Close)

	bff := httptest.NewServer(router.NewRouter(router.Options{
		Session:        nil, // modo dev
		BackendBaseURL: upstream.URL,
	}))
	t.Cleanup(bff.Close)

	return backend, bff
}

func TestHTTP_EndToEnd_RequestLifecycle(t *testing.T) {
	backend, bff := newStack(t)

	// 1) Crear solicitud válida
	id := createRequest(t, bff.URL, validCreateBody())

	// 2) Get devuelve la solicitud
	{
		st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests/"+id, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get request, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "pending" {
			t.Fatalf("expected pending status, got %q", resp.Status)
		}
	}

	// 3) Listar incluye la solicitud
	{
		st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests?status=pending", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		var resp struct {
			Data       []map[string]any `json:"data"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Data) != 1 || resp.Pagination.Total != 1 {
			t.Fatalf("expected 1 request listed, got %d (total=%d)", len(resp.Data), resp.Pagination.Total)
		}
	}

	// 4) next-statuses desde pending
	{
		st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests/"+id+"/next-statuses", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 next-statuses, got %d body=%s", st, string(body))
		}
		var resp struct {
			Current string   `json:"current"`
			Next    []string `json:"next"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Current != "pending" || len(resp.Next) != 3 {
			t.Fatalf("expected 3 transitions from pending, got current=%q next=%v", resp.Current, resp.Next)
		}
	}

	// 5) Transición legal pending -> under_review
	{
		st, body := doReq(t, bff.URL, "PATCH", "/admin/adoption-requests/"+id+"/status", map[string]any{
			"currentStatus": "pending",
			"status":        "under_review",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 transition, got %d body=%s", st, string(body))
		}
	}

	// 6) Transición ilegal under_review -> completed: 400 y CERO llamadas al backend
	{
		before := backend.patches()
		st, body := doReq(t, bff.URL, "PATCH", "/admin/adoption-requests/"+id+"/status", map[string]any{
			"currentStatus": "under_review",
			"status":        "completed",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 illegal transition, got %d body=%s", st, string(body))
		}
		if got := backend.patches(); got != before {
			t.Fatalf("illegal transition must not reach the backend (patch hits %d -> %d)", before, got)
		}
	}

	// 7) Rechazo sin razón: 400 con detalle de campo
	{
		st, body := doReq(t, bff.URL, "PATCH", "/admin/adoption-requests/"+id+"/status", map[string]any{
			"currentStatus": "under_review",
			"status":        "rejected",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 rejection without reason, got %d body=%s", st, string(body))
		}
		var resp struct {
			Code string `json:"code"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Code != "MISSING_REJECTION_REASON" {
			t.Fatalf("expected MISSING_REJECTION_REASON, got %q body=%s", resp.Code, string(body))
		}
	}

	// 8) Withdraw desde under_review
	{
		st, body := doReq(t, bff.URL, "POST", "/admin/adoption-requests/"+id+"/withdraw", map[string]any{
			"reason": "found another pet",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 withdraw, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "withdrawn" {
			t.Fatalf("expected withdrawn, got %q", resp.Status)
		}
	}

	// 9) Withdraw de nuevo: ya es terminal => 400
	{
		st, _ := doReq(t, bff.URL, "POST", "/admin/adoption-requests/"+id+"/withdraw", map[string]any{
			"reason": "again",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 withdraw from terminal, got %d", st)
		}
	}
}

func TestHTTP_Create_RejectsInvalidPayload(t *testing.T) {
	_, bff := newStack(t)

	body := validCreateBody()
	body["applicantEmail"] = "not-an-email"
	body["reason"] = "too short"

	st, respBody := doReq(t, bff.URL, "POST", "/admin/adoption-requests", body)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid payload, got %d body=%s", st, string(respBody))
	}

	var resp struct {
		Details []struct {
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"details"`
	}
	_ = json.Unmarshal(respBody, &resp)

	fields := map[string]string{}
	for _, d := range resp.Details {
		fields[d.Field] = d.Code
	}
	if fields["applicantEmail"] != "INVALID_EMAIL_FORMAT" {
		t.Fatalf("expected email violation, got %v", fields)
	}
	if fields["reason"] != "REASON_TOO_SHORT" {
		t.Fatalf("expected reason violation, got %v", fields)
	}
}

func TestHTTP_List_RejectsOutOfRangePagination(t *testing.T) {
	_, bff := newStack(t)

	st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests?limit=500", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 limit out of range, got %d body=%s", st, string(body))
	}

	var resp struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Code != "INVALID_LIMIT" {
		t.Fatalf("expected INVALID_LIMIT, got %q", resp.Code)
	}
}

func TestHTTP_NotFoundFromBackendMapsTo404(t *testing.T) {
	_, bff := newStack(t)

	st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests/nope", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Stats(t *testing.T) {
	_, bff := newStack(t)

	st, body := doReq(t, bff.URL, "GET", "/admin/adoption-requests/stats?period=30", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
	}

	var resp struct {
		PeriodDays int `json:"periodDays"`
		Total      int `json:"total"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.PeriodDays != 30 || resp.Total != 3 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestHTTP_Health(t *testing.T) {
	_, bff := newStack(t)

	st, body := doReq(t, bff.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
	}
}

func validCreateBody() map[string]any {
	return map[string]any{
		"petId":          "pet-1",
		"applicantName":  "Jane Doe",
		"applicantEmail": "jane@example.com",
		"applicantPhone": "+12025550123",
		"address": map[string]any{
			"street": "123 Main St",
			"city":   "Springfield",
			"region": "IL",
			"zip":    "62701",
		},
		"housingType": "house",
		"hasYard":     true,
		"yardDetails": "fenced backyard",
		"reason":      "We have always wanted a dog and have plenty of space.",
	}
}

func createRequest(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/admin/adoption-requests", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create request, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create request: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
