package batches_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/provenance/internal/batches"
	"github.com/JaimeStill/provenance/pkg/middleware"
	"github.com/JaimeStill/provenance/pkg/pagination"
	"github.com/JaimeStill/provenance/pkg/routes"
)

func testServer(t *testing.T, sys batches.System) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	handler := batches.NewHandler(sys, slog.Default(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 100})
	routes.Register(mux, handler.Routes())
	return middleware.ExtractIdentity()(mux)
}

func submitBody(t *testing.T) *strings.Reader {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"fileContent": validManifest,
		"fileName":    "batch.csv",
		"file_size":    len(validManifest),
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return strings.NewReader(string(body))
}

func TestSubmitEndpointRequiresIdentity(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("POST", "/batches", submitBody(t))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSubmitEndpointRequiresManufacturerRole(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("POST", "/batches", submitBody(t))
	req.Header.Set("X-User-Email", "scanner@clinic.example")
	req.Header.Set("X-User-Role", "pharmacist")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if f.anchor.submits != 0 {
		t.Error("forbidden request must not reach the ledger")
	}
}

func TestSubmitEndpointSuccess(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("POST", "/batches", submitBody(t))
	req.Header.Set("X-User-Email", "maker@pharma.example")
	req.Header.Set("X-User-Role", "manufacturer")
	req.Header.Set("X-User-Organization", "Pharma Labs")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp batches.SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != batches.StatusCompleted {
		t.Errorf("Status = %s, want completed", resp.Status)
	}
	if resp.QRCodesGenerated != 6 {
		t.Errorf("QRCodesGenerated = %d, want 6", resp.QRCodesGenerated)
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal raw response: %v", err)
	}
	for _, key := range []string{"uploadId", "qrCodesGenerated", "validationResult"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %q field", key)
		}
	}
}

func TestSubmitEndpointValidationFailure(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	invalid := "drug_name,batch_id,quantity,expiry_date,manufacturer\n" +
		"Amoxicillin,BATCH-001,-1,2027-06-30,Pharma Labs\n"
	body, _ := json.Marshal(map[string]any{
		"fileContent": invalid,
		"fileName":    "batch.csv",
	})

	req := httptest.NewRequest("POST", "/batches", strings.NewReader(string(body)))
	req.Header.Set("X-User-Email", "maker@pharma.example")
	req.Header.Set("X-User-Role", "manufacturer")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["code"] != "validation_error" {
		t.Errorf("code = %v, want validation_error", resp["code"])
	}
	if resp["validationResult"] == nil {
		t.Error("response must carry the validation result")
	}
	if resp["uploadId"] == nil {
		t.Error("response must carry the persisted upload id")
	}
}

func TestFindEndpoint(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("POST", "/batches", submitBody(t))
	req.Header.Set("X-User-Email", "maker@pharma.example")
	req.Header.Set("X-User-Role", "manufacturer")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp batches.SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	req = httptest.NewRequest("GET", "/batches/"+resp.UploadID.String(), nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var upload batches.Upload
	if err := json.Unmarshal(rec.Body.Bytes(), &upload); err != nil {
		t.Fatalf("unmarshal upload: %v", err)
	}
	if upload.ID != resp.UploadID {
		t.Errorf("ID = %s, want %s", upload.ID, resp.UploadID)
	}
}

func TestFindEndpointNotFound(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("GET", "/batches/2db6f0a0-43ef-47a8-84bc-2d4b1a3fef7b", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestFindEndpointInvalidID(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("GET", "/batches/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListEndpoint(t *testing.T) {
	f := newFixture(t, &fakeAnchor{})
	server := testServer(t, f.sys)

	req := httptest.NewRequest("POST", "/batches", submitBody(t))
	req.Header.Set("X-User-Email", "maker@pharma.example")
	req.Header.Set("X-User-Role", "manufacturer")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	req = httptest.NewRequest("GET", "/batches?status=completed", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var page pagination.PageResult[batches.Upload]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}
