package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/shibalabs/inspection-console/internal/blobstore"
	"github.com/shibalabs/inspection-console/internal/caselog"
	"github.com/shibalabs/inspection-console/internal/cases"
	"github.com/shibalabs/inspection-console/internal/images"
	"github.com/shibalabs/inspection-console/internal/models"
	"github.com/shibalabs/inspection-console/internal/submit"
	"github.com/shibalabs/inspection-console/internal/testutil"
)

type testBlobStore struct {
	uploads []string
}

func (s *testBlobStore) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	return "folder-" + name, nil
}

func (s *testBlobStore) Upload(ctx context.Context, folderID, filename string, data []byte, mimeType string) (*blobstore.UploadedFile, error) {
	s.uploads = append(s.uploads, filename)
	id := fmt.Sprintf("file-%d", len(s.uploads))
	return &blobstore.UploadedFile{FileID: id, ViewURL: "https://drive.example/" + id}, nil
}

type testLog struct {
	imageRows []caselog.ImageRow
	caseRows  []caselog.CaseRow
}

func (l *testLog) EnsureSchema(ctx context.Context) error { return nil }

func (l *testLog) AppendImageRow(ctx context.Context, row caselog.ImageRow) error {
	l.imageRows = append(l.imageRows, row)
	return nil
}

func (l *testLog) AppendCaseRow(ctx context.Context, row caselog.CaseRow) error {
	l.caseRows = append(l.caseRows, row)
	return nil
}

type testEnv struct {
	mux  *http.ServeMux
	blob *testBlobStore
	log  *testLog
}

func newTestEnv() *testEnv {
	logger := testutil.NullLogger()
	registry := cases.NewRegistry(models.DefaultAggregateThreshold)
	imageSvc := images.NewService(nil, images.NewInMemoryPendingStore(time.Minute), time.Second)
	blob := &testBlobStore{}
	log := &testLog{}
	submitSvc := submit.NewService(blob, log, submit.Config{RootFolderID: "root-1"}, logger)

	identity := func(next http.HandlerFunc) http.HandlerFunc { return next }

	mux := http.NewServeMux()
	NewCaseAPI(registry, imageSvc, submitSvc, logger).RegisterRoutes(mux, identity)
	NewUploadAPI(imageSvc, registry, logger).RegisterRoutes(mux, identity)
	NewVocabAPI().RegisterRoutes(mux, identity)

	return &testEnv{mux: mux, blob: blob, log: log}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createDraft(t *testing.T, inspector string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/cases", map[string]string{"inspectorName": inspector})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create draft returned %d: %s", w.Code, w.Body.String())
	}

	var resp draftResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode draft response: %v", err)
	}
	if resp.DraftID == "" {
		t.Fatal("Draft response carried no id")
	}
	return resp.DraftID
}

func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xDB}, make([]byte, 512)...)
}

func (e *testEnv) uploadPhoto(t *testing.T, draftID, filename string, data []byte) string {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("draftId", draftID); err != nil {
		t.Fatalf("Failed to write draftId field: %v", err)
	}
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write image bytes: %v", err)
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Upload returned %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	if resp["status"] != "APPROVED" {
		t.Fatalf("Upload status %s, want APPROVED", resp["status"])
	}
	if resp["uploadId"] == "" {
		t.Fatal("Upload response carried no token")
	}
	return resp["uploadId"]
}

func (e *testEnv) attachEntry(t *testing.T, draftID string, slot int, body map[string]interface{}) draftResponse {
	t.Helper()

	w := e.do(t, http.MethodPut, fmt.Sprintf("/api/cases/%s/images/%d", draftID, slot), body)
	if w.Code != http.StatusOK {
		t.Fatalf("Attach entry returned %d: %s", w.Code, w.Body.String())
	}

	var resp draftResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode draft response: %v", err)
	}
	return resp
}

func TestCreateAndFetchDraft(t *testing.T) {
	env := newTestEnv()

	id := env.createDraft(t, "山田")

	w := env.do(t, http.MethodGet, "/api/cases/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Fetch draft returned %d", w.Code)
	}

	var resp draftResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode draft response: %v", err)
	}
	if resp.Case.InspectorName != "山田" {
		t.Errorf("Inspector seed not applied: %q", resp.Case.InspectorName)
	}
	if resp.Case.Brand != models.Brand {
		t.Errorf("Expected brand %s, got %s", models.Brand, resp.Case.Brand)
	}
	if resp.AggregateUnlocked {
		t.Error("Aggregate should be locked on an empty draft")
	}
}

func TestFetchUnknownDraft(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/cases/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUpdateHeader(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "")

	w := env.do(t, http.MethodPut, "/api/cases/"+id, map[string]string{
		"item":          "財布",
		"inspectorName": "佐藤",
		"memo":          "持ち手に擦れ",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Header update returned %d: %s", w.Code, w.Body.String())
	}

	var resp draftResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode draft response: %v", err)
	}
	if resp.Case.Item != models.ItemWallet {
		t.Errorf("Expected item 財布, got %s", resp.Case.Item)
	}
	if resp.Case.Memo != "持ち手に擦れ" {
		t.Errorf("Unexpected memo: %q", resp.Case.Memo)
	}
}

func TestUpdateHeaderRejectsUnknownItem(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "")

	w := env.do(t, http.MethodPut, "/api/cases/"+id, map[string]string{"item": "時計"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestUploadAndAttachEntry(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	uploadID := env.uploadPhoto(t, id, "front.jpg", jpegBytes())

	resp := env.attachEntry(t, id, 0, map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "ロゴ",
		"judgment":  "基準内",
		"learn":     "Yes",
	})

	if len(resp.Case.Images) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(resp.Case.Images))
	}
	entry := resp.Case.Images[0]
	if entry.Type != models.ImageTypeLogo {
		t.Errorf("Unexpected type %s", entry.Type)
	}
	if entry.FileName != "front.jpg" || entry.MimeType != "image/jpeg" {
		t.Errorf("Photo metadata not carried: %s %s", entry.FileName, entry.MimeType)
	}
}

func TestUploadTokenIsSingleUse(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	uploadID := env.uploadPhoto(t, id, "front.jpg", jpegBytes())
	env.attachEntry(t, id, 0, map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "ロゴ",
		"judgment":  "基準内",
		"learn":     "Yes",
	})

	w := env.do(t, http.MethodPut, "/api/cases/"+id+"/images/1", map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "馬車タグ",
		"judgment":  "基準内",
		"learn":     "Yes",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a consumed token, got %d", w.Code)
	}
}

func TestUploadRejectsUnknownDraft(t *testing.T) {
	env := newTestEnv()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("draftId", "nope")
	part, _ := form.CreateFormFile("image", "a.jpg")
	part.Write(jpegBytes())
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("draftId", id)
	part, _ := form.CreateFormFile("image", "report.pdf")
	part.Write([]byte("%PDF-1.7 definitely not a photo"))
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestAvailableTypesExcludesExclusionPair(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	uploadID := env.uploadPhoto(t, id, "pull.jpg", jpegBytes())
	env.attachEntry(t, id, 0, map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "YKK",
		"judgment":  "基準内",
		"learn":     "Yes",
	})

	w := env.do(t, http.MethodGet, "/api/cases/"+id+"/available-types?slot=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Available types returned %d", w.Code)
	}

	var resp struct {
		Slot  int                `json:"slot"`
		Types []models.ImageType `json:"types"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	for _, typ := range resp.Types {
		if typ == models.ImageTypeIdealFeature {
			t.Error("IDEAL must be withheld once YKK is chosen")
		}
		if typ == models.ImageTypeZipperPull {
			t.Error("Chosen type must not be offered for another slot")
		}
	}
}

func TestAggregateLifecycle(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	w := env.do(t, http.MethodPut, "/api/cases/"+id+"/aggregate", map[string]interface{}{
		"judgment":      "基準内",
		"reasonChoices": []string{models.AggregateRationaleOptions()[0]},
		"learn":         "Yes",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Aggregate put returned %d: %s", w.Code, w.Body.String())
	}

	var resp draftResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	// Below the threshold the snapshot hides the aggregate.
	if resp.Case.Aggregate != nil {
		t.Error("Aggregate should be withheld below the photo threshold")
	}

	w = env.do(t, http.MethodDelete, "/api/cases/"+id+"/aggregate", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Aggregate delete returned %d", w.Code)
	}
}

func TestAggregateRejectsUnofferedRationale(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	w := env.do(t, http.MethodPut, "/api/cases/"+id+"/aggregate", map[string]interface{}{
		"judgment":      "基準内",
		"reasonChoices": []string{"勝手な理由"},
		"learn":         "Yes",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "")

	w := env.do(t, http.MethodPost, "/api/cases/"+id+"/submit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Violations []models.Violation `json:"violations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Violations) == 0 {
		t.Error("Expected violations in the response")
	}
	if len(env.blob.uploads) != 0 || len(env.log.caseRows) != 0 {
		t.Error("Nothing may be persisted for an invalid case")
	}
}

func TestSubmitSuccessOpensNextDraft(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	uploadID := env.uploadPhoto(t, id, "front.jpg", jpegBytes())
	env.attachEntry(t, id, 0, map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "ロゴ",
		"judgment":  "基準内",
		"learn":     "Yes",
	})

	w := env.do(t, http.MethodPost, "/api/cases/"+id+"/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Submit returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CaseID      string `json:"caseId"`
		NextDraftID string `json:"nextDraftId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	caseIDPattern := regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f]{8}$`)
	if !caseIDPattern.MatchString(resp.CaseID) {
		t.Errorf("Unexpected case id format: %s", resp.CaseID)
	}
	if resp.NextDraftID == "" || resp.NextDraftID == id {
		t.Errorf("Expected a fresh draft id, got %q", resp.NextDraftID)
	}

	// The committed draft is gone; the next one carries the inspector forward.
	if w := env.do(t, http.MethodGet, "/api/cases/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("Committed draft still reachable: %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/cases/"+resp.NextDraftID, nil)
	var next draftResponse
	json.Unmarshal(w.Body.Bytes(), &next)
	if next.Case.InspectorName != "山田" {
		t.Errorf("Inspector not carried to the next draft: %q", next.Case.InspectorName)
	}

	if len(env.log.imageRows) != 1 || len(env.log.caseRows) != 1 {
		t.Errorf("Expected 1 image row and 1 case row, got %d/%d",
			len(env.log.imageRows), len(env.log.caseRows))
	}
	if env.log.imageRows[0].ImageType != "ロゴ" {
		t.Errorf("Unexpected image row type: %s", env.log.imageRows[0].ImageType)
	}
}

func TestVocabRationales(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/vocab/rationales?type=ロゴ", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Rationales returned %d", w.Code)
	}
	var resp struct {
		Options []string `json:"options"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Options) == 0 {
		t.Error("Expected rationale options for ロゴ")
	}

	// IDEAL has no choice-based rationale.
	w = env.do(t, http.MethodGet, "/api/vocab/rationales?type=IDEAL", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Rationales returned %d", w.Code)
	}
	resp.Options = nil
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Options) != 0 {
		t.Errorf("Expected no options for IDEAL, got %v", resp.Options)
	}
}

func TestRemoveLastEntry(t *testing.T) {
	env := newTestEnv()
	id := env.createDraft(t, "山田")

	uploadID := env.uploadPhoto(t, id, "front.jpg", jpegBytes())
	env.attachEntry(t, id, 0, map[string]interface{}{
		"uploadId":  uploadID,
		"imageType": "ロゴ",
		"judgment":  "基準内",
		"learn":     "Yes",
	})

	w := env.do(t, http.MethodDelete, "/api/cases/"+id+"/images/last", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Remove last returned %d: %s", w.Code, w.Body.String())
	}

	var resp draftResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Case.Images) != 0 {
		t.Errorf("Expected no entries, got %d", len(resp.Case.Images))
	}

	w = env.do(t, http.MethodDelete, "/api/cases/"+id+"/images/last", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on empty draft, got %d", w.Code)
	}
}
