package pacs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"pacs-index-api/database"
	"pacs-index-api/indexer"
	"pacs-index-api/logging"
	"pacs-index-api/models"
)

type stubSearch struct {
	patients []*models.PatientSummary
	studies  []*models.StudySummary
	images   []*models.StudyImage
	err      error

	lastQuery, lastModality, lastDate string
}

func (s *stubSearch) SearchPatients(query, modality, studyDate string, options *database.SelectQueryOptions) ([]*models.PatientSummary, error) {
	s.lastQuery, s.lastModality, s.lastDate = query, modality, studyDate
	return s.patients, s.err
}

func (s *stubSearch) PatientStudies(patientID string) ([]*models.StudySummary, error) {
	return s.studies, s.err
}

func (s *stubSearch) StudyImages(studyUID string) ([]*models.StudyImage, error) {
	return s.images, s.err
}

type stubIndex struct {
	startErr  error
	cancelled bool
	status    indexer.Status
	lastRoot  string
}

func (s *stubIndex) Start(root string) error {
	s.lastRoot = root
	return s.startErr
}

func (s *stubIndex) RequestCancel() { s.cancelled = true }

func (s *stubIndex) Status() indexer.Status { return s.status }

func testRouter(t *testing.T, a *API) http.Handler {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	r := chi.NewRouter()
	r.Use(logging.NewStructuredLogger(logger))
	r.Mount("/api/pacs", a.Router())
	return r
}

func TestSearchPatientsEndpoint(t *testing.T) {
	search := &stubSearch{patients: []*models.PatientSummary{
		{PatientID: "639380", PatientName: "MOKOENA THABO", StudyCount: 1},
	}}
	router := testRouter(t, &API{Search: search, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/patients/search?q=mokoena&modality=CT&study_date=2025-09-22", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp patientsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "639380", resp.Patients[0].PatientID)

	require.Equal(t, "mokoena", search.lastQuery)
	require.Equal(t, "CT", search.lastModality)
	require.Equal(t, "2025-09-22", search.lastDate)
}

func TestSearchPatientsEndpointInvalidLimit(t *testing.T) {
	router := testRouter(t, &API{Search: &stubSearch{}, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/patients/search?limit=nope", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSearchPatientsEndpointQueryFailure(t *testing.T) {
	router := testRouter(t, &API{Search: &stubSearch{err: errors.New("store missing")}, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/patients/search", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "store missing", resp.ErrorText)
}

func TestPatientStudiesEndpoint(t *testing.T) {
	search := &stubSearch{studies: []*models.StudySummary{
		{StudyInstanceUID: "1.2.3", SeriesCount: 2, InstanceCount: 3},
	}}
	router := testRouter(t, &API{Search: search, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/patients/639380/studies", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp studiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "639380", resp.PatientID)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, 2, resp.Studies[0].SeriesCount)
}

func TestStudyImagesEndpoint(t *testing.T) {
	search := &stubSearch{images: []*models.StudyImage{
		{SOPInstanceUID: "1.2.3.1.1", SeriesNumber: 1, InstanceNumber: 1},
	}}
	router := testRouter(t, &API{Search: search, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/studies/1.2.3/images", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp imagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "1.2.3", resp.StudyUID)
	require.Equal(t, 1, resp.Count)
}

func TestIndexStartEndpoint(t *testing.T) {
	index := &stubIndex{}
	router := testRouter(t, &API{Search: &stubSearch{}, Index: index, NASPath: "/nas"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pacs/index/start", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/nas", index.lastRoot)
}

func TestIndexStartEndpointBodyPathWins(t *testing.T) {
	index := &stubIndex{}
	router := testRouter(t, &API{Search: &stubSearch{}, Index: index, NASPath: "/nas"})

	body := bytes.NewBufferString(`{"path":"/mnt/modality-a"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pacs/index/start", body))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/mnt/modality-a", index.lastRoot)
}

func TestIndexStartEndpointConflict(t *testing.T) {
	index := &stubIndex{startErr: indexer.ErrAlreadyRunning}
	router := testRouter(t, &API{Search: &stubSearch{}, Index: index, NASPath: "/nas"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pacs/index/start", nil))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestIndexStartEndpointNoPathConfigured(t *testing.T) {
	router := testRouter(t, &API{Search: &stubSearch{}, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pacs/index/start", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIndexCancelEndpoint(t *testing.T) {
	index := &stubIndex{}
	router := testRouter(t, &API{Search: &stubSearch{}, Index: index})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pacs/index/cancel", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, index.cancelled)
}

func TestIndexStatusEndpoint(t *testing.T) {
	now := time.Now()
	index := &stubIndex{status: indexer.Status{
		IsIndexing: true,
		Stats:      indexer.Stats{Patients: 9300, Instances: 1200000, StartTime: &now},
		DBExists:   true,
	}}
	router := testRouter(t, &API{Search: &stubSearch{}, Index: index})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/index/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool `json:"success"`
		IsIndexing bool `json:"is_indexing"`
		Stats      struct {
			Patients int `json:"patients"`
		} `json:"stats"`
		DBExists bool `json:"db_exists"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.True(t, resp.IsIndexing)
	require.True(t, resp.DBExists)
	require.Equal(t, 9300, resp.Stats.Patients)
}

func TestOrthancRoutesAbsentWithoutClient(t *testing.T) {
	router := testRouter(t, &API{Search: &stubSearch{}, Index: &stubIndex{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/pacs/orthanc/system", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}
