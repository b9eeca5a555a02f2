// Package pacs exposes the metadata index search and scan lifecycle
// operations over HTTP. Handlers call only the query service and the
// indexer, never the store schema directly.
package pacs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"pacs-index-api/database"
	"pacs-index-api/indexer"
	"pacs-index-api/logging"
	"pacs-index-api/models"
)

// SearchStore is the read-only query interface consumed by handlers.
type SearchStore interface {
	SearchPatients(query, modality, studyDate string, options *database.SelectQueryOptions) ([]*models.PatientSummary, error)
	PatientStudies(patientID string) ([]*models.StudySummary, error)
	StudyImages(studyUID string) ([]*models.StudyImage, error)
}

// IndexService is the scan lifecycle interface consumed by handlers.
type IndexService interface {
	Start(root string) error
	RequestCancel()
	Status() indexer.Status
}

// OrthancProxy is the subset of the Orthanc client proxied by this API.
type OrthancProxy interface {
	System(ctx context.Context) (map[string]any, error)
	ListStudies(ctx context.Context) ([]string, error)
	InstancePreview(ctx context.Context, instanceID string) ([]byte, string, error)
}

// API provides PACS index resources and handlers.
type API struct {
	Search  SearchStore
	Index   IndexService
	Orthanc OrthancProxy
	NASPath string
}

// NewAPI configures and returns the PACS index API.
func NewAPI(db *sql.DB, index IndexService, orthanc OrthancProxy, nasPath string) (*API, error) {
	return &API{
		Search:  database.NewSearchStore(db),
		Index:   index,
		Orthanc: orthanc,
		NASPath: nasPath,
	}, nil
}

// Router provides PACS index routes.
func (a *API) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/patients/search", a.searchPatients)
	r.Get("/patients/{patientID}/studies", a.patientStudies)
	r.Get("/studies/{studyUID}/images", a.studyImages)

	r.Route("/index", func(r chi.Router) {
		r.Post("/start", a.indexStart)
		r.Post("/cancel", a.indexCancel)
		r.Get("/status", a.indexStatus)
	})

	if a.Orthanc != nil {
		r.Route("/orthanc", func(r chi.Router) {
			r.Get("/system", a.orthancSystem)
			r.Get("/studies", a.orthancStudies)
			r.Get("/instances/{instanceID}/preview", a.orthancPreview)
		})
	}

	return r
}

type patientsResponse struct {
	Success  bool                     `json:"success"`
	Patients []*models.PatientSummary `json:"patients"`
	Count    int                      `json:"count"`
}

func (a *API) searchPatients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	modality := r.URL.Query().Get("modality")
	studyDate := r.URL.Query().Get("study_date")

	options := &database.SelectQueryOptions{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			render.Render(w, r, ErrInvalidRequest(errors.New("limit must be a non-negative integer")))
			return
		}
		options.Limit = n
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			render.Render(w, r, ErrInvalidRequest(errors.New("offset must be a non-negative integer")))
			return
		}
		options.Offset = n
	}

	patients, err := a.Search.SearchPatients(query, modality, studyDate, options)
	if err != nil {
		log(r).WithError(err).Error("patient search failed")
		render.Render(w, r, ErrQuery(err))
		return
	}

	render.JSON(w, r, patientsResponse{Success: true, Patients: patients, Count: len(patients)})
}

type studiesResponse struct {
	Success   bool                   `json:"success"`
	PatientID string                 `json:"patient_id"`
	Studies   []*models.StudySummary `json:"studies"`
	Count     int                    `json:"count"`
}

func (a *API) patientStudies(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	studies, err := a.Search.PatientStudies(patientID)
	if err != nil {
		log(r).WithError(err).Error("patient studies lookup failed")
		render.Render(w, r, ErrQuery(err))
		return
	}

	render.JSON(w, r, studiesResponse{Success: true, PatientID: patientID, Studies: studies, Count: len(studies)})
}

type imagesResponse struct {
	Success  bool                 `json:"success"`
	StudyUID string               `json:"study_instance_uid"`
	Images   []*models.StudyImage `json:"images"`
	Count    int                  `json:"count"`
}

func (a *API) studyImages(w http.ResponseWriter, r *http.Request) {
	studyUID := chi.URLParam(r, "studyUID")

	images, err := a.Search.StudyImages(studyUID)
	if err != nil {
		log(r).WithError(err).Error("study images lookup failed")
		render.Render(w, r, ErrQuery(err))
		return
	}

	render.JSON(w, r, imagesResponse{Success: true, StudyUID: studyUID, Images: images, Count: len(images)})
}

type indexStartRequest struct {
	Path string `json:"path"`
}

type indexStartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func (a *API) indexStart(w http.ResponseWriter, r *http.Request) {
	req := indexStartRequest{}
	if r.Body != nil {
		// Body is optional; an empty or absent body means the
		// configured NAS root.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	root := req.Path
	if root == "" {
		root = a.NASPath
	}
	if root == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("no scan path given and no NAS path configured")))
		return
	}

	if err := a.Index.Start(root); err != nil {
		if errors.Is(err, indexer.ErrAlreadyRunning) {
			render.Render(w, r, ErrConflict(err))
			return
		}
		log(r).WithError(err).Error("cannot start indexing")
		render.Render(w, r, ErrInternalServerError)
		return
	}

	log(r).WithField("path", root).Info("indexing started")
	render.JSON(w, r, indexStartResponse{Success: true, Message: "indexing started", Path: root})
}

func (a *API) indexCancel(w http.ResponseWriter, r *http.Request) {
	a.Index.RequestCancel()
	render.JSON(w, r, map[string]any{"success": true, "message": "cancellation requested"})
}

type statusResponse struct {
	Success bool `json:"success"`
	indexer.Status
}

func (a *API) indexStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, statusResponse{Success: true, Status: a.Index.Status()})
}

func (a *API) orthancSystem(w http.ResponseWriter, r *http.Request) {
	system, err := a.Orthanc.System(r.Context())
	if err != nil {
		log(r).WithError(err).Error("orthanc system request failed")
		render.Render(w, r, ErrBadGateway(err))
		return
	}
	render.JSON(w, r, system)
}

func (a *API) orthancStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := a.Orthanc.ListStudies(r.Context())
	if err != nil {
		log(r).WithError(err).Error("orthanc studies request failed")
		render.Render(w, r, ErrBadGateway(err))
		return
	}
	render.JSON(w, r, studies)
}

func (a *API) orthancPreview(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instanceID")

	image, contentType, err := a.Orthanc.InstancePreview(r.Context(), instanceID)
	if err != nil {
		log(r).WithError(err).Error("orthanc preview request failed")
		render.Render(w, r, ErrBadGateway(err))
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Write(image)
}

func log(r *http.Request) logrus.FieldLogger {
	return logging.GetLogEntry(r)
}
