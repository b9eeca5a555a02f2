// Package indexer walks a NAS directory tree and builds the searchable
// metadata index from DICOM file headers.
package indexer

import (
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pacs-index-api/database"
	"pacs-index-api/dicom"
	pacsfs "pacs-index-api/fs"
	"pacs-index-api/models"
)

// commitBatchSize is the number of processed files between commits.
// Committing per file makes a multi-million file scan take hours.
const commitBatchSize = 100

// ErrAlreadyRunning is returned by Start and Scan when a scan is
// already in flight. A scan begins by clearing the whole index, two
// concurrent scans would destroy each other's work.
var ErrAlreadyRunning = errors.New("indexing is already running")

var errCancelled = errors.New("scan cancelled")

// ProgressFunc receives the cumulative processed-file count at every
// commit boundary.
type ProgressFunc func(processed int)

// ExtractFunc extracts the metadata record of one candidate file.
type ExtractFunc func(path string) (*models.Metadata, error)

// Stats are the counters of the current or last scan.
type Stats struct {
	Patients  int        `json:"patients"`
	Studies   int        `json:"studies"`
	Series    int        `json:"series"`
	Instances int        `json:"instances"`
	Errors    int        `json:"errors"`
	Processed int        `json:"processed"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Status is the externally visible indexing state.
type Status struct {
	IsIndexing bool  `json:"is_indexing"`
	Stats      Stats `json:"stats"`
	DBExists   bool  `json:"db_exists"`
}

// Indexer performs full rebuilds of the metadata index. It is the sole
// writer of the store; search reads run concurrently against the same
// database file under WAL.
type Indexer struct {
	db        *sql.DB
	dbPath    string
	patients  *database.PatientStore
	studies   *database.StudyStore
	series    *database.SeriesStore
	instances *database.InstanceStore

	extract ExtractFunc
	logger  logrus.FieldLogger

	// Progress, when set, is called at each commit boundary.
	Progress ProgressFunc

	mu        sync.Mutex
	indexing  bool
	cancelled bool
	cancel    chan struct{}
	stats     Stats
}

// New returns an Indexer writing through the given database handle.
// dbPath is only used to report whether the store file exists.
func New(db *sql.DB, dbPath string, logger logrus.FieldLogger) *Indexer {
	return &Indexer{
		db:        db,
		dbPath:    dbPath,
		patients:  database.NewPatientStore(db),
		studies:   database.NewStudyStore(db),
		series:    database.NewSeriesStore(db),
		instances: database.NewInstanceStore(db),
		extract:   dicom.Extract,
		logger:    logger,
	}
}

// Start launches a full scan of root on a background goroutine. It
// returns ErrAlreadyRunning when a scan is in flight; the check and the
// state transition are a single atomic step.
func (ix *Indexer) Start(root string) error {
	if err := ix.begin(); err != nil {
		return err
	}
	go ix.run(root)
	return nil
}

// Scan performs a full scan of root synchronously.
func (ix *Indexer) Scan(root string) error {
	if err := ix.begin(); err != nil {
		return err
	}
	return ix.run(root)
}

// RequestCancel asks an in-flight scan to stop at the next file
// boundary. Finalization still runs, so counters stay consistent with
// the partial progress. A no-op when no scan is running.
func (ix *Indexer) RequestCancel() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.indexing && !ix.cancelled {
		ix.cancelled = true
		close(ix.cancel)
	}
}

// IsIndexing reports whether a scan is in flight.
func (ix *Indexer) IsIndexing() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.indexing
}

// Status returns the current indexing state and the counters of the
// running or last completed scan.
func (ix *Indexer) Status() Status {
	ix.mu.Lock()
	stats := ix.stats
	indexing := ix.indexing
	ix.mu.Unlock()

	_, err := os.Stat(ix.dbPath)
	return Status{
		IsIndexing: indexing,
		Stats:      stats,
		DBExists:   err == nil,
	}
}

func (ix *Indexer) begin() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.indexing {
		return ErrAlreadyRunning
	}

	now := time.Now()
	ix.indexing = true
	ix.cancelled = false
	ix.cancel = make(chan struct{})
	ix.stats = Stats{StartTime: &now}
	return nil
}

func (ix *Indexer) run(root string) error {
	session := uuid.New().String()
	log := ix.logger.WithFields(logrus.Fields{"scan": session, "root": root})
	log.Info("starting PACS index scan")

	defer ix.finalize(log)

	tx, err := ix.db.Begin()
	if err != nil {
		log.WithError(err).Error("cannot begin index transaction")
		ix.countError()
		return err
	}
	defer func() {
		// Final commit of the last partial batch, also reached on a
		// walk-level failure or cancellation. tx is nil when a batch
		// boundary Begin failed mid-scan.
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.WithError(err).Error("final commit failed")
		}
	}()

	// Full rebuild: the previous index is dropped, children first.
	if err := database.Reset(tx); err != nil {
		log.WithError(err).Error("cannot clear index tables")
		ix.countError()
		return err
	}

	processed := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ix.cancel:
			return errCancelled
		default:
		}

		if walkErr != nil {
			if d == nil {
				// The root itself is inaccessible, nothing to scan.
				return walkErr
			}
			log.WithError(walkErr).WithField("path", path).Warn("unreadable path skipped")
			ix.countError()
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, sockets and other irregular entries are never DICOM
		// files and must not count as read errors.
		if !d.Type().IsRegular() || !pacsfs.IsDICOMCandidate(d.Name()) {
			return nil
		}

		meta, err := ix.extract(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("failed to read DICOM metadata")
			ix.countError()
			return nil
		}

		if err := meta.Validate(); err != nil {
			log.WithError(err).WithField("path", path).Warn("invalid metadata record")
			ix.countError()
			return nil
		}

		if err := ix.upsert(tx, meta); err != nil {
			log.WithError(err).WithField("path", path).Error("failed to index file")
			ix.countError()
			return nil
		}

		processed++
		ix.setProcessed(processed)

		if processed%commitBatchSize == 0 {
			if err := tx.Commit(); err != nil {
				log.WithError(err).Error("batch commit failed")
				ix.countError()
			}
			if tx, err = ix.db.Begin(); err != nil {
				return err
			}
			log.WithField("processed", processed).Info("committed batch")
			if ix.Progress != nil {
				ix.Progress(processed)
			}
		}

		return nil
	})

	switch {
	case errors.Is(walkErr, errCancelled):
		log.WithField("processed", processed).Warn("scan cancelled, keeping partial index")
		return nil
	case walkErr != nil:
		log.WithError(walkErr).Error("scan aborted")
		ix.countError()
		return walkErr
	}

	return nil
}

// upsert writes one file's metadata through all four levels. Insert
// order preserves the logical patient -> study -> series -> instance
// integrity; the series counter is recomputed in the same transaction
// as the instance write.
func (ix *Indexer) upsert(tx *sql.Tx, meta *models.Metadata) error {
	if err := ix.patients.CreateIfAbsent(&meta.Patient, tx); err != nil {
		return err
	}
	if err := ix.studies.CreateIfAbsent(&meta.Study, tx); err != nil {
		return err
	}
	if err := ix.series.CreateIfAbsent(&meta.Series, tx); err != nil {
		return err
	}
	if err := ix.instances.Upsert(&meta.Instance, tx); err != nil {
		return err
	}
	return ix.series.RefreshInstanceCount(meta.Series.SeriesInstanceUID, tx)
}

// finalize recomputes the aggregate counters from the just-written
// data, stamps the end time and clears the indexing flag. It runs on
// success, walk failure and cancellation alike so status never sticks.
func (ix *Indexer) finalize(log logrus.FieldLogger) {
	patients, err := ix.patients.Count(nil)
	if err != nil {
		log.WithError(err).Error("cannot count patients")
	}
	studies, err := ix.studies.Count(nil)
	if err != nil {
		log.WithError(err).Error("cannot count studies")
	}
	series, err := ix.series.Count(nil)
	if err != nil {
		log.WithError(err).Error("cannot count series")
	}
	instances, err := ix.instances.Count(nil)
	if err != nil {
		log.WithError(err).Error("cannot count instances")
	}

	now := time.Now()

	ix.mu.Lock()
	ix.stats.Patients = patients
	ix.stats.Studies = studies
	ix.stats.Series = series
	ix.stats.Instances = instances
	ix.stats.EndTime = &now
	ix.indexing = false
	stats := ix.stats
	ix.mu.Unlock()

	duration := time.Duration(0)
	if stats.StartTime != nil {
		duration = now.Sub(*stats.StartTime)
	}

	log.WithFields(logrus.Fields{
		"patients":  stats.Patients,
		"studies":   stats.Studies,
		"series":    stats.Series,
		"instances": stats.Instances,
		"errors":    stats.Errors,
		"duration":  duration.Round(time.Millisecond).String(),
	}).Info("PACS index scan finished")
}

func (ix *Indexer) countError() {
	ix.mu.Lock()
	ix.stats.Errors++
	ix.mu.Unlock()
}

func (ix *Indexer) setProcessed(n int) {
	ix.mu.Lock()
	ix.stats.Processed = n
	ix.mu.Unlock()
}
