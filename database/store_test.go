package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pacs-index-api/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := DBConn(filepath.Join(t.TempDir(), "pacs_metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestDBConnSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacs_metadata.db")

	db, err := DBConn(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening against an existing file must not fail or drop data.
	db, err = DBConn(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"patients", "studies", "series", "instances"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Equal(t, 0, n)
	}
}

func TestPatientStoreFirstWriteWins(t *testing.T) {
	db := testDB(t)
	store := NewPatientStore(db)

	first := &models.Patient{PatientID: "639380", PatientName: "DOE JOHN", FolderPath: "/nas/639380"}
	require.NoError(t, store.CreateIfAbsent(first, nil))

	// A later scan pass must not overwrite existing demographics.
	second := &models.Patient{PatientID: "639380", PatientName: "OTHER NAME", FolderPath: "/nas/other"}
	require.NoError(t, store.CreateIfAbsent(second, nil))

	got, err := store.Get("639380")
	require.NoError(t, err)
	require.Equal(t, "DOE JOHN", got.PatientName)
	require.Equal(t, "/nas/639380", got.FolderPath)

	n, err := store.Count(nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestInstanceStoreUpsertReplacesByFilePath(t *testing.T) {
	db := testDB(t)
	store := NewInstanceStore(db)

	instance := &models.Instance{
		SOPInstanceUID:    "1.2.3.1.1",
		SeriesInstanceUID: "1.2.3.1",
		InstanceNumber:    1,
		FilePath:          "/nas/639380/img001.dcm",
		FileSize:          1024,
	}
	require.NoError(t, store.Upsert(instance, nil))

	// Same file re-scanned with a rewritten header: the row is
	// replaced, not duplicated.
	replacement := &models.Instance{
		SOPInstanceUID:    "1.2.3.1.99",
		SeriesInstanceUID: "1.2.3.1",
		InstanceNumber:    7,
		FilePath:          "/nas/639380/img001.dcm",
		FileSize:          2048,
	}
	require.NoError(t, store.Upsert(replacement, nil))

	n, err := store.Count(nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Get("1.2.3.1.99")
	require.NoError(t, err)
	require.Equal(t, 7, got.InstanceNumber)
	require.Equal(t, int64(2048), got.FileSize)
	require.Nil(t, got.SliceLocation)
}

func TestInstanceStoreSliceLocationRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewInstanceStore(db)

	loc := -42.5
	require.NoError(t, store.Upsert(&models.Instance{
		SOPInstanceUID:    "1.2.3.1.1",
		SeriesInstanceUID: "1.2.3.1",
		FilePath:          "/nas/p/img001.dcm",
		SliceLocation:     &loc,
	}, nil))

	got, err := store.Get("1.2.3.1.1")
	require.NoError(t, err)
	require.NotNil(t, got.SliceLocation)
	require.Equal(t, -42.5, *got.SliceLocation)
}

func TestSeriesStoreRefreshInstanceCount(t *testing.T) {
	db := testDB(t)
	series := NewSeriesStore(db)
	instances := NewInstanceStore(db)

	require.NoError(t, series.CreateIfAbsent(&models.Series{
		SeriesInstanceUID: "1.2.3.1",
		StudyInstanceUID:  "1.2.3",
		SeriesNumber:      1,
		FolderPath:        "/nas/639380",
	}, nil))

	for i, sop := range []string{"1.2.3.1.1", "1.2.3.1.2", "1.2.3.1.3"} {
		require.NoError(t, instances.Upsert(&models.Instance{
			SOPInstanceUID:    sop,
			SeriesInstanceUID: "1.2.3.1",
			InstanceNumber:    i + 1,
			FilePath:          "/nas/639380/img00" + sop,
		}, nil))
		require.NoError(t, series.RefreshInstanceCount("1.2.3.1", nil))
	}

	got, err := series.Get("1.2.3.1")
	require.NoError(t, err)
	require.Equal(t, 3, got.InstanceCount)

	n, err := instances.Count(nil)
	require.NoError(t, err)
	require.Equal(t, n, got.InstanceCount)
}

func TestResetClearsAllTables(t *testing.T) {
	db := testDB(t)

	require.NoError(t, NewPatientStore(db).CreateIfAbsent(&models.Patient{
		PatientID: "639380", PatientName: "DOE JOHN", FolderPath: "/nas/639380",
	}, nil))
	require.NoError(t, NewStudyStore(db).CreateIfAbsent(&models.Study{
		StudyInstanceUID: "1.2.3", PatientID: "639380", FolderPath: "/nas/639380",
	}, nil))

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, Reset(tx))
	require.NoError(t, tx.Commit())

	patients, err := NewPatientStore(db).Count(nil)
	require.NoError(t, err)
	require.Equal(t, 0, patients)

	studies, err := NewStudyStore(db).Count(nil)
	require.NoError(t, err)
	require.Equal(t, 0, studies)
}
