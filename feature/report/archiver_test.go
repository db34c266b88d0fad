package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/storage"
	"floorplan-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const runID = "6f1c2a3b-4d5e-4f60-8a9b-0c1d2e3f4a5b"

func newArchiver(client *mocks.Client) *Archiver {
	return NewArchiver(client, storage.Config{Bucket: "reports", Prefix: "/runs/", Region: "us-east-1"}, zap.NewNop())
}

func sampleReport() *reconcile.RunReport {
	return &reconcile.RunReport{
		ID:            runID,
		StartedAt:     time.Date(2026, 3, 4, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600)),
		State:         reconcile.StateCommitted,
		Inserted:      2,
		Skipped:       []reconcile.Skip{},
		MissingTables: []string{"ct.b9_p1"},
	}
}

func listOf(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func TestArchiver_Key(t *testing.T) {
	a := newArchiver(new(mocks.Client))
	assert.Equal(t, "runs/2026/03/05/"+runID+".json", a.Key(sampleReport()))
}

func TestArchiver_Archive(t *testing.T) {
	client := new(mocks.Client)
	a := newArchiver(client)

	var body []byte
	client.On("BucketExists", mock.Anything, "reports").Return(false, nil).Once()
	client.On("MakeBucket", mock.Anything, "reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil).Once()
	client.On("PutObject", mock.Anything, "reports", "runs/2026/03/05/"+runID+".json", mock.Anything, mock.Anything,
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/json" })).
		Run(func(args mock.Arguments) {
			body, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil).Twice()

	key, err := a.Archive(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "runs/2026/03/05/"+runID+".json", key)

	var decoded reconcile.RunReport
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, runID, decoded.ID)
	assert.Equal(t, reconcile.StateCommitted, decoded.State)
	assert.Equal(t, []string{"ct.b9_p1"}, decoded.MissingTables)

	// The bucket is only checked once.
	_, err = a.Archive(context.Background(), sampleReport())
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchiver_ArchiveErrors(t *testing.T) {
	t.Run("BucketCheck", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, errors.New("dial tcp"))

		_, err := newArchiver(client).Archive(context.Background(), sampleReport())
		assert.ErrorIs(t, err, reconcile.ErrTransientIO)
	})

	t.Run("Upload", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(true, nil)
		client.On("PutObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("access denied"))

		_, err := newArchiver(client).Archive(context.Background(), sampleReport())
		assert.ErrorIs(t, err, reconcile.ErrTransientIO)
		assert.Contains(t, err.Error(), "access denied")
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestArchiver_List(t *testing.T) {
	client := new(mocks.Client)
	a := newArchiver(client)
	older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	client.On("ListObjects", mock.Anything, "reports", minio.ListObjectsOptions{Prefix: "runs/", Recursive: true}).
		Return(listOf(
			minio.ObjectInfo{Key: "runs/2026/03/01/a.json", Size: 10, LastModified: older},
			minio.ObjectInfo{Key: "runs/2026/03/02/b.json", Size: 20, LastModified: newer},
			minio.ObjectInfo{Key: "runs/2026/03/02/notes.txt", LastModified: newer},
		))

	entries, err := a.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "a", entries[1].ID)
	assert.Equal(t, int64(20), entries[0].Size)
}

func TestArchiver_ListLimitAndError(t *testing.T) {
	client := new(mocks.Client)
	now := time.Now()
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).
		Return(listOf(
			minio.ObjectInfo{Key: "runs/x/1.json", LastModified: now},
			minio.ObjectInfo{Key: "runs/x/2.json", LastModified: now.Add(time.Second)},
		)).Once()
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).
		Return(listOf(minio.ObjectInfo{Err: errors.New("timeout")})).Once()

	a := newArchiver(client)
	entries, err := a.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].ID)

	_, err = a.List(context.Background(), 0)
	assert.ErrorIs(t, err, reconcile.ErrTransientIO)
}

func TestArchiver_Get(t *testing.T) {
	client := new(mocks.Client)
	a := newArchiver(client)
	key := "runs/2026/03/05/" + runID + ".json"

	data, err := json.Marshal(sampleReport())
	require.NoError(t, err)

	client.On("ListObjects", mock.Anything, "reports", mock.Anything).
		Return(listOf(minio.ObjectInfo{Key: key, LastModified: time.Now()}))
	client.On("GetObject", mock.Anything, "reports", key, mock.Anything).
		Return(io.NopCloser(strings.NewReader(string(data))), nil)

	got, err := a.Get(context.Background(), strings.ToUpper(runID))
	require.NoError(t, err)
	assert.Equal(t, runID, got.ID)
	assert.Equal(t, 2, got.Inserted)
}

func TestArchiver_GetMissing(t *testing.T) {
	client := new(mocks.Client)
	a := newArchiver(client)

	_, err := a.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidID)

	client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return(listOf())
	_, err = a.Get(context.Background(), runID)
	assert.ErrorIs(t, err, ErrNotFound)
}
