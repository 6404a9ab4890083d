package upload_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/svc/thumbnail"
	"github.com/dmitrymomot/filevault/svc/upload"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) EnsureDir(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStorage) WriteFile(ctx context.Context, key string, data []byte) error {
	return m.Called(ctx, key, data).Error(0)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (*queue.Job, error) {
	args := m.Called(ctx, payload, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Job), args.Error(1)
}

func TestPipeline_Store(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes decoded bytes under a fresh key", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewLocalStorage(t.TempDir() + "/nested/root")
		require.NoError(t, err)
		p := upload.NewPipeline(storage, nil)

		key, err := p.Store(ctx, base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n")))
		require.NoError(t, err)
		assert.Len(t, key, 36)

		obj, err := storage.Open(ctx, key)
		require.NoError(t, err)
		defer obj.Body.Close()
		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Equal(t, "Hello Webstack!\n", string(data))

		other, err := p.Store(ctx, base64.StdEncoding.EncodeToString([]byte("x")))
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("accepts unpadded and url-safe input", func(t *testing.T) {
		t.Parallel()
		storage := new(MockStorage)
		storage.On("EnsureDir", mock.Anything).Return(nil)
		storage.On("WriteFile", mock.Anything, "k", []byte{0xfb, 0xff}).Return(nil).Twice()

		p := upload.NewPipeline(storage, nil, upload.WithKeyGenerator(func() string { return "k" }))
		_, err := p.Store(ctx, "-_8")
		require.NoError(t, err)
		_, err = p.Store(ctx, "+/8=")
		require.NoError(t, err)
		storage.AssertExpectations(t)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		t.Parallel()
		storage := new(MockStorage)
		p := upload.NewPipeline(storage, nil)
		_, err := p.Store(ctx, "!!! not base64 !!!")
		assert.ErrorIs(t, err, upload.ErrInvalidData)
		storage.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failures surface", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("disk full")

		dirFail := new(MockStorage)
		dirFail.On("EnsureDir", mock.Anything).Return(boom)
		_, err := upload.NewPipeline(dirFail, nil).Store(ctx, "eA==")
		assert.ErrorIs(t, err, upload.ErrStoreFailure)
		assert.ErrorIs(t, err, boom)

		writeFail := new(MockStorage)
		writeFail.On("EnsureDir", mock.Anything).Return(nil)
		writeFail.On("WriteFile", mock.Anything, mock.Anything, mock.Anything).Return(boom)
		_, err = upload.NewPipeline(writeFail, nil).Store(ctx, "eA==")
		assert.ErrorIs(t, err, upload.ErrStoreFailure)
		assert.ErrorIs(t, err, boom)
	})
}

func TestPipeline_EnqueueThumbnail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fileID, userID := objectid.New(), objectid.New()

	t.Run("enqueues a named job", func(t *testing.T) {
		t.Parallel()
		jobs := queue.NewMemoryStorage()
		enq, err := queue.NewEnqueuer(jobs)
		require.NoError(t, err)

		upload.NewPipeline(nil, enq).EnqueueThumbnail(ctx, fileID, userID)

		all := jobs.Jobs()
		require.Len(t, all, 1)
		assert.Equal(t, thumbnail.JobName, all[0].Name)
		assert.Equal(t, upload.ThumbnailMaxRetries, all[0].MaxRetries)
		assert.Equal(t, queue.JobStatusPending, all[0].Status)
	})

	t.Run("failures are logged only", func(t *testing.T) {
		t.Parallel()
		enq := new(MockEnqueuer)
		enq.On("Enqueue", mock.Anything, thumbnail.Payload{FileID: fileID, UserID: userID}, mock.Anything).
			Return(nil, errors.New("queue down"))

		var logs bytes.Buffer
		log := slog.New(slog.NewTextHandler(&logs, nil))
		upload.NewPipeline(nil, enq, upload.WithLogger(log)).EnqueueThumbnail(ctx, fileID, userID)

		enq.AssertExpectations(t)
		assert.Contains(t, logs.String(), "failed to enqueue thumbnail job")
		assert.Contains(t, logs.String(), fileID.String())
	})
}
