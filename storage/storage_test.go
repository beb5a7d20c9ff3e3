package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockObjectStorage is a mock implementation of ObjectStorage.
type mockObjectStorage struct {
	mock.Mock
	body []byte
}

func (m *mockObjectStorage) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	if input.Body != nil {
		m.body, _ = io.ReadAll(input.Body)
		input.Body = nil
	}
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UploadOutput), args.Error(1)
}

func (m *mockObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *mockObjectStorage) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	args := m.Called(ctx, bucket, key, expirySeconds)
	return args.String(0), args.Error(1)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, runID, file, want string
	}{
		{"converted/", "run-1", "/tmp/out/report_converted.docx", "converted/run-1/report_converted.docx"},
		{"", "run-1", "a.docx", "run-1/a.docx"},
		{"", "", "a.docx", "a.docx"},
		{"/docs/", "", "dir/a.docx", "docs/a.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.runID, tt.file))
	}
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, os.WriteFile(file, []byte("PK-docx"), 0o600))

	store := new(mockObjectStorage)
	store.On("Upload", ctx, UploadInput{
		Bucket:      "bucket",
		Key:         "k/out.docx",
		ContentType: DocxContentType,
		Size:        7,
	}).Return(&UploadOutput{Location: "s3://bucket/k/out.docx", ETag: "\"abc\""}, nil)

	out, err := UploadFile(ctx, store, "bucket", "k/out.docx", file)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/k/out.docx", out.Location)
	assert.Equal(t, []byte("PK-docx"), store.body)
	store.AssertExpectations(t)
}

func TestUploadFile_Errors(t *testing.T) {
	ctx := context.Background()
	store := new(mockObjectStorage)
	_, err := UploadFile(ctx, store, "b", "k", filepath.Join(t.TempDir(), "missing.docx"))
	assert.Error(t, err)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)

	file := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	store.On("Upload", ctx, mock.Anything).Return(nil, errors.New("s3 upload: denied"))
	_, err = UploadFile(ctx, store, "b", "k", file)
	assert.EqualError(t, err, "s3 upload: denied")
}
