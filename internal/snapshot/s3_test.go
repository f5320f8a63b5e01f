package snapshot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutObject struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3_Save(t *testing.T) {
	fake := &fakePutObject{}
	store := &S3{client: fake, bucket: "snaps", prefix: "images"}

	location, err := store.Save(context.Background(), "Alice_20240301090507.jpg", []byte("jpeg"))

	require.NoError(t, err)
	assert.Equal(t, "s3://snaps/images/Alice_20240301090507.jpg", location)
	assert.Equal(t, "snaps", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "images/Alice_20240301090507.jpg", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, []byte("jpeg"), fake.body)
}

func TestS3_Save_NoPrefix(t *testing.T) {
	fake := &fakePutObject{}
	store := &S3{client: fake, bucket: "snaps"}

	location, err := store.Save(context.Background(), "a.jpg", []byte("x"))

	require.NoError(t, err)
	assert.Equal(t, "s3://snaps/a.jpg", location)
}

func TestS3_Save_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "access denied",
			err:     &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "missing bucket",
			err:     &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "gone"},
			wantErr: ErrBucketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &S3{client: &fakePutObject{err: tt.err}, bucket: "snaps"}

			_, err := store.Save(context.Background(), "a.jpg", []byte("x"))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestS3_Save_OtherErrorsWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	store := &S3{client: &fakePutObject{err: cause}, bucket: "snaps"}

	_, err := store.Save(context.Background(), "a.jpg", []byte("x"))

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAccessDenied)
	assert.NotErrorIs(t, err, ErrBucketNotFound)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewS3_CustomEndpointUsesPathStyle(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3(context.Background(), S3Config{
		Bucket:    "snaps",
		Region:    "us-east-1",
		Prefix:    "images",
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "Bob_20240301090507.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "s3://snaps/images/Bob_20240301090507.jpg", location)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/snaps/images/Bob_20240301090507.jpg", path)
	assert.Contains(t, string(body), "jpeg-bytes")
}

func TestNewS3_CustomEndpointMissingBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message><BucketName>snaps</BucketName></Error>`)
	}))
	defer srv.Close()

	store, err := NewS3(context.Background(), S3Config{
		Bucket:    "snaps",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrBucketNotFound)
}
