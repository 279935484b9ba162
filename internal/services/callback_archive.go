package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CallbackArchive keeps the raw query string of every gateway callback.
type CallbackArchive interface {
	Store(ctx context.Context, hash string, params url.Values, receivedAt time.Time) error
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioCallbackArchive struct {
	client *minio.Client
	bucket string
}

func NewMinioCallbackArchive(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (CallbackArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioCallbackArchive{client: client, bucket: bucket}, nil
}

// callbackObjectName groups archived callbacks by UTC day.
func callbackObjectName(hash string, receivedAt time.Time) string {
	if hash == "" {
		hash = "unmatched"
	}
	t := receivedAt.UTC()
	return fmt.Sprintf("callbacks/%s/%s-%d.json", t.Format("2006/01/02"), url.PathEscape(hash), t.UnixNano())
}

func (m *minioCallbackArchive) Store(ctx context.Context, hash string, params url.Values, receivedAt time.Time) error {
	payload, err := json.Marshal(map[string]interface{}{
		"received_at": receivedAt.UTC().Format(time.RFC3339Nano),
		"params":      params,
	})
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, callbackObjectName(hash, receivedAt), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *minioCallbackArchive) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioCallbackArchive) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
