package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CloudStorageClient archives generated reports in a private bucket.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// ObjectName builds reports/<owner>/<yyyymmdd-hhmmss>-<uuid>.xlsx.
func ObjectName(owner string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s-%s.xlsx", owner, at.UTC().Format("20060102-150405"), uuid.New().String())
}

// UploadReport stores an XLSX workbook and returns its object name.
func (c *CloudStorageClient) UploadReport(ctx context.Context, owner string, report io.Reader) (string, error) {
	name := ObjectName(owner, time.Now())

	wc := c.client.Bucket(c.bucketName).Object(name).NewWriter(ctx)
	wc.ContentType = xlsxContentType
	wc.Metadata = map[string]string{"owner": owner}

	if _, err := io.Copy(wc, report); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy report to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	return fmt.Sprintf("gs://%s/%s", c.bucketName, name), nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
