package minio

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/HSCode-Intelligence/internal/application/evaluation"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

var ErrReportNotFound = errors.New(errors.ErrCodeNotFound, "report not found")

const (
	reportPrefix      = "evaluation/"
	reportContentType = "application/json"
)

// ReportInfo describes one stored report artifact.
type ReportInfo struct {
	Name         string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ReportStore persists evaluation report artifacts under the evaluation/
// prefix of the report bucket.
type ReportStore struct {
	client *Client
	logger logging.Logger
}

var _ evaluation.ReportStore = (*ReportStore)(nil)

func NewReportStore(client *Client, logger logging.Logger) *ReportStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportStore{client: client, logger: logger}
}

// Put uploads a report. The name is used as the object key verbatim so the
// runner controls the timestamped layout.
func (s *ReportStore) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.New(errors.ErrCodeValidation, "report name required")
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeValidation, "report payload required")
	}

	info, err := s.client.API().PutObject(ctx, s.client.Bucket(), name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: reportContentType})
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeInternal, "failed to upload report %s", name)
	}

	s.logger.Info("Evaluation report uploaded",
		logging.String("object", info.Key),
		logging.Int64("size", info.Size))
	return nil
}

// Get downloads a report by object name.
func (s *ReportStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.API().GetObject(ctx, s.client.Bucket(), name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeInternal, "failed to open report %s", name)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrReportNotFound
		}
		return nil, errors.Wrapf(err, errors.ErrCodeInternal, "failed to stat report %s", name)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeInternal, "failed to read report %s", name)
	}
	return data, nil
}

// List returns stored reports, newest first.
func (s *ReportStore) List(ctx context.Context) ([]ReportInfo, error) {
	ch := s.client.API().ListObjects(ctx, s.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    reportPrefix,
		Recursive: true,
	})

	var reports []ReportInfo
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeInternal, "failed to list reports")
		}
		reports = append(reports, ReportInfo{
			Name:         obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].LastModified.After(reports[j].LastModified)
	})
	return reports, nil
}

// Latest downloads the most recently stored report.
func (s *ReportStore) Latest(ctx context.Context) (*ReportInfo, []byte, error) {
	reports, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(reports) == 0 {
		return nil, nil, ErrReportNotFound
	}
	data, err := s.Get(ctx, reports[0].Name)
	if err != nil {
		return nil, nil, err
	}
	return &reports[0], data, nil
}

// Delete removes a stored report.
func (s *ReportStore) Delete(ctx context.Context, name string) error {
	if err := s.client.API().RemoveObject(ctx, s.client.Bucket(), name, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, errors.ErrCodeInternal, "failed to delete report %s", name)
	}
	return nil
}

// DownloadURL produces a time-limited link to a stored report.
func (s *ReportStore) DownloadURL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	return s.client.PresignedGetURL(ctx, name, expiry)
}

//Personal.AI order the ending
