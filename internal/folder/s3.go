package folder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by the S3 source.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3Options configures an S3 source.
type S3Options struct {
	// Recursive also lists objects below nested prefixes.
	Recursive bool
	// TrashDir is the prefix segment, next to the object, that MoveToTrash uses.
	TrashDir string
}

// S3 is a Source over an S3 bucket. Folders are s3://bucket/prefix URIs.
type S3 struct {
	client S3API
	opts   S3Options
}

// NewS3 returns an S3 source using client.
func NewS3(client S3API, opts S3Options) *S3 {
	if opts.TrashDir == "" {
		opts.TrashDir = DefaultTrashDir
	}
	return &S3{client: client, opts: opts}
}

// NewS3FromEnv builds an S3 source from the default AWS credential chain.
// region may be empty to use the environment's default.
func NewS3FromEnv(ctx context.Context, region string, opts S3Options) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3(s3.NewFromConfig(cfg), opts), nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: not an s3 uri: %s", ErrInvalidFolder, uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: missing bucket: %s", ErrInvalidFolder, uri)
	}
	return bucket, key, nil
}

// ListImages lists the image objects under the folder prefix and returns one
// page, newest first by LastModified.
func (s *S3) ListImages(ctx context.Context, folder string, pageSize, offset int) ([]deck.Photo, error) {
	bucket, prefix, err := ParseS3URI(folder)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if !s.opts.Recursive {
		input.Delimiter = aws.String("/")
	}

	var images []filehandler.ImageFile
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s3Error(ErrFetchFailed, err, folder)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.inTrash(key) {
				continue
			}
			mimeType := filehandler.MIMETypeForName(key)
			if mimeType == "" {
				continue
			}
			images = append(images, filehandler.ImageFile{
				Path:     s3Scheme + bucket + "/" + key,
				Name:     path.Base(key),
				MIMEType: mimeType,
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified),
			})
		}
	}

	filehandler.SortNewestFirst(images)
	pageImages := filehandler.Page(images, offset, pageSize)

	photos := make([]deck.Photo, len(pageImages))
	for i, img := range pageImages {
		photos[i] = deck.Photo{
			URI:      img.Path,
			Name:     img.Name,
			MIMEType: img.MIMEType,
			Size:     img.Size,
			Modified: img.Modified,
		}
	}

	log.Debug().
		Str("folder", folder).
		Int("offset", offset).
		Int("returned", len(photos)).
		Int("total", len(images)).
		Msg("Listed S3 images")

	return photos, nil
}

func (s *S3) inTrash(key string) bool {
	for _, seg := range strings.Split(key, "/") {
		if seg == s.opts.TrashDir {
			return true
		}
	}
	return false
}

// Open streams the object body.
func (s *S3) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, s3Error(ErrOpenFailed, err, uri)
	}
	return out.Body, nil
}

// Dimensions reads the object until the image header is decoded.
func (s *S3) Dimensions(ctx context.Context, uri string) (filehandler.Dimensions, error) {
	body, err := s.Open(ctx, uri)
	if err != nil {
		return filehandler.Dimensions{}, err
	}
	defer body.Close()

	dims, err := filehandler.DecodeDimensions(body)
	if err != nil {
		return filehandler.Dimensions{}, fmt.Errorf("%w: %s: %w", ErrOpenFailed, uri, err)
	}
	return dims, nil
}

// Delete removes the object.
func (s *S3) Delete(ctx context.Context, uri string) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}); err != nil {
		return s3Error(ErrDeleteFailed, err, uri)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Msg("Deleted S3 object")
	return nil
}

// MoveToTrash copies the object under the trash prefix next to it, then
// deletes the original.
func (s *S3) MoveToTrash(ctx context.Context, uri string) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	dir, name := path.Split(key)
	dest := dir + s.opts.TrashDir + "/" + name

	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &bucket,
		Key:        &dest,
		CopySource: aws.String(url.PathEscape(bucket + "/" + key)),
	}); err != nil {
		return s3Error(ErrDeleteFailed, err, uri)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}); err != nil {
		return s3Error(ErrDeleteFailed, err, uri)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Str("dest", dest).Msg("Moved S3 object to trash")
	return nil
}

// s3Error maps S3 API error codes onto the folder error taxonomy.
func s3Error(kind error, err error, subject string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %w: %s: %w", kind, ErrPermissionDenied, subject, err)
		case "NoSuchBucket":
			if kind == ErrFetchFailed {
				return fmt.Errorf("%w: %s: %w", ErrInvalidFolder, subject, err)
			}
		}
	}
	return fmt.Errorf("%w: %s: %w", kind, subject, err)
}
