package folder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeS3 struct {
	objects  map[string]time.Time
	bodies   map[string][]byte
	pageSize int
	err      error

	listCalls []*s3.ListObjectsV2Input
	deleted   []string
	copied    []string
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listCalls = append(f.listCalls, in)
	if f.err != nil {
		return nil, f.err
	}
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if aws.ToString(in.Delimiter) == "/" && strings.Contains(strings.TrimPrefix(k, prefix), "/") {
			continue
		}
		keys = append(keys, k)
	}
	// Stable order, like S3's lexicographic listing.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		for i, k := range keys {
			if k == tok {
				start = i
			}
		}
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.bodies[k]) + 10)),
			LastModified: aws.Time(f.objects[k]),
		})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.bodies[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "not found"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.copied = append(f.copied, aws.ToString(in.CopySource)+"->"+aws.ToString(in.Key))
	return &s3.CopyObjectOutput{}, nil
}

func newFakeS3() *fakeS3 {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return &fakeS3{
		objects: map[string]time.Time{
			"trip/a.jpg":                     base,
			"trip/b.jpg":                     base.Add(time.Hour),
			"trip/c.png":                     base.Add(2 * time.Hour),
			"trip/notes.txt":                 base.Add(3 * time.Hour),
			"trip/day2/d.jpg":                base.Add(4 * time.Hour),
			"trip/.photoswipe-trash/old.jpg": base.Add(5 * time.Hour),
		},
		bodies: map[string][]byte{},
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri         string
		bucket, key string
		wantErr     bool
	}{
		{"s3://photos/trip/a.jpg", "photos", "trip/a.jpg", false},
		{"s3://photos", "photos", "", false},
		{"s3:///key", "", "", true},
		{"/local/path", "", "", true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestS3ListImages(t *testing.T) {
	fake := newFakeS3()
	fake.pageSize = 2
	src := NewS3(fake, S3Options{})

	photos, err := src.ListImages(context.Background(), "s3://photos/trip", 20, 0)
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	var got []string
	for _, p := range photos {
		got = append(got, p.URI)
	}
	want := []string{"s3://photos/trip/c.png", "s3://photos/trip/b.jpg", "s3://photos/trip/a.jpg"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListImages() = %v, want %v", got, want)
	}
	if len(fake.listCalls) < 2 {
		t.Errorf("ListObjectsV2 called %d times, want pagination", len(fake.listCalls))
	}
	if aws.ToString(fake.listCalls[0].Prefix) != "trip/" {
		t.Errorf("Prefix = %q, want trip/", aws.ToString(fake.listCalls[0].Prefix))
	}
	if photos[0].Name != "c.png" || photos[0].MIMEType != "image/png" {
		t.Errorf("photo = %+v", photos[0])
	}

	page, err := src.ListImages(context.Background(), "s3://photos/trip/", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Name != "b.jpg" {
		t.Errorf("page(1,1) = %v, want [b.jpg]", page)
	}
}

func TestS3ListImagesRecursive(t *testing.T) {
	fake := newFakeS3()
	src := NewS3(fake, S3Options{Recursive: true})

	photos, err := src.ListImages(context.Background(), "s3://photos/trip", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 4 || photos[0].Name != "d.jpg" {
		t.Errorf("recursive ListImages() = %v, want d.jpg first and no trash", photos)
	}
}

func TestS3ErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"AccessDenied", ErrPermissionDenied},
		{"NoSuchBucket", ErrInvalidFolder},
		{"InternalError", ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			fake := newFakeS3()
			fake.err = &smithy.GenericAPIError{Code: tt.code}
			_, err := NewS3(fake, S3Options{}).ListImages(context.Background(), "s3://photos/trip", 20, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("ListImages() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestS3DeleteAndMove(t *testing.T) {
	fake := newFakeS3()
	src := NewS3(fake, S3Options{})
	ctx := context.Background()

	if err := src.Delete(ctx, "s3://photos/trip/a.jpg"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := src.MoveToTrash(ctx, "s3://photos/trip/b.jpg"); err != nil {
		t.Fatalf("MoveToTrash() error = %v", err)
	}
	if len(fake.copied) != 1 || !strings.HasSuffix(fake.copied[0], "->trip/.photoswipe-trash/b.jpg") {
		t.Errorf("copied = %v", fake.copied)
	}
	if strings.Join(fake.deleted, ",") != "trip/a.jpg,trip/b.jpg" {
		t.Errorf("deleted = %v", fake.deleted)
	}

	fake.err = &smithy.GenericAPIError{Code: "AccessDenied"}
	err := src.Delete(ctx, "s3://photos/trip/c.png")
	if !errors.Is(err, ErrDeleteFailed) || !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete() error = %v, want ErrDeleteFailed and ErrPermissionDenied", err)
	}
}

func TestS3Dimensions(t *testing.T) {
	fake := newFakeS3()
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 7, 5)))
	fake.bodies["trip/c.png"] = buf.Bytes()
	src := NewS3(fake, S3Options{})

	dims, err := src.Dimensions(context.Background(), "s3://photos/trip/c.png")
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if dims.Width != 7 || dims.Height != 5 {
		t.Errorf("Dimensions() = %+v, want 7x5", dims)
	}
	if _, err := src.Dimensions(context.Background(), "s3://photos/trip/missing.jpg"); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Dimensions(missing) error = %v, want ErrOpenFailed", err)
	}
}
