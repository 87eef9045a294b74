package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putCall struct {
	key, body, contentType, cacheControl string
}

type fakeUploader struct {
	calls  []putCall
	failOn string
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{
		key:          key,
		body:         string(body),
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
	})
	return &s3.PutObjectOutput{}, nil
}

var testFS = fstest.MapFS{
	"js/app.js":     {Data: []byte("app")},
	"js/app.min.js": {Data: []byte("a")},
	"css/ui.css":    {Data: []byte("ui")},
}

func TestPublish(t *testing.T) {
	up := &fakeUploader{}
	p := NewPublisher(up, "shop-assets", "v2/")

	n, err := p.Publish(context.Background(), testFS, []string{"js/app.js", "js/app.min.js", "css/ui.css"})
	if err != nil || n != 3 {
		t.Fatalf("Publish() = %d, %v", n, err)
	}

	want := []putCall{
		{"v2/js/app.js", "app", "text/javascript; charset=utf-8", "public, max-age=3600, must-revalidate"},
		{"v2/js/app.min.js", "a", "text/javascript; charset=utf-8", "public, max-age=31536000, immutable"},
		{"v2/css/ui.css", "ui", "text/css; charset=utf-8", "public, max-age=3600, must-revalidate"},
	}
	for i, w := range want {
		if up.calls[i] != w {
			t.Errorf("call %d = %+v, want %+v", i, up.calls[i], w)
		}
	}
}

func TestPublishStopsOnError(t *testing.T) {
	up := &fakeUploader{failOn: "js/app.min.js"}
	p := NewPublisher(up, "b", "")

	n, err := p.Publish(context.Background(), testFS, []string{"js/app.js", "js/app.min.js", "css/ui.css"})
	if err == nil || !strings.Contains(err.Error(), "js/app.min.js") {
		t.Errorf("Publish() error = %v", err)
	}
	if n != 1 || len(up.calls) != 1 {
		t.Errorf("published %d (%d calls), want 1", n, len(up.calls))
	}
}

func TestPublishMissingFile(t *testing.T) {
	p := NewPublisher(&fakeUploader{}, "b", "")
	if _, err := p.Publish(context.Background(), testFS, []string{"nope.js"}); err == nil {
		t.Error("Publish() should fail for a missing file")
	}
}

func TestPublishCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	up := &fakeUploader{}

	n, err := NewPublisher(up, "b", "").Publish(ctx, testFS, []string{"js/app.js"})
	if !errors.Is(err, context.Canceled) || n != 0 || len(up.calls) != 0 {
		t.Errorf("Publish() = %d, %v", n, err)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.js":     "text/javascript; charset=utf-8",
		"a.CSS":    "text/css; charset=utf-8",
		"logo.png": "image/png",
		"blob":     "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
