package media

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestStageCopiesAllowedUpload(t *testing.T) {
	dir := t.TempDir()
	stager := NewStager(dir, 1024)

	path, err := stager.Stage(fileHeader(t, "clip.mp4", "video/mp4", []byte("frames")), CategoryVideos)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".mp4" {
		t.Fatalf("unexpected staged path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "frames" {
		t.Fatalf("unexpected staged content %q (%v)", data, err)
	}
}

func TestStageFallsBackToExtension(t *testing.T) {
	stager := NewStager(t.TempDir(), 1024)

	path, err := stager.Stage(fileHeader(t, "avatar.PNG", "application/octet-stream", []byte("png")), CategoryImages)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("expected .png extension, got %q", path)
	}
}

func TestStageRejectsUnsupportedTypes(t *testing.T) {
	stager := NewStager(t.TempDir(), 1024)

	cases := []struct {
		name        string
		filename    string
		contentType string
		want        Category
	}{
		{name: "gif", filename: "a.gif", contentType: "image/gif", want: CategoryImages},
		{name: "text", filename: "notes.txt", contentType: "text/plain", want: CategoryImages},
		{name: "video as image", filename: "clip.mp4", contentType: "video/mp4", want: CategoryImages},
		{name: "image as video", filename: "a.jpg", contentType: "image/jpeg", want: CategoryVideos},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stager.Stage(fileHeader(t, tc.filename, tc.contentType, []byte("x")), tc.want)
			if !errors.Is(err, ErrUnsupportedType) {
				t.Fatalf("expected ErrUnsupportedType, got %v", err)
			}
		})
	}
}

func TestStageRejectsOversizedUpload(t *testing.T) {
	dir := t.TempDir()
	stager := NewStager(dir, 4)

	_, err := stager.Stage(fileHeader(t, "big.mp4", "video/mp4", []byte("too large")), CategoryVideos)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected nothing staged, found %d files", len(entries))
	}
}

func TestRemoveStaged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staged.png")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	RemoveStaged(context.Background(), path, "", filepath.Join(dir, "missing.png"))

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected staged file removed, stat err = %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thumb.jpg")
	if err := os.WriteFile(path, []byte("jpg"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewMemoryStore("https://cdn.test")
	asset, err := store.Store(context.Background(), path, CategoryImages)
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if !strings.HasPrefix(asset.StorageID, "images/") || !strings.HasSuffix(asset.StorageID, ".jpg") {
		t.Fatalf("unexpected storage id %q", asset.StorageID)
	}
	if asset.URL != "https://cdn.test/"+asset.StorageID {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if !store.Has(asset.StorageID) {
		t.Fatal("expected object to be stored")
	}

	if err := store.Delete(context.Background(), asset.StorageID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if store.Has(asset.StorageID) {
		t.Fatal("expected object to be removed")
	}
}

func TestObjectKeyRejectsUnknownCategory(t *testing.T) {
	if _, err := objectKey("a.png", Category("docs")); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if _, err := objectKey("", CategoryImages); err == nil {
		t.Fatal("expected error for empty path")
	}
}
