package media

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestProcessKeepsSmallImagesUntouched(t *testing.T) {
	data := encodeTestJPEG(t, 640, 480)
	processor := NewImageProcessor(2560)

	result, err := processor.Process(context.Background(), Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    "small.jpg",
		ContentType: "image/jpeg",
	}, 0)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Resized {
		t.Fatal("640x480 should not be resized at max 2560")
	}
	if !bytes.Equal(result.Bytes, data) {
		t.Fatal("untouched image bytes should pass through unchanged")
	}
}

func TestProcessDownscalesOversizedImages(t *testing.T) {
	data := encodeTestJPEG(t, 800, 200)
	processor := NewImageProcessor(2560)

	result, err := processor.Process(context.Background(), Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    "wide.jpg",
		ContentType: "image/jpeg",
	}, 400)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !result.Resized {
		t.Fatal("800x200 should be resized at max 400")
	}
	if result.ContentType != "image/jpeg" {
		t.Fatalf("expected jpeg output, got %q", result.ContentType)
	}

	decoded, _, err := image.Decode(bytes.NewReader(result.Bytes))
	if err != nil {
		t.Fatalf("decode resized image: %v", err)
	}
	bound := decoded.Bounds()
	if bound.Dx() != 400 || bound.Dy() != 100 {
		t.Fatalf("expected 400x100 after downscale, got %dx%d", bound.Dx(), bound.Dy())
	}
}

func TestProcessPreservesPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 600))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}

	processor := NewImageProcessor(2560)
	result, err := processor.Process(context.Background(), Upload{
		Reader:      bytes.NewReader(buf.Bytes()),
		Size:        int64(buf.Len()),
		FileName:    "shot.png",
		ContentType: "image/png",
	}, 300)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !result.Resized {
		t.Fatal("600x600 should be resized at max 300")
	}
	if result.ContentType != "image/png" {
		t.Fatalf("resized png should stay png, got %q", result.ContentType)
	}
}

func TestScaleToFit(t *testing.T) {
	cases := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{4000, 2000, 1000, 1000, 500},
		{2000, 4000, 1000, 500, 1000},
		{3000, 3000, 1500, 1500, 1500},
		{5000, 1, 100, 100, 1},
	}
	for _, tc := range cases {
		gotW, gotH := scaleToFit(tc.w, tc.h, tc.max)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Fatalf("scaleToFit(%d,%d,%d) = %dx%d, want %dx%d", tc.w, tc.h, tc.max, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestNormalizeContentType(t *testing.T) {
	if got := normalizeContentType("IMAGE/JPEG; charset=binary", "x.bin"); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", got)
	}
	if got := normalizeContentType("application/octet-stream", "photo.png"); got != "image/png" {
		t.Fatalf("expected image/png from extension, got %q", got)
	}
	if got := normalizeContentType("", "unknown"); got != "application/octet-stream" {
		t.Fatalf("expected fallback type, got %q", got)
	}
}
