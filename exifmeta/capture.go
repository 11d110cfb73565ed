// Package exifmeta reads capture times embedded in image files.
package exifmeta

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dsoprea/go-exif/v3"
	heicexif "github.com/dsoprea/go-heic-exif-extractor"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"
	pngstructure "github.com/dsoprea/go-png-image-structure"
	riimage "github.com/dsoprea/go-utility/image"
)

const exifLayout = "2006:01:02 15:04:05"

// OutputLayout matches the capture timestamps read from the photo library.
const OutputLayout = "2006-01-02 15:04:05"

// ErrNoCaptureTime is returned when a file carries no usable date tag.
var ErrNoCaptureTime = errors.New("no capture time in exif")

// ErrUnsupported is returned for file types without an EXIF parser.
var ErrUnsupported = errors.New("unsupported file type")

type parser interface {
	Parse(rs io.ReadSeeker, size int) (riimage.MediaContext, error)
}

func parserFor(ext string) parser {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpegstructure.NewJpegMediaParser()
	case ".png":
		return pngstructure.NewPngMediaParser()
	case ".heic", ".heif":
		return heicexif.NewHeicExifMediaParser()
	default:
		return nil
	}
}

// Supported reports whether files with this extension can be read.
func Supported(ext string) bool {
	return parserFor(ext) != nil
}

// CaptureTime returns the original capture time of the image at path,
// formatted with OutputLayout. ext selects the parser since blobs carry no suffix.
func CaptureTime(path string, ext string) (string, error) {
	p := parserFor(ext)
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	var raw []byte
	if mc, err := p.Parse(f, int(info.Size())); err == nil {
		_, raw, _ = mc.Exif()
	}
	if len(raw) == 0 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		raw, err = exif.SearchAndExtractExifWithReader(f)
		if errors.Is(err, exif.ErrNoExif) {
			return "", ErrNoCaptureTime
		}
		if err != nil {
			return "", fmt.Errorf("could not search exif: %w", err)
		}
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return "", fmt.Errorf("could not parse exif: %w", err)
	}

	values := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.TagName == "" {
			continue
		}
		v := strings.TrimSpace(strings.ReplaceAll(tag.FormattedFirst, "\x00", ""))
		if v != "" {
			values[tag.TagName] = v
		}
	}

	return captureFromTags(values)
}

func captureFromTags(values map[string]string) (string, error) {
	for _, name := range []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"} {
		v, ok := values[name]
		if !ok {
			continue
		}
		t, err := time.Parse(exifLayout, v)
		if err != nil {
			continue
		}
		return t.Format(OutputLayout), nil
	}
	return "", ErrNoCaptureTime
}
