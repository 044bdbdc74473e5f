package output

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for output files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported image format")

// JPEGQuality is the encoder quality used by WriteJPEG
const JPEGQuality = 90

// ImageWriter encodes an RGBA8 pixel buffer of the given size to w
type ImageWriter func(w io.Writer, buf []byte, width, height int) error

// ToImage wraps a row-major RGBA8 buffer, top row first, as an image
func ToImage(buf []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size %dx%d must be positive", width, height)
	}
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("buffer has %d bytes, expected %d for %dx%d RGBA", len(buf), width*height*4, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, buf)
	return img, nil
}

// WritePNG encodes the buffer as PNG
func WritePNG(w io.Writer, buf []byte, width, height int) error {
	img, err := ToImage(buf, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteJPEG encodes the buffer as JPEG, dropping alpha
func WriteJPEG(w io.Writer, buf []byte, width, height int) error {
	img, err := ToImage(buf, width, height)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
}

// WritePPM encodes the buffer as binary PPM (P6), dropping alpha
func WritePPM(w io.Writer, buf []byte, width, height int) error {
	if _, err := ToImage(buf, width, height); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P6\n%d %d 255\n", width, height)
	for i := 0; i < len(buf); i += 4 {
		bw.Write(buf[i : i+3])
	}
	return bw.Flush()
}

// WriterFor picks the encoder from the file extension: .png, .jpg/.jpeg or .ppm
func WriterFor(filename string) (ImageWriter, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		return WritePNG, nil
	case ".jpg", ".jpeg":
		return WriteJPEG, nil
	case ".ppm":
		return WritePPM, nil
	default:
		return nil, fmt.Errorf("%w %q (supported: png, jpg/jpeg, ppm)", ErrUnsupportedFormat, ext)
	}
}

// WriteFile encodes the buffer into filename, creating parent directories
func WriteFile(filename string, buf []byte, width, height int) error {
	write, err := WriterFor(filename)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if err := write(file, buf, width, height); err != nil {
		file.Close()
		return fmt.Errorf("error encoding %s: %w", filepath.Base(filename), err)
	}
	return file.Close()
}
