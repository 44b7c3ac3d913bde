package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

func encodePNG(img image.Image, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, err
	}
	return withPHYs(buf.Bytes(), dpi)
}

func encodeJPEG(img image.Image, dpi, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return withJFIF(buf.Bytes(), dpi)
}

func encodeTIFF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBMP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.BMP); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeGIF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.GIF, imaging.GIFNumColors(256)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngHeaderLen covers the signature and the IHDR chunk, which must come first.
const pngHeaderLen = 8 + 4 + 4 + 13 + 4

// withPHYs inserts a pHYs chunk right after IHDR. The encoder in image/png
// has no way to set physical dimensions.
func withPHYs(data []byte, dpi int) ([]byte, error) {
	if len(data) < pngHeaderLen || string(data[12:16]) != "IHDR" {
		return nil, fmt.Errorf("png: unexpected header")
	}
	ppm := uint32(math.Round(float64(dpi) / 0.0254))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:pngHeaderLen]...)
	out = append(out, chunk...)
	return append(out, data[pngHeaderLen:]...), nil
}

// PNGDensity returns the DPI stored in a PNG's pHYs chunk, or 0 if absent.
func PNGDensity(data []byte) int {
	for off := 8; off+8 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		if typ == "pHYs" && off+8+9 <= len(data) && data[off+16] == 1 {
			ppm := binary.BigEndian.Uint32(data[off+8 : off+12])
			return int(math.Round(float64(ppm) * 0.0254))
		}
		if typ == "IDAT" || typ == "IEND" {
			return 0
		}
		off += 12 + n
	}
	return 0
}

// withJFIF inserts a JFIF APP0 segment carrying the density after SOI.
// image/jpeg writes no APP0 segment of its own.
func withJFIF(data []byte, dpi int) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, fmt.Errorf("jpeg: missing SOI marker")
	}
	d := uint16(min(dpi, math.MaxUint16))
	app0 := []byte{
		0xff, 0xe0, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x02, // version 1.2
		0x01, // unit: dots per inch
		byte(d >> 8), byte(d), byte(d >> 8), byte(d),
		0x00, 0x00, // no thumbnail
	}

	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	return append(out, data[2:]...), nil
}

// JPEGDensity returns the DPI stored in a JFIF header, or 0 if absent.
func JPEGDensity(data []byte) int {
	if len(data) < 18 || data[2] != 0xff || data[3] != 0xe0 || string(data[6:11]) != "JFIF\x00" {
		return 0
	}
	if data[13] != 1 {
		return 0
	}
	return int(binary.BigEndian.Uint16(data[14:16]))
}
