package imagedetect

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	perr "genscan/internal/platform/errors"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Decoded is a decoded color image. Pixels is origin based and must not be mutated
type Decoded struct {
	Width    int
	Height   int
	Channels int
	Format   string
	Pixels   *image.NRGBA
}

// Decoder is the optional pixel decoding capability behind the advanced tier
type Decoder interface {
	Available() bool
	Decode(data []byte) (*Decoded, error)
}

// StdDecoder decodes the registered formats with EXIF orientation applied
type StdDecoder struct {
	// MaxPixels rejects headers declaring more than width*height pixels before
	// any pixel memory is allocated, 0 disables the cap
	MaxPixels int64
}

// NewDecoder returns the default decoder capped at maxPixels
func NewDecoder(maxPixels int64) StdDecoder { return StdDecoder{MaxPixels: maxPixels} }

// Available implements Decoder
func (StdDecoder) Available() bool { return true }

// Decode implements Decoder
func (d StdDecoder) Decode(data []byte) (*Decoded, error) {
	kind, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "read %s header", kind)
	}
	if n := int64(hdr.Width) * int64(hdr.Height); d.MaxPixels > 0 && n > d.MaxPixels {
		return nil, perr.TooLargef("%s declares %dx%d pixels, limit is %d", kind, hdr.Width, hdr.Height, d.MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "decode %s", kind)
	}

	px := imaging.Clone(img)
	b := px.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, perr.Validationf("decoded %s image is empty", kind)
	}

	return &Decoded{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 3,
		Format:   kind,
		Pixels:   px,
	}, nil
}

// Sniff returns the MIME type of an image payload from its signature
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", perr.Validationf("empty image payload")
	}
	if !filetype.IsImage(data) {
		return "", perr.Validationf("no image signature")
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeValidation, "match image signature")
	}

	// filetype matches GIF and BMP on their first two or three bytes only
	switch kind.MIME.Value {
	case "image/gif":
		if !bytes.HasPrefix(data, []byte("GIF87a")) && !bytes.HasPrefix(data, []byte("GIF89a")) {
			return "", perr.Validationf("incomplete gif signature")
		}
	case "image/bmp":
		if !bmpHeader(data) {
			return "", perr.Validationf("incomplete bmp header")
		}
	}
	return kind.MIME.Value, nil
}

// bmpHeader checks the file header points past a known DIB header size
func bmpHeader(data []byte) bool {
	if len(data) < 26 {
		return false
	}
	dib := binary.LittleEndian.Uint32(data[14:18])
	switch dib {
	case 12, 40, 52, 56, 64, 108, 124:
	default:
		return false
	}
	return binary.LittleEndian.Uint32(data[10:14]) >= 14+dib
}

// unavailable is a Decoder that never decodes
type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) Decode([]byte) (*Decoded, error) {
	return nil, perr.Unavailablef("image decoding disabled")
}

// Unavailable returns a Decoder that reports itself unavailable, forcing the basic tier
func Unavailable() Decoder { return unavailable{} }
