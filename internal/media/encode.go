package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	apierrors "github.com/diogo/roomchat/internal/errors"
)

// DataURIPrefix precedes the base64 payload of every encoded image
const DataURIPrefix = "data:image/jpeg;base64,"

// PickOptions controls how a picked image is prepared
type PickOptions struct {
	// AllowsEditing crops the image to Aspect around its center
	AllowsEditing bool
	// Aspect is width:height
	Aspect [2]int
	// Quality is the JPEG quality in (0, 1]
	Quality float64
	// MaxWidth bounds the output width; 0 keeps the cropped size
	MaxWidth int
	// Base64 requests the encoded payload in memory
	Base64 bool
}

// DefaultPickOptions returns the options the chat screen uses
func DefaultPickOptions() PickOptions {
	return PickOptions{
		AllowsEditing: true,
		Aspect:        [2]int{4, 3},
		Quality:       0.2,
		MaxWidth:      1024,
		Base64:        true,
	}
}

// Asset is a picked image after editing and compression
type Asset struct {
	Path   string
	Width  int
	Height int
	// Base64 is empty unless PickOptions.Base64 was set
	Base64 string
}

// DataURI embeds the asset payload in a data URI
func DataURI(a *Asset) string {
	return DataURIPrefix + a.Base64
}

// EncodeFile decodes the image at path and prepares it with opts.
// Undecodable files return an error wrapping ErrNoImageData.
func EncodeFile(path string, opts PickOptions) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrNoImageData, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrNoImageData, err)
	}

	asset, err := Encode(img, opts)
	if err != nil {
		return nil, err
	}
	asset.Path = path
	return asset, nil
}

// Encode crops, scales and JPEG-encodes img
func Encode(img image.Image, opts PickOptions) (*Asset, error) {
	if img.Bounds().Empty() {
		return &Asset{}, nil
	}

	if opts.AllowsEditing {
		img = CropToAspect(img, opts.Aspect[0], opts.Aspect[1])
	}
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		b := img.Bounds()
		img = Resize(img, opts.MaxWidth, b.Dy()*opts.MaxWidth/b.Dx())
	}

	b := img.Bounds()
	asset := &Asset{Width: b.Dx(), Height: b.Dy()}
	if !opts.Base64 {
		return asset, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrNoImageData, err)
	}
	asset.Base64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	return asset, nil
}

func jpegQuality(q float64) int {
	n := int(q * 100)
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

// CropToAspect returns the largest centered region of img with ratio w:h
func CropToAspect(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	cw, ch := b.Dx(), b.Dy()
	if cw*h > ch*w {
		cw = ch * w / h
	} else {
		ch = cw * h / w
	}
	if cw == 0 || ch == 0 {
		return img
	}

	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	rect := image.Rect(x0, y0, x0+cw, y0+ch)

	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}

	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			dst.Set(x, y, img.At(x0+x, y0+y))
		}
	}
	return dst
}

// Resize scales img to w x h with nearest-neighbour sampling
func Resize(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y*b.Dy()/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*b.Dx()/w
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}

// DecodeDataURI decodes an image embedded in a base64 data URI
func DecodeDataURI(uri string) (image.Image, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data URI")
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
