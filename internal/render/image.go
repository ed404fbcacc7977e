package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/roomchat/internal/media"
)

const halfBlock = "▀"

// ImageFromDataURI draws an inline image as half-block art, two pixel rows
// per terminal line. width is in cells; the height keeps the aspect ratio.
func ImageFromDataURI(uri string, width int) (string, error) {
	img, err := media.DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	return HalfBlocks(img, width), nil
}

// HalfBlocks renders img scaled to width cells
func HalfBlocks(img image.Image, width int) string {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	if width > b.Dx() {
		width = b.Dx()
	}
	height := b.Dy() * width / b.Dx()
	if height < 2 {
		height = 2
	}
	if height%2 != 0 {
		height++
	}

	scaled := media.Resize(img, width, height)

	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < width; x++ {
			top := hexColor(scaled.At(x, y))
			bottom := hexColor(scaled.At(x, y+1))
			sb.WriteString(lipgloss.NewStyle().
				Foreground(top).
				Background(bottom).
				Render(halfBlock))
		}
	}
	return sb.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
