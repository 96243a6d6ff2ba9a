// Package imaging converts between the in-process pixel-array artifact and
// the transport form used on the wire: base64-encoded PNG.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"synthd/pkg/types"
)

// EncodeBase64PNG serializes an artifact to a base64 PNG string.
// Supported channel counts: 1 (grayscale), 3 (RGB), 4 (RGBA).
func EncodeBase64PNG(a *types.ImageArtifact) (string, error) {
	if a == nil {
		return "", fmt.Errorf("nil artifact")
	}
	if a.Width <= 0 || a.Height <= 0 {
		return "", fmt.Errorf("invalid artifact dimensions %dx%d", a.Width, a.Height)
	}
	if want := a.Width * a.Height * a.Channels; len(a.Pix) != want {
		return "", fmt.Errorf("artifact pixel buffer length %d, want %d", len(a.Pix), want)
	}
	var img image.Image
	switch a.Channels {
	case 1:
		g := image.NewGray(image.Rect(0, 0, a.Width, a.Height))
		copy(g.Pix, a.Pix)
		img = g
	case 3:
		rgba := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
		for i := 0; i < a.Width*a.Height; i++ {
			rgba.Pix[4*i+0] = a.Pix[3*i+0]
			rgba.Pix[4*i+1] = a.Pix[3*i+1]
			rgba.Pix[4*i+2] = a.Pix[3*i+2]
			rgba.Pix[4*i+3] = 0xff
		}
		img = rgba
	case 4:
		rgba := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
		copy(rgba.Pix, a.Pix)
		img = rgba
	default:
		return "", fmt.Errorf("unsupported channel count %d", a.Channels)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBase64PNG parses a base64 PNG string into a 3-channel RGB artifact.
// Alpha, when present in the source, is dropped.
func DecodeBase64PNG(s string) (*types.ImageArtifact, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("png decode: %w", err)
	}
	b := img.Bounds()
	a := &types.ImageArtifact{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 3,
		Pix:      make([]uint8, b.Dx()*b.Dy()*3),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			a.Pix[i+0] = c.R
			a.Pix[i+1] = c.G
			a.Pix[i+2] = c.B
			i += 3
		}
	}
	return a, nil
}
