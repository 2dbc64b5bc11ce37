package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// DecodeFrame looks for a QR code in img.
func DecodeFrame(img image.Image, tryHarder bool) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize frame: %w", err)
	}

	var hints map[gozxing.DecodeHintType]interface{}
	if tryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}

	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", ErrNoCode
	}
	if res.GetText() == "" {
		return "", ErrNoCode
	}
	return res.GetText(), nil
}

// decodeStill decodes an uploaded image. Formats the standard decoders do not
// know are converted to PNG with ffmpeg first.
func decodeStill(ctx context.Context, data []byte, ffmpegPath string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image: %w", ErrNoCode)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		png, convErr := ToPNG(ctx, data, ffmpegPath)
		if convErr != nil {
			return "", fmt.Errorf("unsupported image format: %w", convErr)
		}
		img, _, err = image.Decode(bytes.NewReader(png))
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	return DecodeFrame(img, true)
}
