package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// ToPNG converts the first frame of any image ffmpeg understands (webp, heic,
// bmp...) into PNG bytes.
func ToPNG(ctx context.Context, content []byte, ffmpegPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputReader, inputWriter := io.Pipe()
	outputReader, outputWriter := io.Pipe()
	var stderr bytes.Buffer

	go func() {
		defer inputWriter.Close()
		if _, err := inputWriter.Write(content); err != nil {
			inputWriter.CloseWithError(err)
		}
	}()

	go func() {
		defer outputWriter.Close()
		stream := ffmpeg_go.Input("pipe:0").
			Output("pipe:", ffmpeg_go.KwArgs{"vframes": 1, "format": "image2", "vcodec": "png"}).
			WithInput(inputReader).
			WithOutput(outputWriter).
			WithErrorOutput(&stderr).
			OverWriteOutput()
		if ffmpegPath != "" {
			stream = stream.SetFfmpegPath(ffmpegPath)
		}
		if err := stream.Run(); err != nil {
			outputWriter.CloseWithError(fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(stderr.Bytes())))
		}
	}()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(outputReader); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg returned no image data")
	}
	return buf.Bytes(), nil
}
