package emu

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"nescore/hw/hwdefs"
)

// FrameImage wraps a framebuffer returned by Console.Framebuffer into an
// image, without copying it.
func FrameImage(frame []byte) *image.RGBA {
	return &image.RGBA{
		Pix:    frame,
		Stride: 4 * hwdefs.ScreenWidth,
		Rect:   image.Rect(0, 0, hwdefs.ScreenWidth, hwdefs.ScreenHeight),
	}
}

// WritePNG encodes a framebuffer as a PNG image.
func WritePNG(w io.Writer, frame []byte) error {
	if len(frame) != 4*hwdefs.ScreenWidth*hwdefs.ScreenHeight {
		return fmt.Errorf("invalid framebuffer size %d", len(frame))
	}
	return png.Encode(w, FrameImage(frame))
}

// WriteWAV encodes mono 16-bit samples as a WAV stream.
func WriteWAV(w io.WriteSeeker, rate int, samples []int16) error {
	const (
		bitDepth  = 16
		numChans  = 1
		pcmFormat = 1
	)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	enc := wav.NewEncoder(w, rate, bitDepth, numChans, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// SavePNG writes a framebuffer as a PNG file.
func SavePNG(path string, frame []byte) error {
	return createFile(path, "save png", func(f *os.File) error {
		return WritePNG(f, frame)
	})
}

// SaveWAV writes mono 16-bit samples as a WAV file.
func SaveWAV(path string, rate int, samples []int16) error {
	return createFile(path, "save wav", func(f *os.File) error {
		return WriteWAV(f, rate, samples)
	})
}

func createFile(path, op string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, op, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return wrapErr(KindIO, op, err)
	}
	return nil
}
