package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type Image struct {
	Data []byte
	Mime string
	Name string
}

// Provider yields one image per Capture call. The device is a shared
// resource: callers must Deactivate after every attempt, success or failure,
// and must not issue a second Capture while one is outstanding.
type Provider interface {
	Capture(ctx context.Context) (*Image, error)
	Deactivate()
}

type CaptureError struct {
	Message string
}

func (e CaptureError) Error() string {
	return e.Message
}

// FileProvider reads the image from a fixed path on every capture. Used by
// the CLI and in tests; the real camera lives on the mobile device.
type FileProvider struct {
	Path string
}

func (p *FileProvider) Capture(ctx context.Context) (*Image, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, CaptureError{Message: fmt.Sprintf("failed to read capture file %s", p.Path)}
	}
	return &Image{
		Data: data,
		Mime: "image/jpeg",
		Name: filepath.Base(p.Path),
	}, nil
}

func (p *FileProvider) Deactivate() {}

// UnavailableProvider stands in when no capture device is configured; every
// capture fails and the flow retries the stage.
type UnavailableProvider struct{}

func (p *UnavailableProvider) Capture(ctx context.Context) (*Image, error) {
	return nil, CaptureError{Message: "no capture device available"}
}

func (p *UnavailableProvider) Deactivate() {}

type StaticProvider struct {
	Image *Image
}

func (p *StaticProvider) Capture(ctx context.Context) (*Image, error) {
	if p.Image == nil {
		return nil, CaptureError{Message: "no image available"}
	}
	return p.Image, nil
}

func (p *StaticProvider) Deactivate() {}
