package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/intervals/pkg/collections"
	"github.com/gen2brain/malgo"
)

type Device interface {
	// EnumerateDevices lists available devices of the given kind
	// (malgo.Playback or malgo.Capture). It ignores any device configuration.
	EnumerateDevices(ctx context.Context, kind malgo.DeviceType) ([]Info, error)

	// PlaybackFrom initializes the underlying device so that, once Start() is
	// called, it pulls samples from the queue. Silence is played whenever the
	// queue runs dry.
	PlaybackFrom(ctx context.Context, queue *SampleQueue) error

	// Start starts the audio device.
	Start(ctx context.Context) error
	// Stop stops the audio device.
	// if the underlying device has already been deallocated this is a no-op.
	Stop(ctx context.Context) error

	// IsStarted returns whether the audio device is currently started.
	IsStarted() bool

	// Dealloc deallocates the underlying audio device and frees resources.
	Dealloc(ctx context.Context)
}

type device struct {
	conf *DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

func NewDevice(conf *DeviceConfig) Device {
	return &device{conf: conf}
}

func (d *device) EnumerateDevices(ctx context.Context, kind malgo.DeviceType) ([]Info, error) {
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	devices, err := devCtx.Devices(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s devices: %w", kindName(kind), err)
	}

	return collections.Apply(devices, malgoDeviceInfoToDeviceInfo), nil
}

func (d *device) PlaybackFrom(ctx context.Context, queue *SampleQueue) error {
	if d.mgDevice != nil {
		return fmt.Errorf("device already allocated")
	}

	var err error
	d.mgCtx, d.mgDevice, err = d.allocPlayback(queue)
	if err != nil {
		return fmt.Errorf("failed to create malgo playback device: %w", err)
	}

	return nil
}

func (d *device) Start(ctx context.Context) error {
	if d.mgDevice == nil {
		return fmt.Errorf("device nil. have you allocated it with PlaybackFrom()?")
	}

	if d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	if d.mgDevice == nil {
		// noop
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) Dealloc(ctx context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) allocPlayback(queue *SampleQueue) (*malgo.AllocatedContext, *malgo.Device, error) {
	if queue == nil {
		return nil, nil, fmt.Errorf("sample queue is nil. unable to allocate device")
	}

	if d.conf == nil || d.conf.PlaybackChannels != 1 || d.conf.Format != malgo.FormatS16 {
		return nil, nil, fmt.Errorf("only mono S16 playback is supported")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		slog.Debug("malgo audio device log", "msg", msg)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = d.conf.Format
	devCnf.Playback.Channels = uint32(d.conf.PlaybackChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callBacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			queue.FillS16LE(out)
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return nil, nil, fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	return mgCtx, mgDevice, nil
}

type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func kindName(kind malgo.DeviceType) string {
	switch kind { //nolint:exhaustive // only the two listable kinds are named
	case malgo.Playback:
		return "playback"
	case malgo.Capture:
		return "capture"
	default:
		return "unknown"
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
