//go:build !portaudio

package playback

import "fmt"

const deviceAvailable = false

func newDeviceSink() (Sink, error) {
	return nil, fmt.Errorf("%w: built without the portaudio tag", ErrNoSink)
}
