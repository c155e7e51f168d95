// Package tts defines the synthesis collaborator the audio pipeline consumes.
//
// Provider adapters live outside the core. They implement Synthesizer (and
// optionally StreamingSynthesizer and TimepointReporter) and hand raw bytes
// in their native container to the playback engine.
//
// # Usage
//
//	synth := tts.NewMockSynthesizer("mock", wavBytes)
//	data, err := synth.SynthToBytes(ctx, "Hello world", tts.DefaultSynthesisConfig())
//
// # Streaming
//
// Streaming synthesizers return a ByteStream. The pipeline buffers the
// whole stream with Collect before producing audio:
//
//	stream, err := streamer.SynthToBytestream(ctx, text, config)
//	data, err := tts.Collect(ctx, stream)
//	boundaries := stream.WordBoundaries() // units in stream.BoundaryUnit
package tts
