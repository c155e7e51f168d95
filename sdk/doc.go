// Package sdk wires the speech runtime into a single client.
//
// # Quick Start
//
//	client, err := sdk.New(mySynthesizer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.On(events.KindBoundary, func(e *events.Event) {
//	    fmt.Println(e.Word.Word)
//	})
//	err = client.Speak(ctx, "Hello world")
//
// # Configuration
//
// [Open] loads a YAML configuration file (see package config) that selects
// the ffmpeg binary, the conversion cache, the audio player, and whether
// Prometheus metrics and OTLP traces are exported:
//
//	client, err := sdk.Open("./tts.yaml", mySynthesizer)
//
// Options override or extend what the file provides:
//
//	client, err := sdk.New(mySynthesizer,
//	    sdk.WithProbe(playback.StaticProbe(newMySink)),
//	    sdk.WithTracerProvider(tp),
//	)
//
// # Saving Audio
//
//	res, err := client.SynthToFile(ctx, "Hello", "hello.mp3")
//
// The container follows the file extension; conversion runs in-process where
// possible and through ffmpeg otherwise.
package sdk
