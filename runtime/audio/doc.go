// Package audio identifies, parses and builds the containers produced by
// speech synthesizers.
//
// The package covers the binary side of the pipeline:
//   - Detect sniffs a buffer's container (WAV, MP3, OGG, FLAC) from magic bytes
//   - ParseWAV and BuildWAV read and write RIFF/WAVE containers
//   - To16Bit normalizes 8, 24 and 32-bit PCM to signed 16-bit samples
//   - Decode and Duration turn WAV or MP3 buffers into PCM and play time
//
// # Usage Example
//
//	buf := audio.NewBuffer(synthesized)
//	if buf.Format() == audio.FormatWAV {
//	    params, pcm, err := audio.ParseWAV(buf.Bytes())
//	    if err != nil {
//	        return err
//	    }
//	    samples, err := audio.To16Bit(pcm, int(params.BitsPerSample))
//	    ...
//	}
//
// Detect never errors. A buffer it reports as FormatUnknown must be
// confirmed with LooksLikeWAV before it is treated as WAV.
package audio
