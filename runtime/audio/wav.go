package audio

import (
	"bytes"
	"encoding/binary"
)

// WAV layout constants.
const (
	riffID = "RIFF"
	waveID = "WAVE"
	fmtID  = "fmt "
	dataID = "data"

	riffHeaderSize  = 12 // "RIFF" + size + "WAVE"
	chunkHeaderSize = 8  // id + size
	pcmFmtChunkSize = 16
	minFmtChunkSize = 16

	// WAVHeaderSize is the size of the canonical header written by BuildWAV.
	WAVHeaderSize = 44

	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	extensibleFmtSize   = 40
	subFormatOffset     = 24 // offset of the sub-format GUID inside an extensible fmt chunk
)

// pcmSubFormat is the KSDATAFORMAT_SUBTYPE_PCM GUID as stored on disk.
var pcmSubFormat = []byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71,
}

// WavParameters describes a parsed WAV container.
// DataOffset+DataSize never exceeds the length of the parsed buffer.
type WavParameters struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	DataOffset    int
	DataSize      int
}

// ByteRate returns the number of PCM bytes per second of audio.
func (p WavParameters) ByteRate() int {
	return int(p.SampleRate) * int(p.Channels) * int(p.BitsPerSample) / 8
}

// BlockAlign returns the size in bytes of one multi-channel sample frame.
func (p WavParameters) BlockAlign() int {
	return int(p.Channels) * int(p.BitsPerSample) / 8
}

// ValidateChannels returns an UnsupportedChannelCount error unless the
// layout is mono or stereo, the only layouts conversion paths handle.
func (p WavParameters) ValidateChannels() error {
	if p.Channels != 1 && p.Channels != 2 {
		return formatErrorf(UnsupportedChannelCount, "%d channels", p.Channels)
	}
	return nil
}

// ParseWAV parses a WAV container into its parameters and PCM payload.
//
// Chunks are walked from offset 12 using each chunk's declared size, so fmt
// chunks with extension bytes and chunks placed before data (LIST, fact, ...)
// are handled. The returned PCM slice aliases b.
func ParseWAV(b []byte) (WavParameters, []byte, error) {
	var params WavParameters
	if !LooksLikeWAV(b) {
		return params, nil, &FormatError{Kind: NotWav}
	}

	var haveFmt, haveData bool
	offset := riffHeaderSize
	for offset+chunkHeaderSize <= len(b) {
		id := string(b[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(b[offset+4 : offset+8]))
		body := offset + chunkHeaderSize

		switch id {
		case fmtID:
			if size < minFmtChunkSize || body+size > len(b) {
				return params, nil, formatErrorf(Truncated, "fmt chunk of %d bytes", size)
			}
			if err := parseFmtChunk(b[body:body+size], &params); err != nil {
				return params, nil, err
			}
			haveFmt = true
		case dataID:
			if size > len(b)-body {
				return params, nil, formatErrorf(Truncated, "data chunk declares %d bytes, %d available", size, len(b)-body)
			}
			params.DataOffset = body
			params.DataSize = size
			haveData = true
		}

		if haveFmt && haveData {
			break
		}

		// Chunks are word aligned; odd sizes carry one pad byte.
		next := body + size + size%2
		if next <= offset {
			break
		}
		offset = next
	}

	if !haveFmt {
		return params, nil, formatErrorf(Truncated, "missing fmt chunk")
	}
	if !haveData {
		return params, nil, formatErrorf(Truncated, "missing data chunk")
	}

	return params, b[params.DataOffset : params.DataOffset+params.DataSize], nil
}

func parseFmtChunk(chunk []byte, params *WavParameters) error {
	audioFormat := binary.LittleEndian.Uint16(chunk[0:2])
	switch audioFormat {
	case wavFormatPCM:
	case wavFormatExtensible:
		if len(chunk) < extensibleFmtSize ||
			!bytes.Equal(chunk[subFormatOffset:subFormatOffset+len(pcmSubFormat)], pcmSubFormat) {
			return formatErrorf(UnsupportedCodec, "extensible format with non-PCM sub-format")
		}
	default:
		return formatErrorf(UnsupportedCodec, "format tag %d", audioFormat)
	}

	params.Channels = binary.LittleEndian.Uint16(chunk[2:4])
	params.SampleRate = binary.LittleEndian.Uint32(chunk[4:8])
	params.BitsPerSample = binary.LittleEndian.Uint16(chunk[14:16])
	return nil
}

// BuildWAV wraps PCM in a canonical 44-byte WAV header.
func BuildWAV(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	wav := make([]byte, WAVHeaderSize+dataSize)
	le := binary.LittleEndian

	copy(wav[0:4], riffID)
	le.PutUint32(wav[4:8], uint32(36+dataSize)) //nolint:gosec // WAV sizes are 32-bit by definition
	copy(wav[8:12], waveID)

	copy(wav[12:16], fmtID)
	le.PutUint32(wav[16:20], pcmFmtChunkSize)
	le.PutUint16(wav[20:22], wavFormatPCM)
	le.PutUint16(wav[22:24], uint16(channels))      //nolint:gosec // validated by callers
	le.PutUint32(wav[24:28], uint32(sampleRate))    //nolint:gosec // validated by callers
	le.PutUint32(wav[28:32], uint32(byteRate))      //nolint:gosec // validated by callers
	le.PutUint16(wav[32:34], uint16(blockAlign))    //nolint:gosec // validated by callers
	le.PutUint16(wav[34:36], uint16(bitsPerSample)) //nolint:gosec // validated by callers

	copy(wav[36:40], dataID)
	le.PutUint32(wav[40:44], uint32(dataSize)) //nolint:gosec // WAV sizes are 32-bit by definition
	copy(wav[WAVHeaderSize:], pcm)

	return wav
}
