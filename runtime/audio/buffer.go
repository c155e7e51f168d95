package audio

// Buffer is an immutable byte sequence tagged with its detected container.
// It is never mutated; transformations produce a new Buffer.
type Buffer struct {
	data   []byte
	format ContainerFormat
}

// NewBuffer wraps raw synthesis output, sniffing its container format.
func NewBuffer(data []byte) Buffer {
	return Buffer{data: data, format: Detect(data)}
}

// WrapBuffer wraps data with a format the caller already knows.
func WrapBuffer(data []byte, format ContainerFormat) Buffer {
	return Buffer{data: data, format: format}
}

// Bytes returns the underlying bytes. Callers must not modify them.
func (b Buffer) Bytes() []byte { return b.data }

// Format returns the container format.
func (b Buffer) Format() ContainerFormat { return b.format }

// Len returns the size in bytes.
func (b Buffer) Len() int { return len(b.data) }

// IsEmpty reports whether the buffer holds no audio.
func (b Buffer) IsEmpty() bool { return len(b.data) == 0 }

// MIMEType returns the MIME type of the buffer's container.
func (b Buffer) MIMEType() string { return b.format.MIMEType() }
