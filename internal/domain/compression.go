package domain

// CompressionRequest is the validated form of one upload.
type CompressionRequest struct {
	Data             []byte
	DeclaredSize     int64
	Quality          int
	QualityDefaulted bool
}

// ProbeResult describes an image whose header decoded cleanly.
type ProbeResult struct {
	Format Format
	Size   int64
	Width  int
	Height int
}

func (p ProbeResult) Pixels() int64 {
	return int64(p.Width) * int64(p.Height)
}

type Compressed struct {
	Data         []byte
	Format       Format
	OriginalSize int64
	Width        int
	Height       int
}

// Outcome carries exactly one of Success or Failure.
type Outcome struct {
	Success *Compressed
	Failure *Error
}

func Succeeded(c Compressed) Outcome {
	return Outcome{Success: &c}
}

func Failed(err error) Outcome {
	return Outcome{Failure: AsError(err)}
}

func (o Outcome) OK() bool {
	return o.Success != nil && o.Failure == nil
}
