package upload

import (
	"errors"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// ProgressFunc receives the bytes transferred so far and the total.
type ProgressFunc func(completed, total int64)

// Percent returns completed as a percentage of total, 0 when total is 0.
func Percent(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) * 100 / float64(total)
}

// LogProgress returns a ProgressFunc that logs at info level.
func LogProgress(logger *zap.Logger, key string) ProgressFunc {
	return func(completed, total int64) {
		logger.Info("upload progress",
			zap.String("key", key),
			zap.Int64("completed", completed),
			zap.Int64("total", total),
			zap.String("percent", formatPercent(Percent(completed, total))),
		)
	}
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64) + " %"
}

// progressReader reports roughly callbacks times while the body is consumed.
// Reports never go backwards, so a body re-read after a seek stays silent
// until it passes the furthest point already reported.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	step     int64
	next     int64
	reported int64
	fn       ProgressFunc
}

func newProgressReader(r io.Reader, total int64, callbacks int, fn ProgressFunc) *progressReader {
	if callbacks <= 0 {
		callbacks = DefaultProgressCallbacks
	}
	step := total / int64(callbacks)
	if step <= 0 {
		step = 1
	}
	return &progressReader{r: r, total: total, step: step, next: step, reported: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read >= p.next || p.read >= p.total || errors.Is(err, io.EOF) {
		p.report()
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("progress reader: underlying reader is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.read = pos
	p.next = (pos/p.step + 1) * p.step
	return pos, nil
}

func (p *progressReader) report() {
	if p.fn == nil || p.read <= p.reported {
		return
	}
	p.reported = p.read
	p.next = (p.read/p.step + 1) * p.step
	p.fn(p.read, p.total)
}
