package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"physiobids/internal/fileutil"
)

// RunSpan is one accepted run's extent in sample indices.
type RunSpan struct {
	Label      string
	StartIndex int
	EndIndex   int
}

const (
	figureWidth  = 1200
	figureHeight = 320
	marginLeft   = 60
	marginRight  = 20
	marginTop    = 30
	marginBottom = 40

	// maxTracePoints caps the polyline size; long recordings are decimated.
	maxTracePoints = 2400
)

// WriteSessionPlot renders the trigger trace with shaded run spans to path.
func WriteSessionPlot(path string, trigger []float64, rate float64, spans []RunSpan) error {
	if len(trigger) == 0 {
		return fmt.Errorf("write session plot %s: empty trigger trace", path)
	}
	if rate <= 0 {
		return fmt.Errorf("write session plot %s: sampling rate must be positive, got %g", path, rate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write session plot %s: %w", path, err)
	}
	err := fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		return render(w, trigger, rate, spans)
	})
	if err != nil {
		return fmt.Errorf("write session plot %s: %w", path, err)
	}
	return nil
}

func render(w io.Writer, trigger []float64, rate float64, spans []RunSpan) error {
	plotW := float64(figureWidth - marginLeft - marginRight)
	plotH := float64(figureHeight - marginTop - marginBottom)
	total := len(trigger)

	lo, hi := traceRange(trigger)
	if hi == lo {
		hi = lo + 1
	}

	xOf := func(sample int) float64 {
		return marginLeft + plotW*float64(sample)/float64(total)
	}
	yOf := func(v float64) float64 {
		return marginTop + plotH*(1-(v-lo)/(hi-lo))
	}

	var err error
	p := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	p(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		figureWidth, figureHeight, figureWidth, figureHeight)
	p(`<rect width="%d" height="%d" fill="white"/>`+"\n", figureWidth, figureHeight)

	// Shaded run spans go under the trace.
	for _, span := range spans {
		x0 := xOf(span.StartIndex)
		x1 := xOf(span.EndIndex)
		p(`<rect x="%.1f" y="%d" width="%.1f" height="%.1f" fill="#2b7bba" fill-opacity="0.18"/>`+"\n",
			x0, marginTop, x1-x0, plotH)
		p(`<text x="%.1f" y="%d" font-family="sans-serif" font-size="12" fill="#2b7bba" text-anchor="middle">%s</text>`+"\n",
			(x0+x1)/2, marginTop-8, span.Label)
	}

	p(`<polyline fill="none" stroke="#333333" stroke-width="1" points="`)
	stride := 1
	if total > maxTracePoints {
		stride = total / maxTracePoints
	}
	for i := 0; i < total; i += stride {
		p("%.1f,%.1f ", xOf(i), yOf(trigger[i]))
	}
	p(`"/>` + "\n")

	// Time axis in seconds.
	p(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999999" stroke-width="1"/>`+"\n",
		marginLeft, marginTop+plotH, figureWidth-marginRight, marginTop+plotH)
	p(`<text x="%d" y="%d" font-family="sans-serif" font-size="12" fill="#666666">0 s</text>`+"\n",
		marginLeft, figureHeight-12)
	p(`<text x="%d" y="%d" font-family="sans-serif" font-size="12" fill="#666666" text-anchor="end">%.1f s</text>`+"\n",
		figureWidth-marginRight, figureHeight-12, float64(total)/rate)

	p("</svg>\n")
	return err
}

func traceRange(trace []float64) (lo, hi float64) {
	lo, hi = trace[0], trace[0]
	for _, v := range trace[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
