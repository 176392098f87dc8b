package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/stackshot/stackshot/internal/domain"
)

// Progress implements domain.ProgressSink by printing one line per service.
type Progress struct {
	mu sync.Mutex
	w  io.Writer
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

func (p *Progress) ServiceDone(index, total int, v domain.ServiceVerdict) {
	p.mu.Lock()
	defer p.mu.Unlock()
	counter := faintStyle.Render(fmt.Sprintf("[%*d/%d]", len(fmt.Sprint(total)), index+1, total))
	fmt.Fprintf(p.w, "%s%s", counter, RenderProgress(v))
}
