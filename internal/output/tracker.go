package output

import "sync"

// ProgressTracker turns transfer events into progress lines for one registered job. It
// satisfies the engine's Observer and OffsetObserver interfaces.
type ProgressTracker struct {
	mgr         *Manager
	id          int
	mu          sync.Mutex
	done        int64
	total       int64
	transferred int64
}

func NewProgressTracker(mgr *Manager, id int) *ProgressTracker {
	return &ProgressTracker{mgr: mgr, id: id, total: -1}
}

func (p *ProgressTracker) OnOffset(offset int64) {
	p.mu.Lock()
	p.done = offset
	p.mu.Unlock()
	p.push()
}

func (p *ProgressTracker) OnTotalKnown(total int64) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
	p.push()
}

func (p *ProgressTracker) OnBytesTransferred(delta int64) {
	p.mu.Lock()
	p.done += delta
	p.transferred += delta
	p.mu.Unlock()
	p.push()
}

func (p *ProgressTracker) Snapshot() (done, total, transferred int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total, p.transferred
}

func (p *ProgressTracker) push() {
	done, total, transferred := p.Snapshot()
	p.mgr.AddProgressBarToStream(p.id, done, total, transferred)
}
