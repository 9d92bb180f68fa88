package engine

import "github.com/rs/zerolog/log"

// Observer receives progress for a transfer. Implementations must be cheap; they are called
// once per chunk on the download path.
type Observer interface {
	OnTotalKnown(total int64)
	OnBytesTransferred(delta int64)
}

// OffsetObserver is implemented by observers that want the bytes already on disk when an
// attempt starts, so a resumed bar does not start at zero.
type OffsetObserver interface {
	OnOffset(offset int64)
}

type NopObserver struct{}

func (NopObserver) OnTotalKnown(int64)       {}
func (NopObserver) OnBytesTransferred(int64) {}

// FuncObserver adapts a cumulative progress callback (downloaded, total) to Observer.
type FuncObserver struct {
	Fn         func(downloaded, total int64)
	downloaded int64
	total      int64
}

func (f *FuncObserver) OnOffset(offset int64) {
	f.downloaded = offset
	f.emit()
}

func (f *FuncObserver) OnTotalKnown(total int64) {
	f.total = total
	f.emit()
}

func (f *FuncObserver) OnBytesTransferred(delta int64) {
	f.downloaded += delta
	f.emit()
}

func (f *FuncObserver) emit() {
	if f.Fn != nil {
		f.Fn(f.downloaded, f.total)
	}
}

// safeObserver shields the state machine from a misbehaving observer.
type safeObserver struct {
	inner Observer
}

func (s safeObserver) guard(event string) {
	if r := recover(); r != nil {
		log.Warn().Str("op", "engine/observer").Msgf("observer panicked on %s: %v", event, r)
	}
}

func (s safeObserver) offset(offset int64) {
	defer s.guard("offset")
	if o, ok := s.inner.(OffsetObserver); ok {
		o.OnOffset(offset)
	}
}

func (s safeObserver) total(total int64) {
	defer s.guard("total")
	s.inner.OnTotalKnown(total)
}

func (s safeObserver) bytes(delta int64) {
	defer s.guard("bytes")
	s.inner.OnBytesTransferred(delta)
}
