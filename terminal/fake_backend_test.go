package terminal

import (
	"bytes"
	"sync"
)

// fakeBackend records output and feeds scripted input
type fakeBackend struct {
	mu       sync.Mutex
	out      bytes.Buffer
	width    int
	height   int
	writeErr error
	input    chan []byte

	initCalls int
	finiCalls int
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{width: w, height: h, input: make(chan []byte, 8)}
}

func (b *fakeBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initCalls++
	return nil
}

func (b *fakeBackend) Fini() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finiCalls++
}

func (b *fakeBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *fakeBackend) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return 0, b.writeErr
	}
	return b.out.Write(p)
}

func (b *fakeBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	select {
	case <-stopCh:
		return nil, nil
	case data, ok := <-b.input:
		if !ok {
			return nil, errInputClosed
		}
		return data, nil
	}
}

func (b *fakeBackend) SetResizeHandler(func(width, height int)) {}

func (b *fakeBackend) output() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}

func (b *fakeBackend) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.Reset()
}
