package logic

import (
	"sync"

	"timeline_store/shared"
)

type changeNotifier struct {
	logger    shared.ILogger
	mu        sync.RWMutex
	observers []func(uri string)
}

// NewChangeNotifier builds the sink the dal reports successful writes to.
// Observers are invoked synchronously, in subscription order, on the
// writer's goroutine.
func NewChangeNotifier(logger shared.ILogger) shared.IChangeNotifier {
	return &changeNotifier{logger: logger}
}

func (cn *changeNotifier) Subscribe(fn func(uri string)) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	cn.observers = append(cn.observers, fn)
}

func (cn *changeNotifier) PublishChange(uri string) {
	cn.mu.RLock()
	observers := cn.observers
	cn.mu.RUnlock()
	cn.logger.Debugf("Change published: %s", uri)
	for _, fn := range observers {
		fn(uri)
	}
}
