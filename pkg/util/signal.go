package util

import "sync"

// SigHandler 信号回调，sender 为触发对象，params 为附加参数
type SigHandler func(sender any, params ...any)

// Signals 进程内的简单事件总线
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SigHandler
}

func NewSignals() *Signals {
	return &Signals{handlers: make(map[string][]SigHandler)}
}

var defaultSignals = NewSignals()

// Sig 返回全局事件总线
func Sig() *Signals { return defaultSignals }

func (s *Signals) Connect(event string, handler SigHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

// Disconnect 移除某事件的全部回调
func (s *Signals) Disconnect(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, event)
}

// Emit 同步调用回调，回调内部如有耗时操作需自行开协程
func (s *Signals) Emit(event string, sender any, params ...any) {
	s.mu.RLock()
	handlers := append([]SigHandler(nil), s.handlers[event]...)
	s.mu.RUnlock()
	for _, h := range handlers {
		h(sender, params...)
	}
}
