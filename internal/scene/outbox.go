package scene

import "sync"

type codeMsgKind int

const (
	msgOutput codeMsgKind = iota
	msgError
	msgSuccess
)

type codeMsg struct {
	kind codeMsgKind
	text string
}

// outbox queues script results posted from runner goroutines until the UI
// goroutine drains them.
type outbox struct {
	mu   sync.Mutex
	msgs []codeMsg
}

func (o *outbox) push(m codeMsg) {
	o.mu.Lock()
	o.msgs = append(o.msgs, m)
	o.mu.Unlock()
}

func (o *outbox) take() []codeMsg {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.msgs
	o.msgs = nil
	return msgs
}
