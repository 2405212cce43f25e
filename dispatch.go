package terminal

// queueDepth bounds the number of action batches the UI-thread dispatcher
// will buffer before the reader thread blocks trying to enqueue more,
// providing the back-pressure spec.md §9 asks for in place of an unbounded
// action list.
const queueDepth = 64

type dispatchJob struct {
	batch   []TerminalAction
	applied chan struct{}
}

// UIDispatcher is the C7 synchronous dispatch boundary: it runs a single
// goroutine that owns *TextBuffer exclusively (spec.md §5's UI-thread
// confinement), draining a bounded job queue and applying each batch in
// order. Dispatch blocks the caller until its batch has actually been
// applied, the "apply and wait" rendezvous spec.md §4.7/§9 describes as an
// alternative to a lock around the buffer.
type UIDispatcher struct {
	buffer *TextBuffer
	queue  chan dispatchJob
	stop   chan struct{}
}

// NewUIDispatcher starts the dispatcher goroutine bound to buf. Callers
// must call Close when done to stop the goroutine.
func NewUIDispatcher(buf *TextBuffer) *UIDispatcher {
	d := &UIDispatcher{
		buffer: buf,
		queue:  make(chan dispatchJob, queueDepth),
		stop:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *UIDispatcher) run() {
	for {
		select {
		case job := <-d.queue:
			d.buffer.ApplyBatch(job.batch)
			close(job.applied)
		case <-d.stop:
			for {
				select {
				case job := <-d.queue:
					d.buffer.ApplyBatch(job.batch)
					close(job.applied)
				default:
					return
				}
			}
		}
	}
}

// Dispatch enqueues batch and blocks until the UI-thread goroutine has
// applied it, satisfying the Dispatcher interface Control (C4) depends on.
func (d *UIDispatcher) Dispatch(batch []TerminalAction) {
	job := dispatchJob{batch: batch, applied: make(chan struct{})}
	d.queue <- job
	<-job.applied
}

// Close stops the dispatcher goroutine. Any batch already enqueued is
// still applied before Close takes effect: on stop, the goroutine drains
// the queue before returning.
func (d *UIDispatcher) Close() {
	close(d.stop)
}

// SyncDispatcher applies each batch immediately on the calling goroutine,
// with no queue at all. It satisfies Dispatcher for tests and for embedding
// contexts that already guarantee single-threaded access to the buffer.
type SyncDispatcher struct {
	Buffer *TextBuffer
}

func (s SyncDispatcher) Dispatch(batch []TerminalAction) {
	s.Buffer.ApplyBatch(batch)
}
