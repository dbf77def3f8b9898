package thumbgrid

import "sync"

// loadJob is one queued decode.
type loadJob struct {
	thumb *Thumb
	force bool
}

// loadPool decodes thumbnails on a fixed set of worker goroutines. Jobs run
// in submission order. Stopping a pool drops everything still queued; jobs
// already running finish, and the owner discards their notifications by
// checking pool identity before acting on them (see Grid.startLoad).
type loadPool struct {
	loader  ImageLoader
	deliver func(func())

	onStarted  func(*Thumb)
	onFinished func(*Thumb)

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []loadJob
	stopped bool
}

// newLoadPool starts workers goroutines decoding through loader. Both
// callbacks are invoked through deliver, which marshals onto the UI
// goroutine in production.
func newLoadPool(workers int, loader ImageLoader, deliver func(func()), onStarted, onFinished func(*Thumb)) *loadPool {
	if workers < 1 {
		workers = 1
	}
	p := &loadPool{
		loader:     loader,
		deliver:    deliver,
		onStarted:  onStarted,
		onFinished: onFinished,
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// submit queues the thumbs for loading. Submissions after stop are dropped.
func (p *loadPool) submit(thumbs []*Thumb, force bool) {
	p.mu.Lock()
	if !p.stopped {
		for _, t := range thumbs {
			p.queue = append(p.queue, loadJob{thumb: t, force: force})
		}
	}
	p.mu.Unlock()
	p.cond.Broadcast()
}

// stop discards the queue and lets every worker exit.
func (p *loadPool) stop() {
	p.mu.Lock()
	p.stopped = true
	p.queue = nil
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *loadPool) next() (loadJob, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.stopped {
		p.cond.Wait()
	}
	if p.stopped {
		return loadJob{}, false
	}
	job := p.queue[0]
	p.queue = p.queue[1:]
	return job, true
}

func (p *loadPool) work() {
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		if p.onStarted != nil {
			p.deliver(func() { p.onStarted(job.thumb) })
		}
		job.thumb.Load(job.force, p.loader)
		if p.onFinished != nil {
			p.deliver(func() { p.onFinished(job.thumb) })
		}
	}
}
