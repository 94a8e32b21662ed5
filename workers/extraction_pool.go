package workers

import (
	"errors"
	"image"
	"log"
	"sync"

	"github.com/attendsys/attendsysbackend/services"
)

var (
	// ErrQueueFull is returned when the extraction queue cannot accept
	// another frame. Callers should surface it as a retryable condition.
	ErrQueueFull = errors.New("extraction queue is full")
	// ErrPoolStopped is returned for frames submitted after Stop.
	ErrPoolStopped = errors.New("extraction pool is stopped")
)

type extractionJob struct {
	frame  image.Image
	result chan extractionResult
}

type extractionResult struct {
	faces []services.DetectedFace
	err   error
}

// ExtractionPool funnels all face extraction through a fixed set of workers.
// The OpenCV networks behind the extractor are not goroutine-safe, so every
// concurrent HTTP request submits its frame here instead of calling the
// extractor directly. The pool itself satisfies services.FaceExtractor.
type ExtractionPool struct {
	JobQueue  chan extractionJob
	Extractor services.FaceExtractor
	Wg        sync.WaitGroup
	StopChan  chan struct{}
}

var _ services.FaceExtractor = (*ExtractionPool)(nil)

func NewExtractionPool(extractor services.FaceExtractor, queueSize, numWorkers int) *ExtractionPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 50
	}

	pool := &ExtractionPool{
		JobQueue:  make(chan extractionJob, queueSize),
		Extractor: extractor,
		StopChan:  make(chan struct{}),
	}

	pool.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pool.worker(i)
	}
	log.Printf("started %d extraction worker(s) with queue size %d", numWorkers, queueSize)

	return pool
}

func (p *ExtractionPool) worker(id int) {
	defer p.Wg.Done()
	log.Printf("extraction worker %d started", id)
	for {
		select {
		case job, ok := <-p.JobQueue:
			if !ok {
				log.Printf("extraction worker %d stopping: job queue closed", id)
				return
			}
			faces, err := p.Extractor.Extract(job.frame)
			job.result <- extractionResult{faces: faces, err: err}

		case <-p.StopChan:
			log.Printf("extraction worker %d stopping: stop signal received", id)
			return
		}
	}
}

// Extract submits a frame and blocks until a worker has processed it.
// A full queue fails fast rather than queueing unbounded work.
func (p *ExtractionPool) Extract(frame image.Image) ([]services.DetectedFace, error) {
	job := extractionJob{
		frame:  frame,
		result: make(chan extractionResult, 1),
	}

	select {
	case <-p.StopChan:
		return nil, ErrPoolStopped
	default:
	}

	select {
	case p.JobQueue <- job:
	default:
		log.Printf("WARNING: extraction job queue full, rejecting frame")
		return nil, ErrQueueFull
	}

	select {
	case res := <-job.result:
		return res.faces, res.err
	case <-p.StopChan:
		return nil, ErrPoolStopped
	}
}

func (p *ExtractionPool) Stop() {
	log.Println("stopping extraction workers...")
	close(p.StopChan)
	p.Wg.Wait()
	log.Println("all extraction workers stopped")
}
