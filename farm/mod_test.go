package farm

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xor-shift/samplefarm/common"
	"github.com/xor-shift/samplefarm/engine"
)

type recordingPublisher struct {
	mtx     sync.Mutex
	batches []common.AMQPBatch
}

func (p *recordingPublisher) Publish(batch common.AMQPBatch) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.batches = append(p.batches, batch)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.batches)
}

func (p *recordingPublisher) snapshot() []common.AMQPBatch {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return append([]common.AMQPBatch(nil), p.batches...)
}

func testSeed() string {
	words := make([]string, 0, 17)
	x := uint64(0x2545f4914f6cdd1d)
	for i := 0; i < 16; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		words = append(words, strconv.FormatUint(x, 10))
	}
	return strings.Join(words, " ") + " 16"
}

func testWorker(t *testing.T, f *Farm, sessionID uint, index, stride int, stop chan struct{}, wg *sync.WaitGroup) {
	t.Helper()

	eng, err := engine.NewFromString(testSeed())
	if err != nil {
		t.Fatal(err)
	}
	eng.JumpN(index)

	req := common.SamplerRequest{Dist: "exponential", Params: map[string]float64{"lambda": 1}}
	sampler, err := req.Build()
	if err != nil {
		t.Fatal(err)
	}

	wg.Add(1)
	go f.work(sessionID, index, stride, stop, wg, eng, sampler, req, 8)
}

func waitForBatches(t *testing.T, pub *recordingPublisher, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for pub.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("workers published %d batches, want at least %d", pub.count(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

// Workers must stamp batches with the session id they were spawned for,
// even after the farm has moved on to a newer session number.
func TestWorkerKeepsItsSessionID(t *testing.T) {
	pub := &recordingPublisher{}
	f := &Farm{publisher: pub, sessionID: 7}

	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	testWorker(t, f, 7, 0, 1, stop, wg)

	waitForBatches(t, pub, 3)

	// a newer session renumbers the farm while the old worker still runs
	f.mtx.Lock()
	f.sessionID = 8
	f.mtx.Unlock()

	waitForBatches(t, pub, 6)
	close(stop)
	wg.Wait()

	for i, batch := range pub.snapshot() {
		if batch.SessionID != 7 {
			t.Fatalf("batch %d stamped with session %d, want 7", i, batch.SessionID)
		}
	}
}

func TestWorkerSequenceStriding(t *testing.T) {
	pub := &recordingPublisher{}
	f := &Farm{publisher: pub, sessionID: 1}

	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	testWorker(t, f, 1, 0, 2, stop, wg)
	testWorker(t, f, 1, 1, 2, stop, wg)

	waitForBatches(t, pub, 10)
	close(stop)
	wg.Wait()

	// per worker, sequence numbers are index, index+stride, index+2*stride...
	next := map[uint]uint{0: 0, 1: 1}
	for i, batch := range pub.snapshot() {
		lane := batch.Batch.Sequence % 2
		if batch.Batch.Sequence != next[lane] {
			t.Fatalf("batch %d: sequence %d, want %d in lane %d",
				i, batch.Batch.Sequence, next[lane], lane)
		}
		next[lane] += 2
	}
}

// StopSession must wait on the stopped session's own wait group and leave
// the farm ready for the next session immediately.
func TestStopSessionHandshake(t *testing.T) {
	pub := &recordingPublisher{}
	f := &Farm{publisher: pub, sessionID: 3}

	f.stop = make(chan struct{})
	f.workerWG = &sync.WaitGroup{}
	testWorker(t, f, 3, 0, 1, f.stop, f.workerWG)

	waitForBatches(t, pub, 2)

	if err := f.StopSession(); err != nil {
		t.Fatal(err)
	}

	drained := pub.count()
	time.Sleep(20 * time.Millisecond)
	if pub.count() != drained {
		t.Fatal("a worker kept publishing after StopSession returned")
	}

	if f.stop != nil || f.workerWG != nil {
		t.Fatal("StopSession left session bookkeeping behind")
	}

	if err := f.StopSession(); err == nil {
		t.Fatal("expected an error when no session is running")
	}
}
