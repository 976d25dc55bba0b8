// Package farm runs sampling sessions: a pool of workers, each with its
// own engine split off the master engine by jumps, drawing variate batches
// and publishing them to the exchange. Jumped engines are used instead of
// independently seeded ones because independent seeds cannot rule out
// overlapping sequences between two workers.
package farm

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/xor-shift/samplefarm/common"
	"github.com/xor-shift/samplefarm/dist"
	"github.com/xor-shift/samplefarm/engine"
)

const insertSessionQuery = "" +
	"INSERT INTO sessions (started_at, seed_state, dist, params, batch_size, workers" +
	") VALUES (FROM_UNIXTIME(?), ?, ?, ?, ?, ?)"

// batchPublisher is what the workers need from the AMQP layer.
type batchPublisher interface {
	Publish(batch common.AMQPBatch) error
	Close() error
}

type Farm struct {
	db        *sql.DB
	publisher batchPublisher
	pubMtx    sync.Mutex // amqp channels are not safe for concurrent publishes

	mtx sync.Mutex
	eng *engine.Engine

	sessionID uint
	stop      chan struct{}
	workerWG  *sync.WaitGroup // per-session; a new session gets a fresh one
}

// New connects to MySQL and the exchange and prepares the master engine.
// If SEED_FILE is set the engine is seeded from it, otherwise from the OS
// entropy source.
func New() (*Farm, error) {
	var err error

	farm := &Farm{}

	if farm.publisher, err = common.NewAMQPPublisher(); err != nil {
		return nil, err
	}

	dbConfig := mysql.Config{
		User:                 os.Getenv("DB_USER"),
		Passwd:               os.Getenv("DB_PASSWORD"),
		Addr:                 os.Getenv("DB_ADDRESS"),
		DBName:               os.Getenv("DB_NAME"),
		Collation:            "utf8mb4_general_ci",
		Net:                  "tcp",
		AllowNativePasswords: true,
	}

	if farm.db, err = sql.Open("mysql", dbConfig.FormatDSN()); err != nil {
		_ = farm.publisher.Close()
		return nil, err
	}

	if seedFile := os.Getenv("SEED_FILE"); seedFile != "" {
		farm.eng, err = engine.NewFromFile(seedFile)
	} else {
		farm.eng, err = engine.New()
	}
	if err != nil {
		_ = farm.publisher.Close()
		_ = farm.db.Close()
		return nil, err
	}

	return farm, nil
}

func (f *Farm) SessionID() uint {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.sessionID
}

// State returns the master engine's current state-string.
func (f *Farm) State() string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.eng.State()
}

// Reseed replaces the master engine state.
func (f *Farm) Reseed(text string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.eng.SeedFromString(text)
}

// JumpVector hands out k decorrelated state-strings and leaves the master
// engine past all of them.
func (f *Farm) JumpVector(k int) []string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.eng.JumpVector(k)
}

// Draw performs an ad-hoc draw of n variates on the master engine.
func (f *Farm) Draw(req common.SamplerRequest, n int) ([]float64, error) {
	sampler, err := req.Build()
	if err != nil {
		return nil, err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()
	return dist.SampleMany(sampler, f.eng, n), nil
}

// StartSession records a session row and spawns the workers. Each worker
// gets its own engine (one jump apart) and its own sampler object, since
// the normal samplers cache half a pair per engine.
func (f *Farm) StartSession(req common.SamplerRequest, workers, batchSize int) (uint, error) {
	if workers < 1 || batchSize < 1 {
		return 0, errors.New("workers and batch size must both be at least 1")
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.stop != nil {
		return 0, fmt.Errorf("session %d is still running", f.sessionID)
	}

	// Validate the request before touching the database.
	if _, err := req.Build(); err != nil {
		return 0, err
	}

	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return 0, err
	}

	seedState := f.eng.State()

	result, err := f.db.Exec(insertSessionQuery,
		time.Now().Unix(), seedState, req.Dist, string(paramsJSON), batchSize, workers)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	f.sessionID = uint(id)

	states := f.eng.JumpVector(workers)
	f.stop = make(chan struct{})
	f.workerWG = &sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		workerEngine, err := engine.NewFromString(states[i])
		if err != nil {
			// Cannot happen for strings we just produced ourselves.
			close(f.stop)
			f.stop = nil
			return 0, err
		}

		sampler, _ := req.Build()

		f.workerWG.Add(1)
		go f.work(f.sessionID, i, workers, f.stop, f.workerWG, workerEngine, sampler, req, batchSize)
	}

	return f.sessionID, nil
}

// work receives the session id and wait group as parameters rather than
// reading the farm's fields: a new session may start while this one's
// workers are still draining, and their bookkeeping must not be shared.
func (f *Farm) work(sessionID uint, index, stride int, stop <-chan struct{}, wg *sync.WaitGroup, eng *engine.Engine, sampler dist.Sampler, req common.SamplerRequest, batchSize int) {
	defer wg.Done()

	// Sequence numbers are strided so batches stay attributable to one
	// worker without cross-worker coordination.
	seq := uint(index)

	for {
		select {
		case <-stop:
			return
		default:
		}

		state := eng.State()
		values := dist.SampleMany(sampler, eng, batchSize)

		batch := common.AMQPBatch{
			SessionID: sessionID,
			Batch: common.VariateBatch{
				BatchHeader: common.BatchHeader{
					Sequence:    seq,
					DrawnAt:     time.Now().Unix(),
					EngineState: state,
				},
				Request: req,
				Values:  values,
			},
		}

		f.pubMtx.Lock()
		err := f.publisher.Publish(batch)
		f.pubMtx.Unlock()
		if err != nil {
			return
		}

		seq += uint(stride)
	}
}

// StopSession signals the workers and waits for them to drain. The wait
// happens on the session's own wait group, so a new session may start
// while the old one is still draining.
func (f *Farm) StopSession() error {
	f.mtx.Lock()
	stop, wg := f.stop, f.workerWG
	f.stop = nil
	f.workerWG = nil
	f.mtx.Unlock()

	if stop == nil {
		return errors.New("no session is running")
	}

	close(stop)
	wg.Wait()
	return nil
}

func (f *Farm) Close() error {
	if err := f.publisher.Close(); err != nil {
		return err
	}
	return f.db.Close()
}
