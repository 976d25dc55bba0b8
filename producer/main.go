package main

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/xor-shift/samplefarm/common"
	"github.com/xor-shift/samplefarm/dist"
	"github.com/xor-shift/samplefarm/engine"
)

// Standalone batch producer: draws variates locally and publishes them to
// the exchange without going through the farm server. Useful for filling a
// queue from a batch node that only has the AMQP URL.

var logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
	w.Out = os.Stderr
	w.TimeFormat = "15:04:05.000"
})).With().Timestamp().Logger()

func init() {
	if err := godotenv.Load(); err != nil {
		logger.Fatal().Err(err).Msg("loading dotenv failed")
	}
}

func main() {
	args := struct {
		Dist      string `name:"dist" short:"d" required:"" help:"Distribution to sample (e.g. weibull, gamma, log_normal)"`
		Params    string `name:"params" short:"p" default:"{}" help:"Distribution parameters as a JSON object"`
		Seed      string `name:"seed" help:"Seed file for the master engine (auto-seed when empty)"`
		Session   uint   `name:"session" short:"s" default:"0" help:"Session number to stamp on the batches"`
		Workers   int    `name:"workers" short:"w" default:"1" help:"Number of sampling workers"`
		BatchSize int    `name:"batch_size" short:"b" default:"4096" help:"Variates per batch"`
		Batches   int    `name:"batches" short:"n" default:"16" help:"Batches to publish per worker"`
	}{}

	_ = kong.Parse(&args)

	req := common.SamplerRequest{Dist: args.Dist}
	if err := json.Unmarshal([]byte(args.Params), &req.Params); err != nil {
		logger.Fatal().Err(err).Msg("parsing parameters failed")
	}

	if _, err := req.Build(); err != nil {
		logger.Fatal().Err(err).Msg("bad sampler request")
	}

	var master *engine.Engine
	var err error
	if args.Seed != "" {
		master, err = engine.NewFromFile(args.Seed)
	} else {
		master, err = engine.New()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}

	publisher, err := common.NewAMQPPublisher()
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to amqp failed")
	}
	defer publisher.Close()

	states := master.JumpVector(args.Workers)

	var publishMtx sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < args.Workers; i++ {
		eng, err := engine.NewFromString(states[i])
		if err != nil {
			logger.Fatal().Err(err).Msg("re-seeding a worker failed")
		}

		sampler, _ := req.Build()

		wg.Add(1)
		go func(index int, eng *engine.Engine, sampler dist.Sampler) {
			defer wg.Done()

			for n := 0; n < args.Batches; n++ {
				state := eng.State()
				values := dist.SampleMany(sampler, eng, args.BatchSize)

				batch := common.AMQPBatch{
					SessionID: args.Session,
					Batch: common.VariateBatch{
						BatchHeader: common.BatchHeader{
							Sequence:    uint(index + n*args.Workers),
							DrawnAt:     time.Now().Unix(),
							EngineState: state,
						},
						Request: req,
						Values:  values,
					},
				}

				publishMtx.Lock()
				err := publisher.Publish(batch)
				publishMtx.Unlock()

				if err != nil {
					logger.Error().Err(err).Int("worker", index).Msg("publish failed")
					return
				}
			}

			logger.Info().Int("worker", index).Int("batches", args.Batches).Msg("worker done")
		}(i, eng, sampler)
	}

	wg.Wait()
	logger.Info().
		Str("dist", args.Dist).
		Int("variates", args.Workers*args.Batches*args.BatchSize).
		Msg("all batches published")
}
