package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/streadway/amqp"

	"github.com/xor-shift/samplefarm/common"
	"github.com/xor-shift/samplefarm/util"
)

// Live monitor: tails the exchange, keeps running moments per session and
// serves them as JSON. Handy for eyeballing whether a long sampling run is
// converging on the analytic mean/variance.

type sessionStats struct {
	SessionID uint    `json:"sessionId"`
	Dist      string  `json:"dist"`
	Batches   uint64  `json:"batches"`
	Count     uint64  `json:"count"`
	Mean      float64 `json:"mean"`
	Variance  float64 `json:"variance"`

	moments util.Moments
}

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

func main() {
	var mtx sync.Mutex
	stats := map[uint]*sessionStats{}

	consumer, err := common.NewAMQPConsumer(
		"variate_batch_queue_stats",
		"consumer_stats",
		func(delivery amqp.Delivery) error {
			batch, err := common.ParseAMQPBatch(&delivery)
			if err != nil {
				log.Printf("error decoding a batch: %s", err)
				return nil
			}

			mtx.Lock()
			defer mtx.Unlock()

			s, ok := stats[batch.SessionID]
			if !ok {
				s = &sessionStats{
					SessionID: batch.SessionID,
					Dist:      batch.Batch.Request.Dist,
				}
				stats[batch.SessionID] = s
			}

			s.Batches++
			s.moments.AddAll(batch.Batch.Values)
			s.Count = s.moments.Count
			s.Mean = s.moments.Mean()
			s.Variance = s.moments.Variance()

			return nil
		})
	if err != nil {
		log.Fatalln(err)
	}

	if err = consumer.Start(); err != nil {
		log.Fatalln(err)
	}

	app := iris.New()

	app.Get("/moments", func(ctx iris.Context) {
		mtx.Lock()
		defer mtx.Unlock()

		list := make([]sessionStats, 0, len(stats))
		for _, s := range stats {
			list = append(list, *s)
		}

		_, _ = ctx.JSON(list)
	})

	app.Get("/moments/{session:uint}", func(ctx iris.Context) {
		sessionNo, err := strconv.ParseUint(ctx.Params().Get("session"), 10, 64)
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}
		session := uint(sessionNo)

		mtx.Lock()
		s, ok := stats[session]
		mtx.Unlock()

		if !ok {
			ctx.StatusCode(iris.StatusNotFound)
			return
		}

		_, _ = ctx.JSON(*s)
	})

	if err = app.Listen(fmt.Sprintf(":%s", os.Getenv("CONSUMER_STATS_PORT"))); err != nil {
		log.Fatalln(err)
	}
}
