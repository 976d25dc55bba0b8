package main

import (
	"database/sql"
	"encoding/json"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/xor-shift/samplefarm/common"
)

const insertBatchQuery = "" +
	"INSERT INTO variates (session_id, batch_order, insert_time, drawn_time" +
	", dist, params, engine_state, value_count, `values`" +
	") VALUES (?, ?, NOW(), FROM_UNIXTIME(?), " +
	"?, ?, ?, ?, ?)"

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

func init() {
	if err := godotenv.Load(); err != nil {
		logger.Fatal().Err(err).Msg("loading dotenv failed")
	}
}

func main() {
	var err error
	var db *sql.DB

	dbConfig := mysql.Config{
		User:                 os.Getenv("DB_USER"),
		Passwd:               os.Getenv("DB_PASSWORD"),
		Addr:                 os.Getenv("DB_ADDRESS"),
		DBName:               os.Getenv("DB_NAME"),
		Collation:            "utf8mb4_general_ci",
		Net:                  "tcp",
		AllowNativePasswords: true,
	}

	if db, err = sql.Open("mysql", dbConfig.FormatDSN()); err != nil {
		logger.Fatal().Err(err).Msg("opening the database failed")
	}
	defer db.Close()

	consumer, err := common.NewAMQPConsumer(
		"variate_batch_queue_db",
		"consumer_db",
		func(delivery amqp.Delivery) error {
			batch, err := common.ParseAMQPBatch(&delivery)
			if err != nil {
				logger.Error().Err(err).Msg("decoding a batch failed")
				return err
			}

			inner := batch.Batch

			paramsJSON, err := json.Marshal(inner.Request.Params)
			if err != nil {
				return err
			}

			valuesJSON, err := json.Marshal(inner.Values)
			if err != nil {
				return err
			}

			if _, err = db.Exec(insertBatchQuery,
				batch.SessionID, inner.Sequence, inner.DrawnAt,
				inner.Request.Dist, string(paramsJSON), inner.EngineState,
				len(inner.Values), string(valuesJSON),
			); err != nil {
				logger.Error().Err(err).
					Uint("session", batch.SessionID).
					Uint("seq", inner.Sequence).
					Msg("inserting a batch failed")
				return err
			}

			logger.Info().
				Uint("session", batch.SessionID).
				Uint("seq", inner.Sequence).
				Str("dist", inner.Request.Dist).
				Int("n", len(inner.Values)).
				Msg("batch stored")

			return nil
		})
	if err != nil {
		logger.Fatal().Err(err).Msg("creating the consumer failed")
	}

	if err = consumer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("starting the consumer failed")
	}

	consumer.Wait()
}
