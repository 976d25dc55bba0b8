package main

import (
	"log"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"

	"github.com/xor-shift/samplefarm/common"
	"github.com/xor-shift/samplefarm/farm"
)

var (
	app *iris.Application

	theFarm *farm.Farm
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("loading dotenv failed: %s", err)
	}

	app = iris.New()

	theFarm, err = farm.New()
	if err != nil {
		log.Fatalf("creating the farm failed: %s", err)
	}
}

type sampleRequest struct {
	common.SamplerRequest `json:"req"`

	Count int `json:"n"`
}

type sessionRequest struct {
	common.SamplerRequest `json:"req"`

	Workers   int `json:"workers"`
	BatchSize int `json:"batchSize"`
}

func main() {
	app.Get("/state", func(ctx iris.Context) {
		_, _ = ctx.Text(theFarm.State())
	})

	app.Post("/seed", func(ctx iris.Context) {
		body, err := ctx.GetBody()
		if err != nil {
			app.Logger().Printf("/seed error (body): %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		if err = theFarm.Reseed(string(body)); err != nil {
			app.Logger().Printf("/seed error (reseed): %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			_, _ = ctx.Text("%s", err)
			return
		}

		_, _ = ctx.Text("OK")
	})

	app.Get("/jump_vector", func(ctx iris.Context) {
		k, err := strconv.Atoi(ctx.URLParamDefault("n", "1"))
		if err != nil || k < 1 {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		_, _ = ctx.JSON(theFarm.JumpVector(k))
	})

	app.Post("/sample", func(ctx iris.Context) {
		var req sampleRequest
		if err := ctx.ReadJSON(&req); err != nil {
			app.Logger().Printf("/sample error (json): %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		if req.Count < 1 {
			req.Count = 1
		}

		values, err := theFarm.Draw(req.SamplerRequest, req.Count)
		if err != nil {
			app.Logger().Printf("/sample error (draw): %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			_, _ = ctx.Text("%s", err)
			return
		}

		_, _ = ctx.JSON(values)
	})

	app.Post("/session/start", func(ctx iris.Context) {
		var req sessionRequest
		if err := ctx.ReadJSON(&req); err != nil {
			app.Logger().Printf("/session/start error (json): %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		id, err := theFarm.StartSession(req.SamplerRequest, req.Workers, req.BatchSize)
		if err != nil {
			app.Logger().Printf("/session/start error: %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			_, _ = ctx.Text("%s", err)
			return
		}

		app.Logger().Printf("started session %d (%s, %d workers)", id, req.Dist, req.Workers)
		_, _ = ctx.JSON(iris.Map{"sessionId": id})
	})

	app.Post("/session/stop", func(ctx iris.Context) {
		if err := theFarm.StopSession(); err != nil {
			app.Logger().Printf("/session/stop error: %s", err)
			ctx.StatusCode(iris.StatusBadRequest)
			_, _ = ctx.Text("%s", err)
			return
		}

		app.Logger().Printf("stopped session %d", theFarm.SessionID())
		_, _ = ctx.Text("OK")
	})

	if err := app.Listen(":8080"); err != nil {
		log.Fatalln(err)
	}
}
