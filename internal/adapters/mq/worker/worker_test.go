package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/okian/icexg/internal/adapters/mq/worker"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	logging "github.com/okian/icexg/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

// countingScorer wraps the engine and counts calls.
type countingScorer struct {
	engine *scoring.Engine
	calls  atomic.Int64
	delay  time.Duration
}

func (c *countingScorer) Score(ev shot.Event) scoring.Assessment {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.engine.Score(ev)
}

func makeShots(n int) []shot.Event {
	types := []string{"wrist", "slap", "snap", "backhand", "tip-in", "deflection", "wrap"}
	shots := make([]shot.Event, n)
	for i := range shots {
		x := float64(i%190) - 100
		y := float64(i%85) - 42.5
		shots[i] = shot.New(x, y, types[i%len(types)], i%2 == 0, i%3 == 0, []string{"5v5", "PP", "PK"}[i%3])
	}
	return shots
}

func TestPool_ScoreBatch(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		engine := scoring.NewEngine()
		scorer := &countingScorer{engine: engine}
		pool := worker.NewPool(4, scorer, worker.WithInlineThreshold(0))
		ctx := context.Background()
		pool.Start(ctx)
		defer pool.Stop()

		convey.Convey("When scoring a large batch", func() {
			shots := makeShots(1000)
			got, err := pool.ScoreBatch(ctx, shots)

			convey.Convey("Then results match sequential scoring in input order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, engine.ScoreBatch(shots))
				convey.So(scorer.calls.Load(), convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When scoring an empty batch", func() {
			got, err := pool.ScoreBatch(ctx, nil)

			convey.Convey("Then the result is empty", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When batches run concurrently", func() {
			shots := makeShots(300)
			want := engine.ScoreBatch(shots)
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				go func() {
					got, err := pool.ScoreBatch(ctx, shots)
					if err == nil && len(got) != len(want) {
						err = errors.New("length mismatch")
					}
					for j := range got {
						if err == nil && got[j].ExpectedGoals != want[j].ExpectedGoals {
							err = errors.New("value mismatch")
						}
					}
					errs <- err
				}()
			}

			convey.Convey("Then every batch gets its own ordered results", func() {
				for i := 0; i < 8; i++ {
					convey.So(<-errs, convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			slow := &countingScorer{engine: engine, delay: time.Millisecond}
			slowPool := worker.NewPool(1, slow, worker.WithInlineThreshold(0))
			slowPool.Start(ctx)
			defer slowPool.Stop()

			got, err := slowPool.ScoreBatch(cctx, makeShots(500))

			convey.Convey("Then it returns the context error", func() {
				convey.So(got, convey.ShouldBeNil)
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool_Lifecycle(t *testing.T) {
	convey.Convey("Given a pool", t, func() {
		engine := scoring.NewEngine()
		scorer := &countingScorer{engine: engine}
		pool := worker.NewPool(0, scorer)

		convey.Convey("Then a non-positive worker count defaults to the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When it was never started", func() {
			shots := makeShots(200)
			got, err := pool.ScoreBatch(context.Background(), shots)

			convey.Convey("Then batches are scored inline", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, engine.ScoreBatch(shots))
			})
		})

		convey.Convey("When it is stopped twice", func() {
			pool.Start(context.Background())
			pool.Stop()
			pool.Stop()

			convey.Convey("Then later batches still succeed inline", func() {
				got, err := pool.ScoreBatch(context.Background(), makeShots(100))
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldHaveLength, 100)
			})
		})
	})
}
