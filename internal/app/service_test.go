package service_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/icexg/internal/app"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
	"github.com/okian/icexg/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startService(opts ...service.Option) (*service.Service, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	svc := service.New(opts...)
	So(svc.Start(ctx), ShouldBeNil)
	return svc, ctx, cancel
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithMaxBatchSize(100),
			service.WithModelPath(filepath.Join(t.TempDir(), "missing.pkl")),
		)

		Convey("When it has not been started", func() {
			_, err := svc.Predict(context.Background(), shot.New(75, 0, "", false, false, ""))

			Convey("Then scoring is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.ModelLoaded(), ShouldBeFalse)
			})
		})

		Convey("When it is started and stopped", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			_, err := svc.Predict(context.Background(), shot.New(75, 0, "", false, false, ""))
			So(err, ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then scoring is refused again", func() {
				_, err := svc.Predict(context.Background(), shot.New(75, 0, "", false, false, ""))
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.PredictBatch(context.Background(), []shot.Event{shot.New(75, 0, "", false, false, "")})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()

		Convey("When scoring a slot shot", func() {
			a, err := svc.Predict(ctx, shot.New(75, 0, "WRIST", false, false, "5v5"))

			Convey("Then the engine result is returned", func() {
				So(err, ShouldBeNil)
				So(a.ExpectedGoals, ShouldAlmostEqual, 0.18, 1e-9)
				So(a.Quality, ShouldEqual, scoring.QualityGood)
				So(a.Danger, ShouldEqual, scoring.DangerHigh)
			})
		})

		Convey("When shots carry an unrecognised type", func() {
			before := counterValue("icexg_scoring_unknown_shot_types_total")
			a, err := svc.Predict(ctx, shot.New(75, 0, "KNUCKLEPUCK", false, false, ""))
			So(err, ShouldBeNil)
			_, err = svc.PredictBatch(ctx, []shot.Event{
				shot.New(75, 0, "WRIST", false, false, ""),
				shot.New(75, 0, "LACROSSE", false, false, ""),
			})
			So(err, ShouldBeNil)

			Convey("Then they score neutrally and are counted", func() {
				So(a.ExpectedGoals, ShouldAlmostEqual, 0.18, 1e-9)
				So(counterValue("icexg_scoring_unknown_shot_types_total")-before, ShouldEqual, 2)
			})
		})
	})
}

// counterValue reads an unlabelled counter from the service registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestService_PredictBatch(t *testing.T) {
	Convey("Given a started service with a small batch limit", t, func() {
		svc, ctx, cancel := startService(service.WithMaxBatchSize(3))
		defer cancel()
		defer svc.Stop()

		shots := []shot.Event{
			shot.New(75, 0, "WRIST", false, false, "5v5"),
			shot.New(75, 0, "WRIST", true, false, "5v5"),
			shot.New(40, 25, "SLAP", false, false, "5v5"),
		}

		Convey("When scoring a batch within the limit", func() {
			res, err := svc.PredictBatch(ctx, shots)

			Convey("Then results are ordered and summed", func() {
				So(err, ShouldBeNil)
				So(res.Assessments, ShouldHaveLength, 3)
				So(res.Assessments[0].ExpectedGoals, ShouldAlmostEqual, 0.18, 1e-9)
				So(res.Assessments[1].ExpectedGoals, ShouldAlmostEqual, 0.225, 1e-9)
				want := 0.0
				for _, a := range res.Assessments {
					want += a.ExpectedGoals
				}
				So(res.TotalXG, ShouldAlmostEqual, want, 1e-12)
				So(res.AverageXG, ShouldAlmostEqual, want/3, 1e-12)
			})
		})

		Convey("When scoring an empty batch", func() {
			res, err := svc.PredictBatch(ctx, nil)

			Convey("Then the totals are zero", func() {
				So(err, ShouldBeNil)
				So(res.Assessments, ShouldBeEmpty)
				So(res.TotalXG, ShouldEqual, 0)
				So(math.IsNaN(res.AverageXG), ShouldBeFalse)
				So(res.AverageXG, ShouldEqual, 0)
			})
		})

		Convey("When the batch exceeds the limit", func() {
			_, err := svc.PredictBatch(ctx, append(shots, shots[0]))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
			})
		})
	})
}

func TestService_ModelInfo(t *testing.T) {
	Convey("Given a model file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "xg_model_final.pkl")
		So(os.WriteFile(path, []byte("model"), 0o600), ShouldBeNil)
		svc, _, cancel := startService(service.WithModelPath(path))
		defer cancel()
		defer svc.Stop()

		Convey("When reading model info", func() {
			info := svc.ModelInfo()

			Convey("Then it carries the static metadata and the loaded flag", func() {
				So(info.ModelType, ShouldEqual, "Random Forest")
				So(info.Accuracy, ShouldEqual, 0.9228)
				So(info.AUCScore, ShouldEqual, 0.9228)
				So(info.NFeatures, ShouldEqual, 43)
				So(info.TrainingSamples, ShouldEqual, 313244)
				So(info.Version, ShouldEqual, "1.0.0")
				So(info.Engine, ShouldEqual, "zone-heuristic")
				So(info.ShotTypes, ShouldContain, "WRIST")
				So(info.ShotTypes, ShouldContain, "TIP-IN")
				So(info.ModelLoaded, ShouldBeTrue)
			})
		})
	})
}

func TestService_NewDeduper(t *testing.T) {
	Convey("Given a service with a dedupe size", t, func() {
		svc := service.New(service.WithDedupeSize(2))

		Convey("When two streams get dedupers", func() {
			a := svc.NewDeduper()
			b := svc.NewDeduper()
			a.SeenAndRecord("shot-1")

			Convey("Then they track IDs independently", func() {
				So(a.SeenAndRecord("shot-1"), ShouldBeTrue)
				So(b.SeenAndRecord("shot-1"), ShouldBeFalse)
			})
		})
	})
}
