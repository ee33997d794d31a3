package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("xg"),
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithConstLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("When recording predictions", func() {
			m.RecordPrediction("Good", "High Danger", 0.18)
			m.RecordPrediction("Good", "High Danger", 0.18)
			m.RecordPrediction("Poor", "Low Danger", 0.022)

			Convey("Then counters are split by quality and danger zone", func() {
				So(testutil.ToFloat64(m.predictions.WithLabelValues("Good", "High Danger")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.predictions.WithLabelValues("Poor", "Low Danger")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.expectedGoals), ShouldEqual, 1)
			})
		})

		Convey("When toggling the model flag", func() {
			m.SetModelLoaded(true)
			So(testutil.ToFloat64(m.modelLoaded), ShouldEqual, 1)
			m.RecordUnknownShotType()
			So(testutil.ToFloat64(m.unknownTypes), ShouldEqual, 1)
			m.SetModelLoaded(false)
			So(testutil.ToFloat64(m.modelLoaded), ShouldEqual, 0)
		})

		Convey("When tracking stream connections", func() {
			m.StreamOpened()
			m.StreamOpened()
			m.StreamClosed()
			m.RecordStreamDuplicate()
			m.RecordStreamMessage("prediction")
			m.ObserveStreamTrackedShots(3)

			Convey("Then the gauge reflects open connections", func() {
				So(testutil.ToFloat64(m.streamConnections), ShouldEqual, 1)
				So(testutil.ToFloat64(m.streamDuplicates), ShouldEqual, 1)
				So(testutil.ToFloat64(m.streamMessages.WithLabelValues("prediction")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.streamTracked), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP traffic and errors", func() {
			m.RecordHTTPRequest("predict", "POST", "200", 3)
			m.RecordError("predict", "POST", "client_error", "medium")
			m.RecordRateLimited("predict")
			m.RecordBatchSize(4)
			m.UpdateSystem(1024, 12, 0.5)

			Convey("Then the exposition uses the configured namespace and labels", func() {
				expected := `
# HELP test_http_requests_total Total number of HTTP requests by endpoint and method
# TYPE test_http_requests_total counter
test_http_requests_total{endpoint="predict",env="test",method="POST",status_code="200"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_http_requests_total")
				So(err, ShouldBeNil)
				So(testutil.ToFloat64(m.rateLimited.WithLabelValues("predict")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})
}

func TestGlobalRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		RecordPrediction("Average", "Medium Danger", 0.09)

		Convey("Then the prediction family is gathered", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "icexg_scoring_predictions_total")
		})
	})
}
