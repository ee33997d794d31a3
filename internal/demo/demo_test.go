package demo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/icexg/internal/adapters/http/api"
	service "github.com/okian/icexg/internal/app"
	"github.com/okian/icexg/internal/demo"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer() (*httptest.Server, func()) {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestScenarios(t *testing.T) {
	Convey("Given the built-in scenarios", t, func() {
		scenarios := demo.DefaultScenarios()

		Convey("Then the five reference shots are present", func() {
			So(scenarios, ShouldHaveLength, 5)
			names := make([]string, len(scenarios))
			for i, s := range scenarios {
				names[i] = s.Name
			}
			So(names, ShouldResemble, []string{"Slot shot", "Slot rebound", "Point shot", "Wraparound", "High danger"})
		})

		Convey("When scored locally", func() {
			results := demo.ScoreLocal(scoring.NewEngine(), scenarios)

			Convey("Then the reference values hold", func() {
				So(results[0].ExpectedGoals, ShouldAlmostEqual, 0.18, 1e-9)
				So(results[0].Quality, ShouldEqual, scoring.QualityGood)
				So(results[1].ExpectedGoals, ShouldAlmostEqual, 0.225, 1e-9)
				So(results[1].Quality, ShouldEqual, scoring.QualityExcellent)
				So(results[2].Distance, ShouldAlmostEqual, 55.0, 0.01)
				So(results[2].ExpectedGoals, ShouldAlmostEqual, 0.022, 1e-9)
				So(results[2].Zone, ShouldEqual, scoring.ZoneLow)
				So(results[2].Danger, ShouldEqual, scoring.DangerLow)
				So(results[3].ExpectedGoals, ShouldAlmostEqual, 0.045, 1e-9)
				So(results[4].ExpectedGoals, ShouldAlmostEqual, 0.35, 1e-9)
				So(results[4].Danger, ShouldEqual, scoring.DangerHigh)
				So(results[2].Factors, ShouldBeEmpty)
				So(results[2].BaseXG, ShouldEqual, results[2].ExpectedGoals)
			})
		})
	})

	Convey("Given a scenario file", t, func() {
		path := filepath.Join(t.TempDir(), "shots.yaml")

		Convey("When it is valid", func() {
			So(os.WriteFile(path, []byte("scenarios:\n  - name: crease\n    x: 85\n    y: 1\n    shot_type: TIP-IN\n    strength: PP\n"), 0o600), ShouldBeNil)
			scenarios, err := demo.LoadScenarios(path)

			Convey("Then it is loaded", func() {
				So(err, ShouldBeNil)
				So(scenarios, ShouldHaveLength, 1)
				So(scenarios[0].ShotType, ShouldEqual, "TIP-IN")
				So(scenarios[0].Strength, ShouldEqual, "PP")
			})
		})

		Convey("When a scenario has no name", func() {
			So(os.WriteFile(path, []byte("scenarios:\n  - x: 85\n"), 0o600), ShouldBeNil)
			_, err := demo.LoadScenarios(path)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, demo.ErrInvalidScenario), ShouldBeTrue)
			})
		})

		Convey("When it is not YAML", func() {
			So(os.WriteFile(path, []byte("scenarios: [:"), 0o600), ShouldBeNil)
			_, err := demo.LoadScenarios(path)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, demo.ErrInvalidScenario), ShouldBeTrue)
			})
		})

		Convey("When it does not exist", func() {
			_, err := demo.LoadScenarios(filepath.Join(t.TempDir(), "none.yaml"))

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestRandomScenarios(t *testing.T) {
	Convey("Given a seed", t, func() {
		a := demo.RandomScenarios(200, 7)
		b := demo.RandomScenarios(200, 7)

		Convey("Then the shots are reproducible and on the rink", func() {
			So(a, ShouldResemble, b)
			outside := 0
			for _, s := range a {
				if s.X < 0 || s.X > 100 || s.Y < -42.5 || s.Y > 42.5 {
					outside++
				}
			}
			So(outside, ShouldEqual, 0)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given local results", t, func() {
		scenarios := demo.DefaultScenarios()
		local := demo.ScoreLocal(scoring.NewEngine(), scenarios)
		remote := make([]demo.Prediction, len(local))
		for i, a := range local {
			remote[i] = demo.Prediction{
				ExpectedGoals: a.ExpectedGoals,
				ShotQuality:   string(a.Quality),
				DangerZone:    string(a.Danger),
				Distance:      a.Distance,
				Angle:         a.Angle,
				Zone:          string(a.Zone),
				Factors:       a.Factors,
			}
		}

		Convey("When the remote results agree", func() {
			Convey("Then verification passes", func() {
				So(demo.Verify(scenarios, local, remote, demo.DefaultTolerance), ShouldBeNil)
			})
		})

		Convey("When one remote value differs", func() {
			remote[2].ExpectedGoals = 0.15

			Convey("Then the mismatch is reported by name", func() {
				err := demo.Verify(scenarios, local, remote, demo.DefaultTolerance)
				So(errors.Is(err, demo.ErrMismatch), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Point shot")
			})
		})

		Convey("When the lengths differ", func() {
			err := demo.Verify(scenarios, local, remote[:3], demo.DefaultTolerance)

			Convey("Then verification fails", func() {
				So(errors.Is(err, demo.ErrMismatch), ShouldBeTrue)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a local run", t, func() {
		var out bytes.Buffer
		err := demo.Run(context.Background(), &demo.Config{}, &out)

		Convey("Then a table of the scenarios is printed", func() {
			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Slot rebound")
			So(out.String(), ShouldContainSubstring, "Excellent")
		})
	})

	Convey("Given a running server", t, func() {
		srv, closeAll := newServer()
		defer closeAll()

		Convey("When verifying scenarios and random shots in small batches", func() {
			var out bytes.Buffer
			err := demo.Run(context.Background(), &demo.Config{
				BaseURL:   srv.URL,
				Random:    120,
				Seed:      42,
				BatchSize: 50,
			}, &out)

			Convey("Then the server agrees with the local engine", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "verified 125 shots")
				So(out.String(), ShouldContainSubstring, "more")
			})
		})
	})

	Convey("Given a server that returns a fixed placeholder", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				w.WriteHeader(http.StatusOK)
				return
			}
			var shots []json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&shots)
			resp := demo.BatchResponse{Count: len(shots)}
			for range shots {
				resp.Predictions = append(resp.Predictions, demo.Prediction{ExpectedGoals: 0.15})
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		Convey("When verifying against it", func() {
			err := demo.Run(context.Background(), &demo.Config{BaseURL: srv.URL}, &bytes.Buffer{})

			Convey("Then a mismatch is reported", func() {
				So(errors.Is(err, demo.ErrMismatch), ShouldBeTrue)
			})
		})
	})

	Convey("Given no server at the URL", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When verifying", func() {
			err := demo.Run(context.Background(), &demo.Config{BaseURL: url}, &bytes.Buffer{})

			Convey("Then the server error is returned", func() {
				So(errors.Is(err, demo.ErrServer), ShouldBeTrue)
			})
		})
	})
}
