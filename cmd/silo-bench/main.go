// Command silo-bench drives a synthetic movement workload through silo's
// column storage and reactive queries, optionally under a profiler.
//
// Profiling:
// go build ./cmd/silo-bench
// ./silo-bench -profile mem
// go tool pprof -http=":8000" ./silo-bench mem.pprof
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/silo"
	"github.com/pkg/profile"
)

// Transform and Motion are the marker types the catalog entries bind to.
type Transform struct{}
type Motion struct{}

const defaultCatalog = `{
	"transform": {"position": ["f64", 3], "scale": "f32"},
	"motion": {"velocity": ["f64", 3], "owner": "eid"}
}`

func main() {
	var (
		schemaPath = flag.String("schemas", "", "JSON catalog with transform and motion schemas (built-in when empty)")
		entities   = flag.Int("entities", 100_000, "number of entities")
		frames     = flag.Int("frames", 120, "number of frames to simulate")
		churnEvery = flag.Int("churn", 7, "every n-th mover loses motion each frame and as many idle entities gain it")
		mode       = flag.String("profile", "", "profile mode: cpu, mem or empty for none")
		env        = flag.String("env", "development", "log environment: development (text) or production (JSON)")
		verbose    = flag.Bool("v", false, "log silo debug output")
	)
	flag.Parse()

	level := bark.LevelInfo
	if *verbose {
		level = bark.LevelDebug
	}
	bark.Wake(bark.Config{Environment: *env, Level: level})
	logger := bark.For("silo-bench")

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "":
	default:
		fatal(logger, "unknown profile mode", "mode", *mode)
	}

	transform, motion, err := loadComponents(*schemaPath)
	if err != nil {
		fatal(logger, "loading schemas", bark.KeyError, err)
	}

	sim, err := newSimulation(transform, motion, *entities)
	if err != nil {
		fatal(logger, "creating world", bark.KeyError, err)
	}
	defer sim.world.Destroy()

	start := time.Now()
	var entered, exited int
	for frame := 0; frame < *frames; frame++ {
		in, out, err := sim.step(1.0/60, *churnEvery)
		if err != nil {
			fatal(logger, "simulating frame", "frame", frame, bark.KeyError, err)
		}
		entered += in
		exited += out
	}
	elapsed := time.Since(start)

	logger.Info("run complete",
		"world", sim.world.String(),
		"entities", *entities,
		"frames", *frames,
		bark.KeyDuration, elapsed.Milliseconds(),
		"per_frame", elapsed/time.Duration(max(*frames, 1)),
	)
	logger.Info("reactive totals",
		"entered", entered,
		"exited", exited,
		"moving", sim.moving.Count(sim.world),
	)
}

func fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}

func loadComponents(path string) (transform, motion *silo.Component, err error) {
	catalog := silo.Factory.NewCatalog(16)
	if path == "" {
		err = catalog.Load(strings.NewReader(defaultCatalog))
	} else {
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, nil, openErr
		}
		defer f.Close()
		err = catalog.Load(f)
	}
	if err != nil {
		return nil, nil, err
	}

	transformSchema, ok := catalog.Schema("transform")
	if !ok {
		return nil, nil, missingSchemaError("transform")
	}
	motionSchema, ok := catalog.Schema("motion")
	if !ok {
		return nil, nil, missingSchemaError("motion")
	}
	if transform, err = silo.DefineComponent[Transform](transformSchema); err != nil {
		return nil, nil, err
	}
	if motion, err = silo.DefineComponent[Motion](motionSchema); err != nil {
		return nil, nil, err
	}
	return transform, motion, nil
}

type missingSchemaError string

func (e missingSchemaError) Error() string {
	return "catalog has no " + string(e) + " schema"
}
