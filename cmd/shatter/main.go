// shatter breaks meshes into closed-shell debris fragments.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/bake"
	"github.com/Faultbox/shatter/internal/config"
	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/random"
	"github.com/Faultbox/shatter/internal/shatter"
	"github.com/Faultbox/shatter/pkg/formats"
	"github.com/Faultbox/shatter/pkg/math"
)

// frameTime is the simulated host frame length between ticks.
const frameTime = 16 * time.Millisecond

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, cfg.Logging.FileConfig(), true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, args := args[0], args[1:]
	switch command {
	case "decompose", "d":
		err = cmdDecompose(cfg, args)
	case "bake", "b":
		err = cmdBake(cfg, args)
	case "cube":
		err = cmdCube(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shatter - mesh debris decomposition

Usage:
  shatter [flags] <command> [options]

Commands:
  decompose <in.obj> [out.obj]   Shatter a mesh and export the fragments
  bake [-o out.obj] <in.obj>...  Bake meshes in the background, then scatter
  cube [out.obj]                 Shatter a 2x2x2 cube

Flags:
  -config <file>   Config file (default ./config.yaml)
  -debug           Debug logging
  -seed <n>        Random seed (0 = time-seeded)
  -parts <n>       Target fragment count
  -area <a>        Target front-face area per fragment
  -slice <d>       Time budget per host tick, e.g. 5ms

Examples:
  shatter decompose wall.obj wall_debris.obj
  shatter -seed 42 -parts 20 cube cube_debris.obj
  shatter -slice 2ms bake -o baked.obj crate.obj barrel.obj`)
}

func cmdDecompose(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shatter decompose <in.obj> [out.obj]")
	}
	src, err := loadSource(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	out := outputPath(args[0], args[1:])
	return scatterAndExport(cfg, objectName(args[0]), src, out)
}

func cmdCube(cfg *config.Config, args []string) error {
	out := "cube_debris.obj"
	if len(args) > 0 {
		out = args[0]
	}
	return scatterAndExport(cfg, "cube", mesh.Cube(2), out)
}

// scatterAndExport runs one scatter request through a simulated host loop
// and writes the fragments to out.
func scatterAndExport(cfg *config.Config, name string, src *mesh.Source, out string) error {
	sc := &scene{}
	target := sc.add(name, src)

	d := shatter.NewDecomposer(cfg.Scatter.Params(), random.FromSeed(cfg.Scatter.Seed))
	req := &shatter.Request{
		Target:            target,
		Mesh:              src,
		Scale:             math.Vec3{X: 1, Y: 1, Z: 1},
		DestroyOriginal:   true,
		DestroySourceMesh: true,
	}

	var stats shatter.Stats
	run := shatter.NewScatterer(d, sc, cfg.Scatter.MaxSlice).Run([]*shatter.Request{req}, func(s shatter.Stats) {
		stats = s
	})
	frames := hostLoop(run.Tick)

	logger.Info("decomposed",
		zap.String("target", name),
		zap.Int("frames", frames),
		zap.Int("source_triangles", stats.SourceTriangles),
		zap.Int("fragments", stats.Fragments),
		zap.Int("triangles", stats.Triangles),
		zap.Int("subdivisions", stats.Subdivisions),
		zap.Float32("largest_fragment", sc.largestExtent()),
		zap.Duration("running_time", stats.RunningTime),
		zap.Bool("original_destroyed", target.Destroyed()),
	)
	if err := formats.WriteOBJFile(out, sc.fragments); err != nil {
		return err
	}
	fmt.Printf("%s: %d triangles -> %d fragments (%d triangles) in %s\n",
		name, stats.SourceTriangles, stats.Fragments, stats.Triangles, out)
	return nil
}

func cmdBake(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	outFlag := fs.String("o", "baked_debris.obj", "Output file for the scattered fragments")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: shatter bake [-o out.obj] <in.obj>...")
	}
	opts, err := cfg.Bake.EntryOptions()
	if err != nil {
		return err
	}

	sc := &scene{}
	d := shatter.NewDecomposer(cfg.Scatter.Params(), random.FromSeed(cfg.Scatter.Seed))
	q := bake.New(d, sc, bake.Options{
		SliceBudget: cfg.Bake.SliceBudget,
		OnStateChange: func(e *bake.Entry, s bake.State) {
			logger.Debug("bake state", zap.String("target", e.Target().Name()), zap.Stringer("state", s))
		},
	})

	var entries []*bake.Entry
	var reqs []*shatter.Request
	for _, path := range fs.Args() {
		src, err := loadSource(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		target := sc.add(objectName(path), src)
		e := bake.NewEntry(target, src, math.Vec3{X: 1, Y: 1, Z: 1}, opts)
		q.Enqueue(e)
		entries = append(entries, e)
		reqs = append(reqs, &shatter.Request{
			Target:          target,
			Mesh:            src,
			Scale:           math.Vec3{X: 1, Y: 1, Z: 1},
			DestroyOriginal: true,
			Baked:           e,
		})
	}

	// The scatter run starts right away and waits on each entry until the
	// queue has baked it.
	run := shatter.NewScatterer(d, sc, cfg.Scatter.MaxSlice).Run(reqs, nil)
	frames := hostLoop(func() bool {
		idle := q.Tick()
		return run.Tick() && idle
	})

	m := q.Metrics()
	logger.Info("bake finished",
		zap.Int("entries", len(entries)),
		zap.Int("frames", frames),
		zap.Int("queue_ticks", m.Ticks),
		zap.Int("suspensions", m.Suspensions),
		zap.Duration("longest_slice", m.LongestSlice),
		zap.Duration("active", m.ActiveTime),
	)
	for _, e := range entries {
		fmt.Printf("%-24s %-8s %-10s %d fragments, %d subdivisions\n",
			e.Target().Name(), e.Method(), e.State(), e.FragmentCount(), e.Subdivisions())
	}

	stats := run.Stats()
	if err := formats.WriteOBJFile(*outFlag, sc.fragments); err != nil {
		return err
	}
	fmt.Printf("scattered %d fragments (%d triangles) into %s\n", stats.Fragments, stats.Triangles, *outFlag)
	return nil
}

// hostLoop ticks step once per simulated frame until it reports completion
// and returns the number of frames used.
func hostLoop(step func() bool) int {
	frames := 0
	for {
		frames++
		start := time.Now()
		if step() {
			return frames
		}
		if rest := frameTime - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}
}

func objectName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func outputPath(in string, rest []string) string {
	if len(rest) > 0 {
		return rest[0]
	}
	return strings.TrimSuffix(in, filepath.Ext(in)) + "_debris.obj"
}
