// Command poolstat builds a scene of cubes in one allocator and prints how
// the allocator laid them out across its pools.
//
// Usage:
//
//	poolstat [-config alloc.toml] [-cubes 64] [-v]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/poolalloc"
	"github.com/pavanmanishd/poolalloc/mesh"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "poolstat:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("poolstat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML allocator config")
	cubes := fs.Int("cubes", 16, "number of cubes to build")
	verbose := fs.Bool("v", false, "log pool lifecycle events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cubes < 0 {
		return errors.Errorf("negative cube count %d", *cubes)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := poolalloc.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = poolalloc.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	a, err := cfg.NewAllocator(logger)
	if err != nil {
		return err
	}

	for i := range *cubes {
		m, err := mesh.Cube(a)
		if err != nil {
			return releaseAfter(a, errors.Wrapf(err, "cube %d", i))
		}
		m.Translate(mgl32.Vec3{float32(i), 0, 0})
	}

	if err := report(stdout, a); err != nil {
		return releaseAfter(a, err)
	}
	return a.Release()
}

type releaser interface {
	Release() error
}

// releaseAfter releases r on a failure path. err stays the cause; a release
// failure is added to its message.
func releaseAfter(r releaser, err error) error {
	if rerr := r.Release(); rerr != nil {
		return errors.Wrapf(err, "release: %v", rerr)
	}
	return err
}

func report(w io.Writer, a *poolalloc.Allocator) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "pool\tcapacity\tavailable\t")
	for _, p := range a.Pools() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t\n", p.ID, p.Capacity, p.Available)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	m := a.Metrics()
	_, err := fmt.Fprintf(w, "pools=%d in_use=%d capacity=%d allocations=%d utilization=%.1f%%\n",
		m.NumPools, m.SizeInUse, m.Capacity, m.Allocations, m.Utilization*100)
	return err
}
