package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"

	enginecfg "spatial-engine/config"
	"spatial-engine/internal/demo"
	"spatial-engine/scene"
)

// Keeps the config field names readable by the cli package when the binary
// is obfuscated.
var _ = reflect.TypeOf(config{})

type config struct {
	Config      string `cli:""        env:"SPATIAL_CONFIG"       help:"Engine configuration file (TOML)."`
	Scene       string `cli:""        env:"SPATIAL_SCENE"        help:"Scene to load (.gltf, .glb, .obj or .json). A procedural city is generated when empty."`
	SaveScene   string `cli:""        env:"SPATIAL_SAVE_SCENE"   help:"Writes the scene as JSON before running."`
	Blocks      int    `cli:""        env:"SPATIAL_BLOCKS"       help:"Number of city blocks per side of the procedural city."`
	Seed        int    `cli:""        env:"SPATIAL_SEED"         help:"Seed of the procedural city and the headless raycasts."`
	Headless    bool   `cli:""        env:"SPATIAL_HEADLESS"     help:"Runs culling and raycasts without a window."`
	Frames      int    `cli:""        env:"SPATIAL_FRAMES"       help:"Number of frames of a headless run."`
	Rays        int    `cli:""        env:"SPATIAL_RAYS"         help:"Random raycasts per headless frame."`
	LogEvery    int    `cli:",hidden" env:"SPATIAL_LOG_EVERY"    help:"Frames between headless stat logs."`
	MetricsAddr string `cli:""        env:"SPATIAL_METRICS_ADDR" help:"Listening address of the Prometheus metrics endpoint. Disabled when empty."`
	LogLevel    string `cli:""        env:"SPATIAL_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool   `cli:""        env:"SPATIAL_LOG_INDENT"   help:"Indent logs."`
	Version     bool   `cli:""        env:"-"                    help:"Show version."`
	Help        bool   `cli:""        env:"-"                    help:"Show help."`
}

func main() {
	conf := config{
		Blocks:   6,
		Seed:     1,
		Frames:   600,
		Rays:     64,
		LogEvery: 120,
		LogLevel: logs.InfoLevel.String(),
	}

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs the spatial engine demo.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	ec := enginecfg.Default()
	if conf.Config != "" {
		var err error
		if ec, err = enginecfg.Load(conf.Config); err != nil {
			logs.Fatal(err)
		}
	}

	rng := rand.New(rand.NewSource(int64(conf.Seed)))
	s, city, err := setupScene(conf, ec, rng)
	if err != nil {
		logs.Fatal(err)
	}

	if conf.SaveScene != "" {
		if err := scene.SaveScene(s, conf.SaveScene); err != nil {
			logs.Fatal(err)
		}
		logs.WithTag("path", conf.SaveScene).Info("scene saved")
	}

	if conf.MetricsAddr != "" {
		var mux http.ServeMux
		mux.Handle("/metrics", promhttp.Handler())

		go ListenAndServe(ctx, &http.Server{
			Addr:    conf.MetricsAddr,
			Handler: metrics.HTTPHandler(&mux, MetricsPathFormatter),
		})
	}

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("headless", conf.Headless).
		WithTag("entities", s.EntityCount()).
		WithTag("nodes", s.Tree().NodeCount()).
		WithTag("dynamic", len(s.Dynamic())).
		Info("starting spatial engine demo")

	dn := demo.NewDayNight()

	if conf.Headless {
		stats := demo.RunHeadless(ctx, s, city, dn, ec, demo.HeadlessOptions{
			Frames:   conf.Frames,
			Rays:     conf.Rays,
			LogEvery: conf.LogEvery,
			Rand:     rng,
		})

		logs.WithTag("frames", stats.Frames).
			WithTag("visible", stats.Visible).
			WithTag("nodes_skipped", stats.NodesSkipped).
			WithTag("lights", stats.Lights).
			WithTag("triangles", stats.Triangles).
			WithTag("rays", stats.Rays).
			WithTag("hits", stats.Hits).
			WithTag("hit_rate", stats.HitRate()).
			WithTag("nodes", stats.Nodes).
			WithTag("depth", stats.Depth).
			WithTag("indexed", stats.Indexed).
			WithTag("dynamic", stats.Dynamic).
			Info("headless run finished")
		return
	}

	if err := RunWindow(ctx, s, city, dn, ec); err != nil {
		logs.Fatal(err)
	}
}

// setupScene loads the configured scene file or generates the city. The
// city is nil for loaded scenes.
func setupScene(conf config, ec enginecfg.Config, rng *rand.Rand) (*scene.Scene, *demo.City, error) {
	if conf.Scene == "" {
		s := scene.NewScene(ec.Bounds(), ec.TreeConfig())
		s.Name = "City"
		city := demo.BuildCity(s, rng, conf.Blocks)
		return s, city, nil
	}

	switch ext := strings.ToLower(filepath.Ext(conf.Scene)); ext {
	case ".json":
		s, err := scene.LoadScene(conf.Scene)
		return s, nil, err

	case ".gltf", ".glb", ".obj":
		load := scene.LoadGLTF
		if ext == ".obj" {
			load = scene.LoadOBJ
		}
		res, err := load(conf.Scene)
		if err != nil {
			return nil, nil, err
		}
		s := scene.NewScene(ec.Bounds(), ec.TreeConfig())
		s.Name = strings.TrimSuffix(filepath.Base(conf.Scene), ext)
		res.AddTo(s)
		return s, nil, nil

	default:
		return nil, nil, errors.New("unsupported scene format").
			WithTag("path", conf.Scene).
			WithTag("extension", ext)
	}
}
