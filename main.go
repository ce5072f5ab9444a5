package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/scene"
	"github.com/o0olele/svo-go/server"
	"github.com/o0olele/svo-go/source"
)

func main() {
	app := &cli.App{
		Name:  "svo",
		Usage: "build, merge and serve sparse voxel octrees",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", EnvVars: []string{"SVO_DEBUG"}, Usage: "development logging"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			buildCommand(),
			mergeCommand(),
			statsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if c.Bool("debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger.Sugar(), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve a scene over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", EnvVars: []string{"SVO_ADDR"}},
			&cli.StringFlag{Name: "scene", EnvVars: []string{"SVO_SCENE"}, Usage: "YAML scene file"},
			&cli.StringFlag{Name: "static", Value: "./web", Usage: "static file directory"},
			&cli.StringFlag{Name: "data", Value: ".", Usage: "mesh and snapshot directory"},
		},
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := scene.New()
			if path := c.String("scene"); path != "" {
				cfg, err := scene.LoadConfig(path)
				if err != nil {
					return err
				}
				if s, err = scene.FromConfig(cfg, logger); err != nil {
					return err
				}
				if err := s.Build(ctx, logger); err != nil {
					return err
				}
			}

			cfg := server.DefaultConfig()
			cfg.Addr = c.String("addr")
			cfg.DataDir = c.String("data")
			if dir := c.String("static"); dir != "" {
				if _, err := os.Stat(dir); err == nil {
					cfg.StaticDir = dir
				}
			}

			err = server.New(s, cfg, logger).ListenAndServe(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "voxelize a wavefront mesh into a snapshot",
		ArgsUsage: "<mesh.obj>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "out.svo"},
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Value: 6},
			&cli.BoolFlag{Name: "voxel", Usage: "voxelize into a grid instead of querying a BVH"},
			&cli.IntFlag{Name: "dilate", Usage: "grid dilation radius in cells"},
			&cli.StringFlag{Name: "color", Usage: "solid voxel color, e.g. #c0c0c0"},
			&cli.BoolFlag{Name: "no-gzip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("build takes exactly one mesh file", 2)
			}
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			tris, err := builder.LoadOBJFile(c.Args().First())
			if err != nil {
				return err
			}

			b := builder.NewBuilder(logger, c.Int("depth"))
			b.SetUseVoxel(c.Bool("voxel"), int32(c.Int("dilate")))
			if hex := c.String("color"); hex != "" {
				col, err := colorful.Hex(hex)
				if err != nil {
					return errors.Wrapf(err, "bad color %q", hex)
				}
				b.SetColor(source.Solid(col))
			}
			builder.UseGzip(!c.Bool("no-gzip"))

			stats, err := b.BuildAndSave(tris, c.String("output"))
			if err != nil {
				return err
			}

			t := newTable()
			t.AppendHeader(table.Row{"triangles", "bvh nodes", "grid cells", "nodes", "voxels", "source", "octree", "total"})
			t.AppendRow(table.Row{stats.Triangles, stats.BVHNodes, stats.GridCells, stats.Octree.Nodes,
				stats.Octree.Voxels, stats.SourceTime, stats.OctreeTime, stats.Total})
			t.Render()
			return nil
		},
	}
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "union two snapshots",
		ArgsUsage: "<a.svo> <b.svo>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "merged.svo"},
			&cli.BoolFlag{Name: "prefer-second", Usage: "keep the second tree's colors where both are set"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("merge takes exactly two snapshots", 2)
			}

			trees := make([]*octree.VoxelOctree, 2)
			for i := range trees {
				nodes, err := builder.LoadFile(c.Args().Get(i))
				if err != nil {
					return err
				}
				trees[i] = octree.NewFromNodes(nodes, false)
			}

			opts := octree.MergeOptions{}
			if c.Bool("prefer-second") {
				opts.Colors = octree.ColorPreferSecond
			}
			merged, err := octree.MergeWithOptions(trees[0], trees[1], opts)
			if err != nil {
				return err
			}
			if err := builder.SaveFile(c.String("output"), merged.Nodes()); err != nil {
				return err
			}

			t := newTable()
			t.AppendHeader(table.Row{"tree", "nodes", "voxels", "depth"})
			for i, tree := range append(trees, merged) {
				name := c.Args().Get(i)
				if i == 2 {
					name = c.String("output")
				}
				st := tree.Stats()
				t.AppendRow(table.Row{name, st.Nodes, st.Voxels, st.Depth})
			}
			t.Render()
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "describe snapshot files",
		ArgsUsage: "<file.svo>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dump", Usage: "log the nodes of small trees"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("stats takes at least one snapshot", 2)
			}
			var logger *zap.SugaredLogger
			if c.Bool("dump") {
				l, err := newLogger(c)
				if err != nil {
					return err
				}
				defer l.Sync()
				logger = l
			}

			t := newTable()
			t.AppendHeader(table.Row{"file", "size", "gzip", "nodes", "leaves", "voxels", "levels", "depth", "bytes"})
			for _, filename := range c.Args().Slice() {
				info, err := builder.GetFileInfo(filename)
				if err != nil {
					return err
				}
				if logger != nil {
					nodes, err := builder.LoadFile(filename)
					if err != nil {
						return err
					}
					logger.Infow("snapshot", "file", filename)
					octree.NewFromNodes(nodes, false).Dump(logger, true)
				}
				st := info.Stats
				t.AppendRow(table.Row{info.Filename, info.FileSize, info.Compressed, st.Nodes, st.Leaves,
					st.Voxels, st.Levels, st.Depth, st.Bytes})
			}
			t.Render()
			return nil
		},
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}
