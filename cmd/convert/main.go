// Command convert отправляет локальные изображения в сервис конвертации и сохраняет WebP рядом
// или в каталог -out.
//
//	convert -server http://localhost:8080 -out ./webp -j 4 a.png b.jpg
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourname/webp_lite/pkg/convertclient"
	"github.com/yourname/webp_lite/pkg/convertproto"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "service base URL")
	path := flag.String("path", convertproto.DefaultPath, "conversion route")
	out := flag.String("out", "", "output directory (default: next to input)")
	jobs := flag.Int("j", runtime.NumCPU(), "parallel uploads")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-file timeout")
	quiet := flag.Bool("q", false, "no progress output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: convert [flags] <image>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	outputs, err := planOutputs(flag.Args(), *out)
	if err != nil {
		log.Fatal(err)
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	opts := []convertclient.Option{convertclient.WithPath(*path)}
	// Прогресс-бары перерисовываются через \r и при параллельной загрузке затирают друг друга.
	if !*quiet && *jobs <= 1 {
		opts = append(opts, convertclient.WithProgress(os.Stdout))
	}
	cli := convertclient.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for i, in := range flag.Args() {
		dst := outputs[i]
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, *timeout)
			defer cancel()
			if err := convertFile(fctx, cli, *server, in, dst); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

func convertFile(ctx context.Context, cli convertclient.Client, server, in, dst string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	data, err := cli.Convert(ctx, server, convertclient.ConvertRequest{
		FileName: in,
		Reader:   f,
		Size:     info.Size(),
	})
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0o644)
}

// planOutputs считает пути результатов заранее и отказывает, если два входа пишут в один файл.
func planOutputs(inputs []string, outDir string) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		dst := outputPath(in, outDir)
		key := filepath.Clean(dst)
		if abs, err := filepath.Abs(dst); err == nil {
			key = abs
		}
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s and %s both write to %s", prev, in, dst)
		}
		seen[key] = in
		outputs[i] = dst
	}
	return outputs, nil
}

// outputPath меняет расширение на .webp и при необходимости переносит файл в outDir.
func outputPath(in, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".webp"
	if outDir == "" {
		return filepath.Join(filepath.Dir(in), name)
	}
	return filepath.Join(outDir, name)
}
