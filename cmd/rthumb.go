package cmd

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/ShoshinNikita/rthumb/pkg/alias"
	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/ShoshinNikita/rthumb/thumbnails"
	"github.com/ShoshinNikita/rthumb/web"
)

type Rthumb struct {
	cfg rthumb.Config

	generator *thumbnails.Generator

	server *web.Server
}

func NewRthumb(cfg rthumb.Config) *Rthumb {
	return &Rthumb{
		cfg: cfg,
	}
}

func (r *Rthumb) Prepare() (err error) {
	resolver, err := alias.New(r.cfg.File.Aliases)
	if err != nil {
		return fmt.Errorf("invalid aliases: %w", err)
	}

	urls, err := web.NewURLBuilder(r.cfg.PublicURL)
	if err != nil {
		return err
	}

	// Thumbnail Generator
	r.generator, err = thumbnails.NewGenerator(r.cfg.File.BehaviorConfig, r.cfg.File.Thumbnails, resolver, urls)
	if err != nil {
		return fmt.Errorf("couldn't prepare thumbnail generator: %w", err)
	}

	dir := r.generator.DestinationDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("couldn't create destination dir %q: %w", dir, err)
	}

	// Web Server
	staticDirs := make(map[string]string, len(r.cfg.File.Static))
	for prefix, path := range r.cfg.File.Static {
		staticDirs[prefix], err = resolver.Resolve(path)
		if err != nil {
			return fmt.Errorf("couldn't resolve static dir for %q: %w", prefix, err)
		}
	}
	r.server = web.NewServer(r.cfg, r.generator, staticDirs)

	return nil
}

func (r *Rthumb) Start(onError func()) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := r.server.Start(); err != nil {
			rlog.Errorf("web server error: %s", err)
			onError()
		}
	}()

	return done
}

// Shutdown shutdowns all components. It is safe to call this method even if Prepare has failed.
func (r *Rthumb) Shutdown(ctx context.Context) error {
	var failed int
	for _, v := range []struct {
		name string
		s    shutdowner
	}{
		{"web server", r.server},
	} {
		err := safeShutdown(ctx, v.s)
		if err != nil {
			failed++
			rlog.Errorf("couldn't gracefully shutdown %s: %s", v.name, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("couldn't gracefully shutdown %d component(s), see logs for more info", failed)
	}
	return nil
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// safeShutdown calls Shutdown method only on initialized components.
func safeShutdown(ctx context.Context, s shutdowner) error {
	v := reflect.ValueOf(s)
	if !v.IsValid() || v.IsNil() {
		return nil
	}
	return s.Shutdown(ctx)
}
