// Package library finds save files on disk and decodes them in parallel.
package library

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/d2vault/d2vault/internal/d2s"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of decoding one file. Exactly one of Save and Err
// is set.
type Result struct {
	Path string
	Hash string // blake2b-256 of the file content, hex
	Size int
	Save *d2s.Save
	Err  error
}

// Library decodes batches of save files with a bounded number of workers.
type Library struct {
	dec     *d2s.Decoder
	workers int
	log     *zap.Logger
}

func New(dec *d2s.Decoder, workers int, log *zap.Logger) *Library {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{dec: dec, workers: workers, log: log}
}

// DecodeAll decodes paths and returns one Result per path in input order.
// A file that fails to read or decode only fails its own Result. Once ctx
// is done no further files are started; their Results carry ctx.Err().
func (l *Library) DecodeAll(ctx context.Context, paths []string) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i := range paths {
		if err := gctx.Err(); err != nil {
			for j := i; j < len(paths); j++ {
				results[j].Err = err
			}
			break
		}
		r := &results[i]
		g.Go(func() error {
			l.decodeFile(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	l.log.Info("decoded library",
		zap.Int("files", len(paths)),
		zap.Int("failed", failed),
		zap.Int("workers", l.workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, ctx.Err()
}

func (l *Library) decodeFile(r *Result) {
	buf, err := os.ReadFile(r.Path)
	if err != nil {
		r.Err = fmt.Errorf("read %s: %w", r.Path, err)
		return
	}
	sum := blake2b.Sum256(buf)
	r.Hash = hex.EncodeToString(sum[:])
	r.Size = len(buf)

	s, err := l.dec.Decode(buf)
	if err != nil {
		r.Err = fmt.Errorf("decode %s: %w", r.Path, err)
		l.log.Warn("decode failed", zap.String("file", r.Path), zap.Error(err))
		return
	}
	r.Save = s
	l.log.Debug("decoded",
		zap.String("file", r.Path),
		zap.String("name", s.DisplayName()),
		zap.Int("items", s.Items.Len()),
	)
}

// Scan lists the files under dir whose extension matches ext, ignoring
// case, in lexical order.
func Scan(dir, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Collect expands args into save file paths: files are kept as given,
// directories are scanned for ext.
func Collect(args []string, ext string) ([]string, error) {
	var paths []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, a)
			continue
		}
		found, err := Scan(a, ext)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
