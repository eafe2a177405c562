package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/catalog"
)

// scanner decodes files concurrently and hands each outcome to a single
// recorder, so the catalogue only sees one writer.
type scanner struct {
	reg     *rsz.Registry
	opts    rsz.Options
	workers int
	logger  *zap.Logger
}

// collect walks roots and returns every regular file accepted by match,
// sorted by path.
func collect(roots []string, match func(string) bool) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && match(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// run scans files and calls record for each one in the calling goroutine.
// A decode failure is a record, not an error; only ctx cancellation and
// record errors stop the scan.
func (s *scanner) run(ctx context.Context, files []string, record func(catalog.FileRecord) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	results := make(chan catalog.FileRecord, s.workers)

	go func() {
		defer close(results)
		for _, path := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				rec := s.scanFile(path)
				select {
				case results <- rec:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		_ = g.Wait()
	}()

	var recordErr error
	for rec := range results {
		if recordErr != nil {
			continue
		}
		if err := record(rec); err != nil {
			recordErr = err
			cancel()
		}
	}
	if recordErr != nil {
		return recordErr
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *scanner) scanFile(path string) catalog.FileRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("read failed", zap.String("path", path), zap.Error(err))
		return catalog.NewFileRecord(path, 0, nil, 0, err)
	}
	size := int64(len(data))

	in, err := parseInput(path, data)
	if err != nil {
		return catalog.NewFileRecord(path, size, nil, 0, err)
	}
	blk, err := in.block()
	if err != nil {
		return catalog.NewFileRecord(path, size, nil, 0, err)
	}
	descs := blk.Describe(s.reg)

	g, err := rsz.NewBuilder(s.reg, s.opts).DecodeBlock(blk)
	if err != nil {
		s.logger.Debug("decode failed", zap.String("path", path), zap.Error(err))
		return catalog.NewFileRecord(path, size, descs, 0, err)
	}
	return catalog.NewFileRecord(path, size, descs, len(g.Objects)-1, nil)
}
