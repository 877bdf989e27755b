package fq4

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/fq4/bank"
	"github.com/bodgit/fq4/rgbe"
	"github.com/bodgit/fq4/text"
	"github.com/bodgit/fq4/tile"
	"github.com/sirupsen/logrus"
)

type job struct {
	kind Kind
	path string
}

// structural reports whether err means the file could not be understood,
// rather than could not be read
func structural(err error) bool {
	for _, target := range []error{
		bank.ErrDetectionFailed,
		text.ErrDetectionFailed,
		rgbe.ErrMissingPlane,
		tile.ErrInvalidSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *Extractor) findFiles(ctx context.Context, base string) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			kind, path := Classify(file, e.suffixes)
			switch kind {
			case KindImage, KindTiles, KindBank, KindText:
			default:
				return nil
			}

			select {
			case out <- job{kind: kind, path: path}:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (e *Extractor) extract(j job) error {
	var err error
	switch j.kind {
	case KindImage:
		_, err = e.DecodeImage(j.path)
	case KindTiles:
		_, err = e.DecodeTiles(j.path)
	case KindBank:
		_, err = e.ExtractBank(j.path)
	case KindText:
		_, err = e.ExtractText(j.path)
	}

	if err == nil || !structural(err) {
		return err
	}

	// The file is kept in the catalog so failures can be reviewed later
	e.logger.WithFields(logrus.Fields{
		"file": j.path,
		"kind": j.kind,
	}).Warn(err)

	_, err = e.record(Asset{
		Path:   j.path,
		Kind:   j.kind,
		Detail: err.Error(),
	})

	return err
}

func (e *Extractor) fileWorker(ctx context.Context, in <-chan job) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			if err := e.extract(j); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the game directory dir, decoding every recognised file across
// the configured number of workers. Files that can't be understood are
// logged and recorded but don't stop the scan, any other error does.
func (e *Extractor) Scan(ctx context.Context, dir string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	if err := e.ExportPalette(); err != nil {
		return err
	}

	var errcList []<-chan error

	jobs, errc, err := e.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < e.config.Workers; i++ {
		errc, err := e.fileWorker(ctx, jobs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
