package records

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"seqtrack/adapters/excel"
	"seqtrack/models"

	"golang.org/x/sync/errgroup"
)

// ImportResult is the outcome for one file of a bulk import
type ImportResult struct {
	File   string
	Record *models.Record
	Err    error
}

// SpreadsheetsIn lists the supported spreadsheets directly inside dir, sorted by name
func SpreadsheetsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !excel.HasSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Import uploads every file in paths. Extraction runs on up to workers
// goroutines; records are stored one at a time in the order of paths so
// sequence numbers follow it. A failing file does not stop the others.
func (s *Service) Import(ctx context.Context, paths []string, workers int) ([]ImportResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]ImportResult, len(paths))
	prepared := make([]*preparedUpload, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		results[i].File = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				results[i].Err = err
				return nil
			}
			defer f.Close()
			prepared[i], results[i].Err = s.prepare(path, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	imported := 0
	for i, upload := range prepared {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if upload != nil {
			results[i].Record, results[i].Err = s.commit(ctx, upload)
		}
		if results[i].Err == nil {
			imported++
		}
		s.metrics.upload(results[i].Err)
	}

	s.logger.Info("[Import] stored %d of %d files", imported, len(paths))
	return results, nil
}
