package mapper

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads r from paths whenever one of the files changes, until ctx
// is done. onReload, if not nil, is called after every reload attempt with
// its result. A failed reload leaves the previous statements in place.
//
// Parent directories are watched rather than the files themselves, so
// editors that save by renaming a temporary file are handled.
func Watch(ctx context.Context, r *Registry, paths []string, onReload func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pager/mapper: watch: %w", err)
	}
	defer w.Close()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("pager/mapper: watch: %w", err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("pager/mapper: watch %s: %w", d, err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, watched := files[filepath.Clean(ev.Name)]; !watched {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			err := r.Load(paths...)
			if onReload != nil {
				onReload(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(fmt.Errorf("pager/mapper: watch: %w", err))
			}
		}
	}
}
