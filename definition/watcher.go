package definition

import (
	"sync"

	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/persistence"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a definition file into storage when it changes on disk. A
// file that stops compiling is logged and skipped; the stored definition
// stays as it was.
type Watcher struct {
	dir     string
	storage persistence.DefinitionStorage
	watcher *fsnotify.Watcher
	stop    chan struct{}
	wg      *sync.WaitGroup
}

func NewWatcher(dir string, storage persistence.DefinitionStorage, wg *sync.WaitGroup) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		storage: storage,
		watcher: fsWatcher,
		stop:    make(chan struct{}),
		wg:      wg,
	}, nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !isDefinitionFile(event.Name) {
					continue
				}
				w.reload(event.Name)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Error("definition watcher error", zap.Error(err))
			case <-w.stop:
				return
			}
		}
	}()
	logger.Info("watching definitions", zap.String("dir", w.dir))
}

func (w *Watcher) reload(path string) {
	def, err := LoadFile(path)
	if err != nil {
		logger.Error("skipping changed definition file", zap.String("file", path), zap.Error(err))
		return
	}
	if err := w.storage.SaveDefinition(*def); err != nil {
		logger.Error("error saving reloaded definition", zap.String("flow", def.Name), zap.Error(err))
		return
	}
	logger.Info("reloaded flow definition", zap.String("flow", def.Name), zap.String("file", path))
}

func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
}
