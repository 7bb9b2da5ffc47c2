package agent

import (
	"sync"
	"time"

	"github.com/facepay/flowgate/capture"
	"github.com/facepay/flowgate/config"
	"github.com/facepay/flowgate/container"
	"github.com/facepay/flowgate/definition"
	"github.com/facepay/flowgate/gateway"
	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/rest"
	"github.com/facepay/flowgate/service"
	"go.uber.org/zap"
)

type Agent struct {
	Config           config.Config
	container        *container.DIContainer
	executionService *service.FlowExecutionService
	httpServer       *rest.Server
	reaper           *service.Reaper
	watcher          *definition.Watcher
	shutdown         bool
	shutdownLock     sync.Mutex
	wg               sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupContainer,
		a.setupDefinitions,
		a.setupExecutionService,
		a.setupReaper,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupContainer() error {
	a.container = container.NewDiContainer()
	a.container.Init(a.Config)
	return nil
}

func (a *Agent) setupDefinitions() error {
	storage := a.container.GetDefinitionStorage()
	for _, def := range definition.Builtin() {
		if err := storage.SaveDefinition(def); err != nil {
			return err
		}
	}
	if a.Config.DefinitionsDir == "" {
		return nil
	}
	defs, err := definition.LoadDir(a.Config.DefinitionsDir)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := storage.SaveDefinition(def); err != nil {
			return err
		}
	}
	a.watcher, err = definition.NewWatcher(a.Config.DefinitionsDir, storage, &a.wg)
	return err
}

func (a *Agent) setupExecutionService() error {
	gw := gateway.NewHttpGateway(gateway.Config{
		BaseURL:            a.Config.BackendURL,
		FamilyRegisterPath: a.Config.FamilyRegisterPath,
	})
	var cp capture.Provider
	if a.Config.CaptureFile != "" {
		cp = &capture.FileProvider{Path: a.Config.CaptureFile}
	} else {
		cp = &capture.UnavailableProvider{}
	}
	a.executionService = service.NewFlowExecutionService(a.container, gw, cp)
	return nil
}

func (a *Agent) setupReaper() error {
	maxIdle := time.Duration(a.Config.SessionTTLSeconds) * time.Second
	if maxIdle <= 0 {
		maxIdle = 10 * time.Minute
	}
	a.reaper = service.NewReaper(a.executionService, maxIdle, &a.wg)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.executionService, a.container.GetDefinitionStorage())
	return err
}

func (a *Agent) Start() error {
	a.reaper.Start()
	if a.watcher != nil {
		a.watcher.Start()
	}
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.reaper.Stop()
	if err := a.httpServer.Stop(); err != nil {
		return err
	}
	a.wg.Wait()
	return nil
}
