package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/action"
	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/autohandler"
	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/hub"
	"github.com/qredo/admin-agent/internal/hub/message"
	"github.com/qredo/admin-agent/internal/metrics"
	"github.com/qredo/admin-agent/internal/rest"
	"github.com/qredo/admin-agent/internal/service"
	"github.com/qredo/admin-agent/internal/util"
)

var (
	buildType    = ""
	buildVersion = ""
	buildDate    = ""
)

func main() {
	var parser = flags.NewParser(nil, flags.Default)

	_, _ = parser.AddCommand("init", "init config", "write default config", &initCmd{})
	_, _ = parser.AddCommand("start", "start service", "", &startCmd{})
	_, _ = parser.AddCommand("version", "print version", "print service version and quit", &versionCmd{})
	_, _ = parser.AddCommand("new", "issue an action", "print a new admin action as a JSON line and quit", &newCmd{})
	_, _ = parser.AddCommand("inspect", "inspect an action", "read an admin action and print its fields and state", &inspectCmd{})

	_, err := parser.Parse()
	if err != nil {
		os.Exit(1)
	}
}

func startText() {
	fmt.Printf("Admin Agent service %v (%v) build date: %v\n\n", buildType, buildVersion, buildDate)
}

type versionCmd struct{}

func (c *versionCmd) Execute([]string) error {
	startText()
	return nil
}

type startCmd struct {
	ConfigFile string `short:"c" long:"config" description:"path to configuration file" default:"cc.yaml"`
}

func (c *startCmd) Execute([]string) error {
	startText()

	var cfg config.Config
	err := cfg.Load(c.ConfigFile)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if err = cfg.Validate(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	log := util.NewLogger(&cfg.Logging)
	log.Info("Loaded config file from " + c.ConfigFile)

	ver := &api.Version{
		BuildType: "dev",
	}

	if len(buildType) > 0 {
		ver.BuildType = buildType
	}
	if len(buildVersion) > 0 {
		ver.BuildVersion = buildVersion
	}
	if len(buildDate) > 0 {
		ver.BuildDate = buildDate
	}

	router := initRouter(log, cfg, *ver)

	setCtrlC(router)

	if err = router.Start(); err != nil {
		log.Errorf("HTTP Listener error: %v", err)
		log.Warn("exiting")
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("stopped")
	_ = log.Sync()
	return nil
}

func setCtrlC(r *rest.Router) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		r.Stop()
	}()
}

func initRouter(log *zap.SugaredLogger, config config.Config, version api.Version) *rest.Router {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	rds := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.LoadBalancing.RedisConfig.Host, config.LoadBalancing.RedisConfig.Port),
		Password: config.LoadBalancing.RedisConfig.Password,
		DB:       config.LoadBalancing.RedisConfig.DB,
	})

	messageCache := message.NewCacher(config.LoadBalancing.Enable, log, rds)

	source := hub.NewStreamSource(config.Source.Location, log)
	feedHub := hub.NewFeedHub(source, log, messageCache, action.TargetsResource(config.Base.Resource))

	pool := goredis.NewPool(rds)
	rs := redsync.New(pool)
	syncronizer := action.NewSyncronizer(&config.LoadBalancing, rds, rs)
	executor := action.NewExecutor(config.Executor, log)

	agentService := service.NewAgentService(config, feedHub, genAutoHandler(config, log, syncronizer, executor, messageCache), messageCache, log)
	actionService := service.NewActionService(syncronizer, log, config.LoadBalancing.Enable, messageCache, executor)

	return rest.NewRouter(log, config, version, registry, agentService, actionService)
}

func genAutoHandler(config config.Config, log *zap.SugaredLogger, syncronizer action.ActionSync, executor action.Executor, messageCache message.CacheRemover) autohandler.AutoHandler {
	if !config.AutoHandle.Enabled {
		log.Debug("Auto-handle feature not enabled in config")
		return nil
	}

	log.Debug("Auto-handle feature enabled")
	return autohandler.NewAutoHandler(log, config, syncronizer, executor, messageCache)
}

type initCmd struct {
	FileName string `short:"f" long:"file-name" description:"output file name" default:"cc.yaml"`
}

func (c *initCmd) Execute([]string) error {
	var cfg config.Config
	cfg.Default()
	if err := cfg.Save(c.FileName); err != nil {
		return err
	}

	fmt.Printf("written file %s\n\n", c.FileName)
	return nil
}

type newCmd struct {
	Resource  string   `short:"r" long:"resource" description:"resource the action targets" required:"true"`
	TTL       int64    `short:"t" long:"ttl" description:"seconds until the action expires" default:"60"`
	ID        string   `long:"id" description:"action id, generated when empty"`
	Kind      string   `short:"k" long:"kind" description:"action kind: LOGOUT, PUSH_NOT_BEFORE, TEST_AVAILABILITY or empty for a plain action"`
	NotBefore int64    `long:"not-before" description:"not-before epoch seconds for LOGOUT and PUSH_NOT_BEFORE"`
	Adapters  []string `long:"adapter" description:"adapter url for LOGOUT, can be repeated"`
}

func (c *newCmd) Execute([]string) error {
	data, err := issueAction(c.Kind, c.ID, c.TTL, c.Resource, c.NotBefore, c.Adapters)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

type inspectCmd struct {
	File string `short:"f" long:"file" description:"file holding the action JSON, - for stdin" default:"-"`
}

func (c *inspectCmd) Execute([]string) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return errors.Wrap(err, "open action file")
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read action")
	}

	out, err := describeAction(data)
	if err != nil {
		return err
	}

	fmt.Print(out)
	return nil
}
