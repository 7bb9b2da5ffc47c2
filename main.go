package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/facepay/flowgate/agent"
	"github.com/facepay/flowgate/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("backend-url", "http://localhost:8000", "base url of the banking backend")
	cmd.Flags().String("family-register-path", "", "override for the family registration endpoint path")
	cmd.Flags().String("definitions-dir", "", "directory of yaml flow definitions")
	cmd.Flags().String("capture-file", "", "image file served by the capture provider")
	cmd.Flags().String("storage-impl", "memory", "implementation of session storage")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "flowgate", "namespace used in storage")
	cmd.Flags().Int("session-ttl", 600, "idle session lifetime in seconds")
	cmd.Flags().Int("shard-count", 16, "shard count of the in-memory session store")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.BackendURL = viper.GetString("backend-url")
	c.cfg.FamilyRegisterPath = viper.GetString("family-register-path")
	c.cfg.DefinitionsDir = viper.GetString("definitions-dir")
	c.cfg.CaptureFile = viper.GetString("capture-file")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.SessionTTLSeconds = viper.GetInt("session-ttl")
	c.cfg.ShardCount = viper.GetInt("shard-count")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "flowgate",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
