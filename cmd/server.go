package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	devConfig "github.com/sentinela-io/sentinela/dev/config"
	"github.com/sentinela-io/sentinela/server"
	"github.com/sentinela-io/sentinela/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a sentinela server",
	Long:  `The sentinela server handles user accounts, emergency contacts, incident reports and panic alert fan-out`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	config := viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return config
}

// devConfigFilePath returns the path to the dev server config,
// creating the file from the default template if it doesn't exist yet.
func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	configFilePath := filepath.Join(configDir, "dev", "config", "server.yml")
	exists, err := utils.FileExist(configFilePath)
	if err != nil {
		log.Panic(err)
	}

	if !exists {
		if err := ioutil.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600); err != nil {
			log.Panic(err)
		}
	}

	return configFilePath
}
