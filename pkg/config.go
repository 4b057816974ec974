package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	MaxEvents      int    `json:"max_events"`
	Skip           int    `json:"skip"`
	Verbosity      int    `json:"verbosity"`
	FileIn         string `json:"file_in"`
	FileOut        string `json:"file_out"`
	NoDB           bool   `json:"no_db"`
	Host           string `json:"host"`
	User           string `json:"user"`
	Passwd         string `json:"pass"`
	DBName         string `json:"dbname"`
	NumWorkers     int    `json:"num_workers"`
	Parallel       bool   `json:"parallel"`
	WriteData      bool   `json:"write_data"`
	Discard        bool   `json:"discard"`
	MatchPartition string `json:"match_partition"`
	DisplayRun     int    `json:"display_run"`
	DisplayEvent   int    `json:"display_event"`
	DisplayChannel int    `json:"display_channel"`
	DisplayTickLow int    `json:"display_tick_low"`
	DisplayTickHi  int    `json:"display_tick_high"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.NoDB = false
	config.Host = "icarus-db.fnal.gov"
	config.User = "icarusreader"
	config.Passwd = "readonly"
	config.DBName = "ChannelMapICARUS"
	config.NumWorkers = 1
	config.Parallel = false
	config.WriteData = true
	config.Discard = true
	config.MatchPartition = "EE"
	config.DisplayRun = 9311
	config.DisplayEvent = 17559
	config.DisplayChannel = 609
	config.DisplayTickLow = 0
	config.DisplayTickHi = 0

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Match partition: %s", config.MatchPartition), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Display run/event: %d/%d", config.DisplayRun, config.DisplayEvent), "config")
	logger.Info(fmt.Sprintf("Display channel: %d", config.DisplayChannel), "config")
}
