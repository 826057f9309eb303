package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fieldcalc/fieldcalc/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	log     = util.NewLogger("main")
	cfgFile string
	conf    config

	// Version is set at build time
	Version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "fieldcalc",
	Short:   "fieldcalc - substation meter and power calculations",
	Version: Version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default \"~/fieldcalc.yaml\" or \"/etc/fieldcalc.yaml\")")
	rootCmd.PersistentFlags().StringP("log", "l", "", "Log level (fatal, error, warn, info, debug, trace)")
	bindP(rootCmd.PersistentFlags(), "log")
}

func bindP(flags *pflag.FlagSet, key string) {
	if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
		panic(err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.AddConfigPath("/etc")
		viper.SetConfigName("fieldcalc")
	}

	viper.SetEnvPrefix("fieldcalc")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// configure loads the config and applies the log levels
func configure() {
	if err := loadConfig(&conf); err != nil {
		log.FATAL.Fatal(err)
	}

	if err := util.LogLevel(conf.Log, conf.Levels); err != nil {
		log.FATAL.Fatal(err)
	}

	if file := viper.ConfigFileUsed(); file != "" {
		log.INFO.Printf("using config file: %s", file)
	} else {
		log.INFO.Println("missing config file - using defaults")
	}
}
