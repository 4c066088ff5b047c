package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/khoward/debtscan/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the project configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented " + config.FileName + " template",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(projectRoot(), config.FileName)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
