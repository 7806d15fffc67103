package console

import (
	"errors"
	"log/slog"

	"github.com/kettari/games-bot/internal/config"
	"github.com/kettari/games-bot/internal/storage"
)

type MigrateCommand struct {
}

func NewMigrateCommand() *MigrateCommand {
	cmd := MigrateCommand{}
	return &cmd
}

func (cmd *MigrateCommand) Name() string {
	return "migrate"
}

func (cmd *MigrateCommand) Description() string {
	return "migrates GORM database scheme for the snapshot table"
}

func (cmd *MigrateCommand) Run([]string) error {
	slog.Info("migrating GORM database scheme")

	conf := config.GetConfig()
	if conf.DbConnectionString == "" {
		return errors.New("database connection string is not set in the environment (BOT_DB_STRING)")
	}
	manager := storage.NewManager(conf.DbConnectionString)
	if err := manager.Connect(); err != nil {
		return err
	}
	defer manager.Close()
	if err := storage.NewRepository(manager).Migrate(); err != nil {
		return err
	}

	slog.Info("successfully migrated GORM database scheme")

	return nil
}
