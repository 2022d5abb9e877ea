// Package store содержит реализации хранилища счетов и фабрику их выбора.
package store

import (
	"context"
	"errors"

	"github.com/mvoronin/payment-system/internal/config"
	"github.com/mvoronin/payment-system/internal/model"
)

// ErrAccountNotFound возвращается, если счёт с указанным номером не найден.
// Отсутствие счёта — штатный исход, а не сбой хранилища.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore описывает контракт доступа к счетам. Реализации взаимозаменяемы
// и выбираются один раз при создании сервиса.
type AccountStore interface {
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	Close() error
}

// BackupStoreType — значение конфигурации, при котором выбирается резервное хранилище.
const BackupStoreType = "Backup"

// New создаёт хранилище счетов по значению конфигурации: "Backup" выбирает
// резервное хранилище, любое другое значение — основное в PostgreSQL.
func New(cfg *config.Config) (AccountStore, error) {
	if cfg.DataStoreType == BackupStoreType {
		return NewBackupStore(cfg.BackupFilePath)
	}
	return NewPostgresStore(cfg.DatabaseURI)
}
