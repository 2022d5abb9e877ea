package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mvoronin/payment-system/internal/model"
)

// accountRecord — формат записи счёта в файле снимка.
type accountRecord struct {
	Number         string          `json:"number"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	AllowedSchemes []string        `json:"allowed_schemes"`
}

// BackupStore — резервное хранилище счетов в памяти с необязательным
// сохранением снимка в JSON-файл. Потокобезопасно.
type BackupStore struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]model.Account
}

// NewBackupStore создаёт резервное хранилище. Если указан путь к файлу
// снимка и файл существует, счета загружаются из него.
func NewBackupStore(path string) (*BackupStore, error) {
	s := &BackupStore{
		path:     path,
		accounts: make(map[string]model.Account),
	}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	for _, rec := range records {
		schemes := make(model.SchemeSet, len(rec.AllowedSchemes))
		for _, raw := range rec.AllowedSchemes {
			if scheme, ok := model.ParsePaymentScheme(raw); ok {
				schemes[scheme] = struct{}{}
			}
		}
		s.accounts[rec.Number] = model.Account{
			Number:         rec.Number,
			Balance:        rec.Balance,
			Status:         model.AccountStatus(rec.Status),
			AllowedSchemes: schemes,
		}
	}

	return s, nil
}

// Close сбрасывает снимок на диск, если задан путь к файлу.
func (s *BackupStore) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

// GetAccount возвращает копию счёта по номеру.
func (s *BackupStore) GetAccount(_ context.Context, number string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[number]
	if !ok {
		return nil, ErrAccountNotFound
	}

	cp := acc
	cp.AllowedSchemes = model.NewSchemeSet(acc.AllowedSchemes.List()...)
	return &cp, nil
}

// UpdateAccount сохраняет счёт целиком, перезаписывая прежнее состояние.
// Изменение видно следующему GetAccount сразу после возврата.
func (s *BackupStore) UpdateAccount(_ context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *account
	cp.AllowedSchemes = model.NewSchemeSet(account.AllowedSchemes.List()...)
	s.accounts[account.Number] = cp

	return s.persistLocked()
}

func (s *BackupStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	records := make([]accountRecord, 0, len(s.accounts))
	for _, acc := range s.accounts {
		list := acc.AllowedSchemes.List()
		schemes := make([]string, 0, len(list))
		for _, scheme := range list {
			schemes = append(schemes, string(scheme))
		}
		records = append(records, accountRecord{
			Number:         acc.Number,
			Balance:        acc.Balance,
			Status:         string(acc.Status),
			AllowedSchemes: schemes,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Number < records[j].Number })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}
