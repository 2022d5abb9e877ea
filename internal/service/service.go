// Package service реализует авторизацию платежей — ядро платёжного сервиса.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvoronin/payment-system/internal/model"
	"github.com/mvoronin/payment-system/internal/store"
)

// AccountStore описывает контракт хранилища счетов, используемый сервисом.
type AccountStore interface {
	Close() error
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
}

// schemeRule проверяет допустимость списания по конкретной схеме.
// Правила намеренно ортогональны: Bacs не проверяет ничего,
// FasterPayments — только достаточность средств, Chaps — только статус счёта.
type schemeRule func(account *model.Account, req model.PaymentRequest) bool

var schemeRules = map[model.PaymentScheme]schemeRule{
	model.SchemeBacs: func(_ *model.Account, _ model.PaymentRequest) bool {
		return true
	},
	model.SchemeFasterPayments: func(account *model.Account, req model.PaymentRequest) bool {
		return account.Balance.GreaterThanOrEqual(req.Amount)
	},
	model.SchemeChaps: func(account *model.Account, _ model.PaymentRequest) bool {
		return account.Status == model.AccountStatusLive
	},
}

// Service выполняет авторизацию и проведение платежей. Не хранит состояния
// между вызовами; потокобезопасен в той мере, в какой потокобезопасно
// внедрённое хранилище. Последовательность чтение-изменение-запись
// не сериализуется между конкурентными вызовами по одному счёту.
type Service struct {
	store AccountStore
}

// NewService создаёт сервис с указанным хранилищем счетов.
func NewService(st AccountStore) *Service {
	return &Service{store: st}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// MakePayment авторизует и проводит списание. Все бизнес-отказы (счёт не
// найден, схема не разрешена, правило схемы не прошло) возвращаются через
// Success=false; ошибка возвращается только при сбое хранилища.
func (s *Service) MakePayment(ctx context.Context, req model.PaymentRequest) (model.PaymentResult, error) {
	account, err := s.store.GetAccount(ctx, req.DebtorAccountNumber)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return model.PaymentResult{}, nil
		}
		return model.PaymentResult{}, fmt.Errorf("get account: %w", err)
	}

	if !validateAccount(account, req) {
		return model.PaymentResult{}, nil
	}

	account.Balance = account.Balance.Sub(req.Amount)

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return model.PaymentResult{}, fmt.Errorf("update account: %w", err)
	}

	updated, err := s.store.GetAccount(ctx, req.DebtorAccountNumber)
	if err != nil {
		return model.PaymentResult{}, fmt.Errorf("reload account: %w", err)
	}

	return model.PaymentResult{
		Success:        true,
		UpdatedAccount: updated,
	}, nil
}

// GetAccount возвращает текущее состояние счёта.
func (s *Service) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	return s.store.GetAccount(ctx, number)
}

// validateAccount проверяет принадлежность схемы к разрешённым для счёта
// и правило конкретной схемы. Неизвестная схема отклоняется.
func validateAccount(account *model.Account, req model.PaymentRequest) bool {
	if !account.AllowedSchemes.Contains(req.Scheme) {
		return false
	}

	rule, ok := schemeRules[req.Scheme]
	if !ok {
		return false
	}

	return rule(account, req)
}
