// Package model содержит доменные сущности платёжного сервиса.
package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountStatus описывает состояние счёта.
type AccountStatus string

const (
	AccountStatusLive                AccountStatus = "LIVE"
	AccountStatusDisabled            AccountStatus = "DISABLED"
	AccountStatusInboundPaymentsOnly AccountStatus = "INBOUND_PAYMENTS_ONLY"
)

// ParseAccountStatus возвращает статус счёта по строковому значению.
func ParseAccountStatus(s string) (AccountStatus, bool) {
	switch AccountStatus(s) {
	case AccountStatusLive, AccountStatusDisabled, AccountStatusInboundPaymentsOnly:
		return AccountStatus(s), true
	}
	return "", false
}

// PaymentScheme описывает платёжную схему, по которой выполняется списание.
type PaymentScheme string

const (
	SchemeBacs           PaymentScheme = "BACS"
	SchemeFasterPayments PaymentScheme = "FASTER_PAYMENTS"
	SchemeChaps          PaymentScheme = "CHAPS"
)

// ParsePaymentScheme возвращает платёжную схему по строковому значению.
func ParsePaymentScheme(s string) (PaymentScheme, bool) {
	switch PaymentScheme(s) {
	case SchemeBacs, SchemeFasterPayments, SchemeChaps:
		return PaymentScheme(s), true
	}
	return "", false
}

// SchemeSet представляет набор платёжных схем, разрешённых для счёта.
// Проверка выполняется по принадлежности к набору, а не по равенству.
type SchemeSet map[PaymentScheme]struct{}

// NewSchemeSet создаёт набор из перечисленных схем.
func NewSchemeSet(schemes ...PaymentScheme) SchemeSet {
	set := make(SchemeSet, len(schemes))
	for _, s := range schemes {
		set[s] = struct{}{}
	}
	return set
}

// Contains сообщает, входит ли схема в набор.
func (s SchemeSet) Contains(scheme PaymentScheme) bool {
	_, ok := s[scheme]
	return ok
}

// List возвращает схемы набора в детерминированном порядке.
func (s SchemeSet) List() []PaymentScheme {
	res := make([]PaymentScheme, 0, len(s))
	for scheme := range s {
		res = append(res, scheme)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// String сериализует набор в строку вида "BACS,CHAPS" для хранения.
func (s SchemeSet) String() string {
	list := s.List()
	parts := make([]string, 0, len(list))
	for _, scheme := range list {
		parts = append(parts, string(scheme))
	}
	return strings.Join(parts, ",")
}

// ParseSchemeSet разбирает строковое представление набора схем.
// Неизвестные значения пропускаются.
func ParseSchemeSet(s string) SchemeSet {
	set := make(SchemeSet)
	for _, part := range strings.Split(s, ",") {
		scheme, ok := ParsePaymentScheme(strings.TrimSpace(part))
		if !ok {
			continue
		}
		set[scheme] = struct{}{}
	}
	return set
}

// MarshalJSON сериализует набор как отсортированный список строк.
func (s SchemeSet) MarshalJSON() ([]byte, error) {
	list := s.List()
	parts := make([]string, 0, len(list))
	for _, scheme := range list {
		parts = append(parts, string(scheme))
	}
	return json.Marshal(parts)
}

// UnmarshalJSON восстанавливает набор из списка строк.
func (s *SchemeSet) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	set := make(SchemeSet, len(parts))
	for _, part := range parts {
		if scheme, ok := ParsePaymentScheme(part); ok {
			set[scheme] = struct{}{}
		}
	}
	*s = set
	return nil
}

// Account представляет счёт, с которого выполняются списания.
// Баланс может быть отрицательным: модель этого не запрещает,
// ограничение накладывают только правила отдельных схем.
type Account struct {
	Number         string
	Balance        decimal.Decimal
	Status         AccountStatus
	AllowedSchemes SchemeSet
}

// PaymentRequest описывает запрос на списание средств со счёта.
type PaymentRequest struct {
	DebtorAccountNumber string
	Amount              decimal.Decimal
	Scheme              PaymentScheme
}

// PaymentResult содержит итог авторизации платежа. UpdatedAccount
// заполняется только при успешном списании и содержит состояние счёта,
// прочитанное из хранилища после фиксации.
type PaymentResult struct {
	Success        bool
	UpdatedAccount *Account
}
