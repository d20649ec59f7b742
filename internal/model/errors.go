package model

import (
	"errors"
	"fmt"
)

// ErrorKind : вид бизнес-ошибки, по нему транспортный слой выбирает HTTP статус
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindOrgMismatch      ErrorKind = "org_mismatch"
	KindOwnerMismatch    ErrorKind = "owner_mismatch"
	KindReservedName     ErrorKind = "reserved_name"
	KindRootImmutable    ErrorKind = "root_immutable"
	KindCycleDetected    ErrorKind = "cycle_detected"
	KindValidation       ErrorKind = "validation_error"
	KindSchemaViolation  ErrorKind = "schema_violation"
	KindNothingToAccept  ErrorKind = "conflict_nothing_to_accept"
	KindAccessDenied     ErrorKind = "access_denied"
	KindLinkExpired      ErrorKind = "link_expired"
	KindPasswordRequired ErrorKind = "password_required"
)

// DomainError : ошибка ядра с видом и идентификаторами сущности
type DomainError struct {
	Kind       ErrorKind
	Message    string
	EntityType string
	EntityID   string
}

func (e *DomainError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s %s)", e.Kind, e.Message, e.EntityType, e.EntityID)
}

// Is : две DomainError равны, если совпадает вид. Это позволяет писать errors.Is(err, model.ErrNotFound)
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrNotFound         = &DomainError{Kind: KindNotFound, Message: "not found"}
	ErrOrgMismatch      = &DomainError{Kind: KindOrgMismatch, Message: "organization mismatch"}
	ErrOwnerMismatch    = &DomainError{Kind: KindOwnerMismatch, Message: "owner mismatch"}
	ErrReservedName     = &DomainError{Kind: KindReservedName, Message: "reserved name"}
	ErrRootImmutable    = &DomainError{Kind: KindRootImmutable, Message: "root folder is immutable"}
	ErrCycleDetected    = &DomainError{Kind: KindCycleDetected, Message: "move would create a cycle"}
	ErrValidation       = &DomainError{Kind: KindValidation, Message: "validation failed"}
	ErrSchemaViolation  = &DomainError{Kind: KindSchemaViolation, Message: "attributes violate folder schema"}
	ErrNothingToAccept  = &DomainError{Kind: KindNothingToAccept, Message: "no shared content to accept"}
	ErrAccessDenied     = &DomainError{Kind: KindAccessDenied, Message: "access denied"}
	ErrLinkExpired      = &DomainError{Kind: KindLinkExpired, Message: "link expired"}
	ErrPasswordRequired = &DomainError{Kind: KindPasswordRequired, Message: "password required or invalid"}
)

// ErrAlreadyExists : нарушение уникальности в хранилище. Не бизнес-ошибка, используется для гонки создания корней
var ErrAlreadyExists = errors.New("запись уже существует")

// NewError : создаёт ошибку с контекстом сущности
func NewError(kind ErrorKind, message, entityType, entityID string) *DomainError {
	return &DomainError{Kind: kind, Message: message, EntityType: entityType, EntityID: entityID}
}

// ValidationError : короткий конструктор для некорректного ввода
func ValidationError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf : вид ошибки или пустая строка, если это не DomainError (сбой хранилища и т.п.)
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// PublicKind : для внешних вызовов несовпадение организации или владельца выглядит как отказ в доступе,
// внутренний вид остаётся в ошибке для логов
func PublicKind(kind ErrorKind) ErrorKind {
	switch kind {
	case KindOrgMismatch, KindOwnerMismatch:
		return KindAccessDenied
	default:
		return kind
	}
}
