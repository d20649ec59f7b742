package repository

import (
	"airunote/internal/model"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// IsUniqueViolation : ошибка нарушения уникального индекса postgres
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// wrapInsertError : нарушение уникальности отдаём как model.ErrAlreadyExists, остальное как есть
func wrapInsertError(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", model.ErrAlreadyExists, err)
	}
	return err
}

// notFoundAsNil : sql.ErrNoRows превращаем в пустой результат, решение о NotFound принимает сервис
func notFoundAsNil[T any](value *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}
