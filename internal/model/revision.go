package model

import "time"

type ContentType string

const (
	ContentCanonical ContentType = "canonical"
	ContentShared    ContentType = "shared"
)

// Revision : неизменяемый снимок содержимого, только добавляется
type Revision struct {
	ID              string      `db:"id" json:"id"`
	DocumentID      string      `db:"document_id" json:"documentId"`
	ContentType     ContentType `db:"content_type" json:"contentType"`
	Content         string      `db:"content" json:"content"`
	CreatedByUserID string      `db:"created_by_user_id" json:"createdByUserId"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
}
