package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// New returns a random uuid string, used for user and token ids and JTIs.
func New() string {
	return uuid.NewString()
}

// NewSortable returns a ksuid string. Session ids use these so that
// lexical order matches creation order.
func NewSortable() string {
	return ksuid.New().String()
}

// Parse validates that s is a uuid.
func Parse(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
