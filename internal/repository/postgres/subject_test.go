package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSubjectRepository(t *testing.T) {
	db := &Connection{}
	repo := NewSubjectRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestSubjectRepository_Structure(t *testing.T) {
	repo := &SubjectRepository{
		db: nil,
	}

	assert.NotNil(t, repo)
	assert.Nil(t, repo.db)
}
