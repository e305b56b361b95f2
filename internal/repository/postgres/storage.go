package postgres

import (
	"github.com/sga-edu/sgaauth/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Users() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) InvalidTokens() repository.InvalidTokenRepo {
	return &InvalidTokenRepo{DB: s.db}
}
