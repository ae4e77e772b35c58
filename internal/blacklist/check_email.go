package blacklist

import (
	"context"
	"errors"
	"fmt"

	"blacklist-api/internal/api/dto"
	"blacklist-api/internal/domain"
)

// CheckEmailUseCase reports whether an email is blocked. No format validation is applied.
type CheckEmailUseCase struct {
	repository domain.BlacklistRepository
}

func NewCheckEmailUseCase(repository domain.BlacklistRepository) *CheckEmailUseCase {
	return &CheckEmailUseCase{repository: repository}
}

// Execute treats a missing record as "not blocked". Only storage failures return an error.
func (uc *CheckEmailUseCase) Execute(ctx context.Context, email string) (dto.BlacklistCheckResponse, error) {
	entry, err := uc.repository.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return dto.NewBlacklistCheckResponse(email, nil), nil
	}
	if err != nil {
		return dto.BlacklistCheckResponse{}, fmt.Errorf("look up email: %w", err)
	}
	return dto.NewBlacklistCheckResponse(email, entry), nil
}
