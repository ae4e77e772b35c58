// Package blacklist holds the application use cases for the email blacklist.
// Use cases depend only on domain.BlacklistRepository and never on a concrete engine.
package blacklist

import (
	"context"
	"errors"
	"fmt"

	"blacklist-api/internal/api/dto"
	"blacklist-api/internal/domain"

	"github.com/charmbracelet/log"
)

// AddEmailUseCase blocks a new email address.
type AddEmailUseCase struct {
	repository domain.BlacklistRepository
}

func NewAddEmailUseCase(repository domain.BlacklistRepository) *AddEmailUseCase {
	return &AddEmailUseCase{repository: repository}
}

// Execute stores the request with the caller's resolved IP address.
//
// The existence check only produces a friendlier error; the storage unique
// index is authoritative, so a uniqueness failure on insert is reported as
// the same DuplicateEmailError.
func (uc *AddEmailUseCase) Execute(ctx context.Context, req dto.BlacklistCreateRequest, ipAddress string) (dto.BlacklistCreateResponse, error) {
	exists, err := uc.repository.EmailExists(ctx, req.Email)
	if err != nil {
		return dto.BlacklistCreateResponse{}, fmt.Errorf("check email existence: %w", err)
	}
	if exists {
		log.Debug("Rejected duplicate blacklist entry", "email", req.Email)
		return dto.BlacklistCreateResponse{}, &domain.DuplicateEmailError{Email: req.Email}
	}

	entry, err := uc.repository.AddEmail(ctx, req.Email, req.AppUUID, req.BlockedReason, ipAddress)
	if err != nil {
		if errors.Is(err, domain.ErrUniqueViolation) {
			log.Debug("Blacklist insert lost race on unique email", "email", req.Email)
			return dto.BlacklistCreateResponse{}, &domain.DuplicateEmailError{Email: req.Email}
		}
		return dto.BlacklistCreateResponse{}, fmt.Errorf("add email to blacklist: %w", err)
	}

	log.Info("Email added to blacklist", "email", entry.Email, "app_uuid", entry.AppUUID, "ip", entry.IPAddress)
	return dto.NewBlacklistCreateResponse(entry), nil
}
