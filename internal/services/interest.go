package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"birthdayclub/internal/domain"
	"birthdayclub/internal/validation"
)

type interestService struct {
	interestRepo   domain.InterestRepository
	contextTimeout time.Duration
}

func NewInterestService(interestRepo domain.InterestRepository, timeout time.Duration) domain.InterestService {
	return &interestService{interestRepo: interestRepo, contextTimeout: timeout}
}

func (s *interestService) List(ctx context.Context) ([]*domain.Interest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.interestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	return items, nil
}

func (s *interestService) ListForUser(ctx context.Context, userID string) ([]*domain.Interest, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.interestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user interests: %w", err)
	}
	return items, nil
}

// ReplaceForUser makes names the user's complete interest set. Names are trimmed
// and deduplicated case-insensitively; the first spelling wins.
func (s *interestService) ReplaceForUser(ctx context.Context, userID string, names []string) ([]*domain.Interest, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	in := domain.ReplaceInterestsInput{Interests: make([]string, len(names))}
	for i, name := range names {
		in.Interests[i] = strings.TrimSpace(name)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(in.Interests))
	seen := make(map[string]bool, len(in.Interests))
	for _, name := range in.Interests {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.interestRepo.ReplaceForUser(ctx, userID, cleaned)
	if err != nil {
		return nil, fmt.Errorf("replace user interests: %w", err)
	}
	return items, nil
}
