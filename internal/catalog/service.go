package catalog

import (
	"context"
	"strings"

	"cashier-terminal/internal/gameapi"

	"github.com/rs/zerolog/log"
)

type Backend interface {
	Cartelas(ctx context.Context, cashierID string) ([]gameapi.Cartela, error)
	CreateCartela(ctx context.Context, in gameapi.CartelaInput) (gameapi.Cartela, error)
	UpdateCartela(ctx context.Context, id string, in gameapi.CartelaInput) (gameapi.Cartela, error)
	DeleteCartela(ctx context.Context, id string) error
	ToggleCartela(ctx context.Context, id string, active bool) (gameapi.Cartela, error)

	WinPatterns(ctx context.Context, cashierID string) ([]gameapi.WinPattern, error)
	CreateWinPattern(ctx context.Context, in gameapi.WinPatternInput) (gameapi.WinPattern, error)
	UpdateWinPattern(ctx context.Context, id string, in gameapi.WinPatternInput) (gameapi.WinPattern, error)
	DeleteWinPattern(ctx context.Context, id string) error
	ToggleWinPattern(ctx context.Context, id string, active bool) (gameapi.WinPattern, error)
}

// Service validates catalog edits locally before passing them to the server.
type Service struct {
	backend   Backend
	cashierID func() string
}

func NewService(backend Backend, cashierID func() string) *Service {
	return &Service{backend: backend, cashierID: cashierID}
}

func (s *Service) Cartelas(ctx context.Context) ([]gameapi.Cartela, error) {
	return s.backend.Cartelas(ctx, s.cashierID())
}

func (s *Service) CreateCartela(ctx context.Context, in gameapi.CartelaInput) (gameapi.Cartela, error) {
	existing, err := s.Cartelas(ctx)
	if err != nil {
		return gameapi.Cartela{}, err
	}
	if err := ValidateCartelaID(in.CartelaID, takenIDs(existing, "")); err != nil {
		return gameapi.Cartela{}, err
	}
	if err := ValidateCartelaPattern(in.Pattern); err != nil {
		return gameapi.Cartela{}, err
	}
	in.CashierID = s.cashierID()
	out, err := s.backend.CreateCartela(ctx, in)
	if err != nil {
		return gameapi.Cartela{}, err
	}
	log.Info().Int("cartela_id", out.CartelaID).Msg("cartela_created")
	return out, nil
}

func (s *Service) UpdateCartela(ctx context.Context, id string, in gameapi.CartelaInput) (gameapi.Cartela, error) {
	existing, err := s.Cartelas(ctx)
	if err != nil {
		return gameapi.Cartela{}, err
	}
	if err := ValidateCartelaID(in.CartelaID, takenIDs(existing, id)); err != nil {
		return gameapi.Cartela{}, err
	}
	if err := ValidateCartelaPattern(in.Pattern); err != nil {
		return gameapi.Cartela{}, err
	}
	in.CashierID = s.cashierID()
	return s.backend.UpdateCartela(ctx, id, in)
}

func (s *Service) DeleteCartela(ctx context.Context, id string) error {
	return s.backend.DeleteCartela(ctx, id)
}

func (s *Service) ToggleCartela(ctx context.Context, id string, active bool) (gameapi.Cartela, error) {
	return s.backend.ToggleCartela(ctx, id, active)
}

// NextCartelaID suggests the lowest free id for a new card.
func (s *Service) NextCartelaID(ctx context.Context) (int, error) {
	existing, err := s.Cartelas(ctx)
	if err != nil {
		return 0, err
	}
	return NextAvailableID(takenIDs(existing, "")), nil
}

func (s *Service) WinPatterns(ctx context.Context) ([]gameapi.WinPattern, error) {
	return s.backend.WinPatterns(ctx, s.cashierID())
}

func (s *Service) CreateWinPattern(ctx context.Context, in gameapi.WinPatternInput) (gameapi.WinPattern, error) {
	if err := validateWinPatternInput(&in); err != nil {
		return gameapi.WinPattern{}, err
	}
	in.CashierID = s.cashierID()
	return s.backend.CreateWinPattern(ctx, in)
}

func (s *Service) UpdateWinPattern(ctx context.Context, id string, in gameapi.WinPatternInput) (gameapi.WinPattern, error) {
	if err := validateWinPatternInput(&in); err != nil {
		return gameapi.WinPattern{}, err
	}
	in.CashierID = s.cashierID()
	return s.backend.UpdateWinPattern(ctx, id, in)
}

func (s *Service) DeleteWinPattern(ctx context.Context, id string) error {
	return s.backend.DeleteWinPattern(ctx, id)
}

func (s *Service) ToggleWinPattern(ctx context.Context, id string, active bool) (gameapi.WinPattern, error) {
	return s.backend.ToggleWinPattern(ctx, id, active)
}

func validateWinPatternInput(in *gameapi.WinPatternInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidatePatternName(in.Name); err != nil {
		return err
	}
	return ValidateWinPattern(in.Pattern)
}

func takenIDs(list []gameapi.Cartela, exceptRecord string) []int {
	out := make([]int, 0, len(list))
	for _, c := range list {
		if exceptRecord != "" && c.ID == exceptRecord {
			continue
		}
		out = append(out, c.CartelaID)
	}
	return out
}
